package main

import (
	"fmt"
	"log/slog"
	"os"

	"modelbins/internal/config"
	"modelbins/internal/logx"

	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		logLevel   string
		settings   = config.DefaultFile()
	)

	rootCmd := &cobra.Command{
		Use:           "modelbins",
		Short:         "Model render bins: per-family draw classification and a deferred G-buffer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				f, err := config.Load(configPath)
				if err != nil {
					return err
				}
				*settings = *f
			}
			if cmd.Flags().Changed("log-level") {
				settings.LogLevel = logLevel
			}
			settings.Apply()

			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logx.ParseLevel(settings.LogLevel)})
			logx.SetLogger(slog.New(handler))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	rootCmd.AddCommand(runCmd(settings))
	rootCmd.AddCommand(soakCmd(settings))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "modelbins:", err)
		os.Exit(1)
	}
}
