package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"modelbins/internal/config"
	"modelbins/internal/profiling"
	"modelbins/internal/soak"

	"github.com/spf13/cobra"
)

func soakCmd(settings *config.File) *cobra.Command {
	var (
		ticks   int
		seeds   int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Churn objects through the render bins without a window and check the counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := settings.Soak
			if cmd.Flags().Changed("ticks") {
				s.Ticks = ticks
			}
			return runSoak(os.Stdout, s, seeds, workers)
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 0, "number of simulation ticks (overrides soak.ticks)")
	cmd.Flags().IntVar(&seeds, "seeds", 1, "number of seeds to run, counting up from soak.seed")
	cmd.Flags().IntVar(&workers, "workers", defaultWorkers(), "seeds run in parallel")
	return cmd
}

// defaultWorkers uses half the CPUs, and at least one.
func defaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

func runSoak(w io.Writer, s config.SoakSettings, seeds, workers int) error {
	if seeds < 1 {
		return fmt.Errorf("--seeds must be at least 1, got %d", seeds)
	}

	in := newInterrupt()
	defer in.Finish()

	results, err := soak.RunSeeds(in.Context(), s, seeds, workers)
	if err != nil {
		return err
	}

	for _, res := range results {
		t := res.Totals
		fmt.Fprintf(w, "seed=%d ticks=%d units=%d features=%d projectiles=%d submits=%d\n",
			res.Seed, res.Ticks, t.Units, t.Features, t.Projectiles, res.Submits)
		fmt.Fprintf(w, "  state: polygon pushes=%d restart enables=%d\n", res.Pushes, res.Restarts)
		for _, b := range res.Bins {
			fmt.Fprintf(w, "  %-6s bins: units=%d features=%d projectiles=%d\n",
				b.Family, b.Units, b.Features, b.Projectiles)
		}
	}
	// timers are shared between workers, so only a single run has a clean frame
	if seeds == 1 {
		fmt.Fprintf(w, "last frame: %s\n", profiling.TopN(5))
	}
	return nil
}
