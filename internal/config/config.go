package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	minViewport = 64
	maxViewport = 8192
	maxFPSLimit = 1000
)

// RenderSettings holds render configuration
type RenderSettings struct {
	mu               sync.RWMutex
	deferredShading  bool
	primitiveRestart bool
	viewportWidth    int
	viewportHeight   int
	fpsLimit         int
}

var globalRenderSettings = &RenderSettings{
	deferredShading:  true,
	primitiveRestart: true,
	viewportWidth:    900,
	viewportHeight:   600,
	fpsLimit:         0,
}

// DeferredShading reports whether models are drawn into the G-buffer
func DeferredShading() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.deferredShading
}

// SetDeferredShading toggles the deferred model path
func SetDeferredShading(on bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.deferredShading = on
}

// PrimitiveRestart reports whether S3O models may use primitive-restart indexing
func PrimitiveRestart() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.primitiveRestart
}

// SetPrimitiveRestart toggles primitive-restart indexing
func SetPrimitiveRestart(on bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.primitiveRestart = on
}

// GetViewport returns the current viewport size in pixels
func GetViewport() (width, height int) {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.viewportWidth, globalRenderSettings.viewportHeight
}

// SetViewport sets the viewport size in pixels
func SetViewport(width, height int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	globalRenderSettings.viewportWidth = clamp(width, minViewport, maxViewport)
	globalRenderSettings.viewportHeight = clamp(height, minViewport, maxViewport)
}

// GetFPSLimit returns the frame cap of the window loop, 0 meaning uncapped
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fpsLimit = clamp(limit, 0, maxFPSLimit)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// File is the on-disk YAML configuration.
type File struct {
	DeferredShading  *bool  `yaml:"deferred_shading"`
	PrimitiveRestart *bool  `yaml:"primitive_restart"`
	LogLevel         string `yaml:"log_level"`
	FPSLimit         *int   `yaml:"fps_limit"`
	Viewport         struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"viewport"`
	Soak SoakSettings `yaml:"soak"`
}

// SoakSettings drives the headless soak command.
type SoakSettings struct {
	Ticks     int     `yaml:"ticks"`
	SpawnRate int     `yaml:"spawn_rate"`
	KillRatio float64 `yaml:"kill_ratio"`
	Seed      int64   `yaml:"seed"`
}

// DefaultFile returns the configuration used when no file is given.
func DefaultFile() *File {
	f := &File{LogLevel: "info"}
	f.Viewport.Width, f.Viewport.Height = GetViewport()
	f.Soak = SoakSettings{Ticks: 600, SpawnRate: 32, KillRatio: 0.5, Seed: 1}
	return f
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of the defaults.
func Parse(data []byte) (*File, error) {
	f := DefaultFile()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	if f.Soak.KillRatio < 0 || f.Soak.KillRatio > 1 {
		return nil, fmt.Errorf("soak.kill_ratio %v out of range [0,1]", f.Soak.KillRatio)
	}
	return f, nil
}

// Apply pushes file settings into the global render settings.
func (f *File) Apply() {
	if f.DeferredShading != nil {
		SetDeferredShading(*f.DeferredShading)
	}
	if f.PrimitiveRestart != nil {
		SetPrimitiveRestart(*f.PrimitiveRestart)
	}
	if f.FPSLimit != nil {
		SetFPSLimit(*f.FPSLimit)
	}
	if f.Viewport.Width > 0 && f.Viewport.Height > 0 {
		SetViewport(f.Viewport.Width, f.Viewport.Height)
	}
}
