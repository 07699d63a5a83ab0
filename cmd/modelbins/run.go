package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"modelbins/internal/config"
	"modelbins/internal/graphics"
	"modelbins/internal/graphics/gbuffer"
	"modelbins/internal/graphics/modelrender"
	"modelbins/internal/graphics/renderer"
	"modelbins/internal/input"
	"modelbins/internal/logx"
	"modelbins/internal/profiling"
	"modelbins/internal/sim"
	"modelbins/internal/soak"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"
)

func init() {
	runtime.LockOSThread()
}

func runCmd(settings *config.File) *cobra.Command {
	var (
		atlasDir string
		dumpDir  string
		objects  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and draw a churning scene through the render bins",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWindow(settings.Soak, atlasDir, dumpDir, objects)
		},
	}

	cmd.Flags().StringVar(&atlasDir, "atlas-dir", "", "directory holding <family>.png model atlases")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", ".", "where P writes G-buffer TIFF dumps")
	cmd.Flags().IntVar(&objects, "objects", 400, "objects spawned at startup")
	return cmd
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	w, h := config.GetViewport()
	window, err := glfw.CreateWindow(w, h, "modelbins", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	// the FPS limiter paces frames when a cap is configured
	if config.GetFPSLimit() > 0 {
		glfw.SwapInterval(0)
	} else {
		glfw.SwapInterval(1)
	}
	return window, nil
}

// app holds everything the frame loop touches.
type app struct {
	window    *glfw.Window
	renderer  *renderer.Renderer
	camera    *graphics.Camera
	registry  *modelrender.Registry
	manager   *sim.Manager
	scene     *soak.Scene
	models    *renderer.ModelPass
	snapshot  *renderer.SnapshotPass
	overlay   *graphics.StatsOverlay
	submitter *graphics.CubeSubmitter
	atlases   *graphics.AtlasSet
	input     *input.InputManager
	limiter   *FPSLimiter
	dumpDir   string

	soak     config.SoakSettings
	churning bool
	fps      int
}

func runWindow(s config.SoakSettings, atlasDir, dumpDir string, objects int) error {
	// registered first so a signal waits for the GL teardown below
	in := newInterrupt()
	defer in.Finish()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return fmt.Errorf("window setup: %w", err)
	}

	a, err := newApp(window, s, atlasDir, dumpDir)
	if err != nil {
		return err
	}
	defer a.dispose()

	a.scene.Spawn(objects)
	a.bindInput()
	a.loop(in)
	return nil
}

func newApp(window *glfw.Window, s config.SoakSettings, atlasDir, dumpDir string) (*app, error) {
	atlases := graphics.NewAtlasSet()
	for _, t := range sim.ModelTypes {
		path := ""
		if atlasDir != "" {
			path = filepath.Join(atlasDir, t.String()+".png")
		}
		atlases.Load(t, path)
	}

	submitter := graphics.NewCubeSubmitter()
	if err := submitter.Init(); err != nil {
		atlases.Dispose()
		return nil, fmt.Errorf("cube submitter: %w", err)
	}

	device := graphics.NewGLStateDevice(atlases, config.PrimitiveRestart())
	reg := modelrender.NewRegistry(device, submitter)
	mgr := sim.NewManager(reg)

	a := &app{
		window:    window,
		registry:  reg,
		manager:   mgr,
		scene:     soak.NewScene(mgr, s.Seed),
		submitter: submitter,
		atlases:   atlases,
		input:     input.NewInputManager(),
		limiter:   NewFPSLimiter(),
		dumpDir:   dumpDir,
		soak:      s,
		churning:  s.SpawnRate > 0,
	}

	a.models = &renderer.ModelPass{
		Registry: reg,
		Frame:    submitter,
		GBuffer:  gbuffer.New("models", graphics.GLGBufferDriver{}),
		Present: func(b *gbuffer.Buffer) {
			w, h := config.GetViewport()
			graphics.BlitToScreen(b, gbuffer.SlotDiffuse, image.Pt(w, h))
		},
	}
	a.snapshot = &renderer.SnapshotPass{Registry: reg, Frame: submitter, Resync: mgr.ResyncFeatures}
	a.overlay = &graphics.StatsOverlay{Lines: a.statsLines, Visible: true}

	w, h := config.GetViewport()
	a.camera = graphics.NewCamera(w, h)
	r, err := renderer.NewRenderer(a.camera, a.models, a.snapshot, a.overlay)
	if err != nil {
		submitter.Dispose()
		atlases.Dispose()
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r.OnEndFrame(a.snapshot.EndFrame)
	a.renderer = r
	return a, nil
}

func (a *app) bindInput() {
	a.input.SetKeyCallback(a.window)

	a.window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		config.SetViewport(fbWidth, fbHeight)
		a.renderer.UpdateViewport(config.GetViewport())
	})
}

// handleActions applies the edge-triggered viewer actions of this frame.
func (a *app) handleActions() {
	im := a.input
	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionCaptureSnapshot) {
		a.snapshot.Capture()
	}
	if im.JustPressed(input.ActionClearSnapshot) {
		a.snapshot.SetActive(false)
	}
	if im.JustPressed(input.ActionDumpGBuffer) {
		a.dumpGBuffer()
	}
	if im.JustPressed(input.ActionToggleChurn) {
		a.churning = !a.churning
	}
	if im.JustPressed(input.ActionToggleOverlay) {
		a.overlay.Visible = !a.overlay.Visible
	}
	if im.JustPressed(input.ActionReportTotals) {
		t := a.registry.Totals()
		logx.Logger().Info("bin totals", "units", t.Units, "features", t.Features,
			"saved", t.FeaturesSaved, "projectiles", t.Projectiles, "frame", profiling.TopN(4))
	}
}

func (a *app) statsLines() []string {
	t := a.registry.Totals()
	mode := "forward"
	if a.models.Deferred() {
		mode = "deferred"
	}
	lines := []string{
		fmt.Sprintf("%d fps  %s", a.fps, mode),
		fmt.Sprintf("units %d  features %d  projectiles %d", t.Units, t.Features, t.Projectiles),
	}
	if a.snapshot.Active() {
		lines = append(lines, fmt.Sprintf("snapshot: %d features", t.FeaturesSaved))
	}
	for _, r := range a.registry.Renderers() {
		lines = append(lines, fmt.Sprintf("%-6s %3d bins", r.ModelType(),
			r.NumBins(sim.KindUnit)+r.NumBins(sim.KindFeature)+r.NumBins(sim.KindProjectile)))
	}
	if !a.churning {
		lines = append(lines, "churn paused")
	}
	return lines
}

func (a *app) dumpGBuffer() {
	if !a.models.Deferred() {
		logx.Logger().Warn("G-buffer dump skipped, models are drawn forward")
		return
	}
	path := filepath.Join(a.dumpDir, fmt.Sprintf("gbuffer-%d.tiff", a.renderer.Frame()))
	f, err := os.Create(path)
	if err != nil {
		logx.Logger().Error("could not create dump file", "err", err)
		return
	}
	defer f.Close()
	if err := a.models.GBuffer.DumpAttachment(gbuffer.SlotDiffuse, f); err != nil {
		logx.Logger().Error("G-buffer dump failed", "err", err)
		return
	}
	logx.Logger().Info("G-buffer dumped", "path", path)
}

func (a *app) loop(in *interrupt) {
	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.12, 0.13, 0.16, 1)

	const (
		orbitSpeed = 0.6 // radians per second
		zoomSpeed  = 1.5 // doublings per second
	)
	lastTime := time.Now()
	lastChurn := lastTime
	lastFPSCheck := lastTime
	frames := 0

	for !a.window.ShouldClose() && !in.Stopped() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		a.handleActions()

		im := a.input
		a.camera.Orbit(
			im.Axis(input.ActionOrbitLeft, input.ActionOrbitRight)*orbitSpeed*float32(dt),
			im.Axis(input.ActionOrbitDown, input.ActionOrbitUp)*orbitSpeed*float32(dt),
		)
		if zoom := im.Axis(input.ActionZoomIn, input.ActionZoomOut); zoom != 0 {
			a.camera.Zoom(float32(1 + float64(zoom)*zoomSpeed*dt))
		}

		// churn a batch of objects a few times a second
		if a.churning && now.Sub(lastChurn) > 250*time.Millisecond {
			a.scene.Spawn(a.soak.SpawnRate)
			a.scene.Kill(a.soak.SpawnRate, a.soak.KillRatio)
			a.scene.Remodel()
			lastChurn = now
		}
		a.manager.Tick(dt)

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		a.renderer.Render(dt)

		func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
		a.input.PostUpdate()

		frames++
		if time.Since(lastFPSCheck) >= time.Second {
			a.fps = frames
			logx.Logger().Debug("frame stats", "fps", frames, "top", profiling.TopN(3))
			frames = 0
			lastFPSCheck = time.Now()
		}

		a.limiter.Wait()
	}
}

func (a *app) dispose() {
	a.renderer.Dispose()
	a.submitter.Dispose()
	a.atlases.Dispose()
}
