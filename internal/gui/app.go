package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/physics"
	"github.com/san-kum/plife/internal/viz"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
)

const (
	maxWindowWidth  = 1280
	maxWindowHeight = 720
	particleSize    = 4

	// DefaultTimeScale turns frame seconds into simulation time: one
	// millisecond of wall clock is a tenth of a time unit.
	DefaultTimeScale = 100.0

	// maxFrameDt bounds a single tick after a stalled frame.
	maxFrameDt = 2.0
)

type Options struct {
	Title     string
	Seed      int64
	FixedDt   float64 // when positive, every frame advances by exactly this
	TimeScale float64 // zero means DefaultTimeScale
	TargetFPS int32
}

type App struct {
	Engine     *physics.Engine
	Rebuild    viz.Rebuild
	Opts       Options
	Running    bool
	Scale      float32
	Colors     []rl.Color
	Telemetry  []float64
	MaxHistory int
	Err        error

	energy *metrics.KineticEnergy
	time   float64
	ticks  int
}

// NewApp sizes the window to the world, scaled down to fit.
func NewApp(engine *physics.Engine, rebuild viz.Rebuild, opts Options) *App {
	if opts.TimeScale <= 0 {
		opts.TimeScale = DefaultTimeScale
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	if opts.Title == "" {
		opts.Title = "plife"
	}
	p := engine.Params()
	return &App{
		Engine:     engine,
		Rebuild:    rebuild,
		Opts:       opts,
		Running:    true,
		Scale:      fitScale(p.Width, p.Height, maxWindowWidth, maxWindowHeight),
		Colors:     colors(engine.Set().Colors()),
		MaxHistory: 200,
		Telemetry:  make([]float64, 0, 200),
		energy:     metrics.NewKineticEnergy(),
	}
}

// Run opens the window and blocks until it is closed. The loop goroutine
// is the only writer of the engine's particle set.
func Run(engine *physics.Engine, rebuild viz.Rebuild, opts Options) error {
	app := NewApp(engine, rebuild, opts)
	p := engine.Params()

	rl.InitWindow(int32(float32(p.Width)*app.Scale), int32(float32(p.Height)*app.Scale), app.Opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(app.Opts.TargetFPS)
	rl.SetExitKey(0)

	app.RunLoop()
	return app.Err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			return
		}
		a.Update(rl.GetFrameTime())
		a.Draw()
	}
}

func (a *App) Update(frameSeconds float32) {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}
	if !a.Running {
		if rl.IsKeyPressed(rl.KeyS) {
			a.step(a.frameDt(1.0 / float32(a.Opts.TargetFPS)))
		}
		return
	}
	a.step(a.frameDt(frameSeconds))
}

func (a *App) step(dt float64) {
	if err := a.Engine.Step(dt); err != nil {
		a.Err = err
		a.Running = false
		return
	}
	a.time += dt
	a.ticks++

	a.energy.Observe(a.Engine.Set().Particles(), a.time)
	a.Telemetry = append(a.Telemetry, a.energy.Value())
	if len(a.Telemetry) > a.MaxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) reset() {
	if a.Rebuild == nil {
		return
	}
	e, err := a.Rebuild(a.Opts.Seed + 1)
	if err != nil {
		a.Err = err
		a.Running = false
		return
	}
	a.Opts.Seed++
	a.Engine = e
	a.Colors = colors(e.Set().Colors())
	a.Telemetry = a.Telemetry[:0]
	a.energy.Reset()
	a.time, a.ticks, a.Err = 0, 0, nil
}

func (a *App) frameDt(frameSeconds float32) float64 {
	return frameDt(frameSeconds, a.Opts.FixedDt, a.Opts.TimeScale)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawParticles()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	rl.DrawText(a.Opts.Title, 10, 10, 20, ColSelect)

	status, col := "RUNNING", ColSelect
	switch {
	case a.Err != nil:
		status, col = "HALTED: "+a.Err.Error(), rl.Red
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, 10, 34, 14, col)

	rl.DrawText(fmt.Sprintf("t=%.1f  ticks=%d  seed=%d  coincident=%d", a.time, a.ticks, a.Opts.Seed, a.Engine.Coincident()), 10, 52, 12, ColText)
	rl.DrawText("[SPACE] PAUSE  [S] STEP  [R] RESEED  [Q] QUIT", 10, int32(rl.GetScreenHeight())-20, 12, ColTextDim)
	rl.DrawFPS(int32(rl.GetScreenWidth())-90, 10)

	a.DrawTelemetry()
}
