//go:build ebiten

package app

import (
	"log/slog"
	"time"

	"sandpile/internal/control"
	"sandpile/internal/core"
	"sandpile/internal/logging"
	"sandpile/internal/render"
	"sandpile/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts the sandpile driver to the ebiten.Game interface. Generations
// are paced at the speed register; the grid is read back through the
// renderer's read port every frame.
type Game struct {
	driver  *control.Driver
	scan    *render.Scanout
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	pacer   *core.Pacer

	hudWidth int
	res      int
	frame    []uint8

	paused   bool
	tickOnce bool
	seed     int64
	log      *slog.Logger
}

// New constructs a Game for the provided driver.
func New(d *control.Driver, f *Flags, logger *slog.Logger) *Game {
	res := d.Machine().Resolution()
	return &Game{
		driver:   d,
		scan:     render.NewScanout(d.Machine().Port()),
		painter:  render.NewGridPainter(res, res),
		hud:      ui.NewHUD(d, f.HUDWidth),
		overlay:  ui.NewOverlay(),
		pacer:    core.NewPacer(d.Speed()),
		hudWidth: f.HUDWidth,
		res:      res,
		paused:   f.Paused,
		seed:     f.Seed,
		log:      logging.OrDiscard(logger),
	}
}

// Reset zeroes the grid and reseeds the drop randomizer.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.driver.Reset(seed)
	g.pacer.Reset()
	g.tickOnce = false
}

// Update handles per-frame input and runs the generations that are due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		g.pacer.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		mode := 1 - int(g.driver.Registers().DropMode)
		g.driver.SetIntParameter("drop_mode", mode)
	}

	g.overlay.Update()
	g.hud.Update(render.GridSide)

	g.pacer.SetRate(g.driver.Speed())
	steps := 0
	if !g.paused {
		steps = g.pacer.Due(time.Now())
	}
	if g.tickOnce {
		steps++
		g.tickOnce = false
	}
	for i := 0; i < steps; i++ {
		g.driver.Step()
	}

	if res := g.driver.Machine().Resolution(); res != g.res {
		g.res = res
		g.painter.Resize(res, res)
	}
	if m := g.driver.Machine(); m.Busy() {
		m.AwaitReady()
	}
	frame, err := g.scan.Frame(g.res)
	if err != nil {
		g.log.Warn("frame skipped", "err", err)
		return nil
	}
	g.frame = append(g.frame[:0], frame.Cells()...)
	return nil
}

// Draw renders the grid, the overlay and the control panel.
func (g *Game) Draw(screen *ebiten.Image) {
	if len(g.frame) == g.res*g.res {
		scale := CellScale(g.res)
		off := GridOffset(g.res)
		g.painter.Blit(screen, g.frame, scale, off, off)
		last, ok := g.driver.LastAvalanche()
		g.overlay.Draw(screen, g.frame, g.res, scale, off, off, [2]int{last.DropX, last.DropY}, ok)
	}
	g.hud.Draw(screen, render.GridSide, render.GridSide)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return render.GridSide + g.hudWidth, render.GridSide
}
