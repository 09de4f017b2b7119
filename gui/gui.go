//go:build ebiten

package gui

import (
	"context"
	"errors"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"go-lifeseq/canvas"
	"go-lifeseq/debug"
	"go-lifeseq/life"
	"go-lifeseq/sequencer"
)

const nudgeStep = 10 * time.Millisecond

type window struct {
	ctx    context.Context
	player *sequencer.Player
	canvas *canvas.Canvas
	geom   sequencer.Geometry
	seed   life.SeedFunc
	w, h   int
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	seed := opts.Seed
	if seed == nil {
		seed = life.Empty
	}
	cols, rows := opts.Player.Size()
	w, h := opts.Geometry.SurfaceSize(cols, rows)
	title := opts.Title
	if title == "" {
		title = "go-lifeseq"
	}

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	game := &window{ctx: ctx, player: opts.Player, canvas: opts.Canvas, geom: opts.Geometry, seed: seed, w: w, h: h}
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *window) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	ctl := g.player.Control()
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		ctl.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		ctl.Nudge(-nudgeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		ctl.Nudge(nudgeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.player.Reseed(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.player.Clear()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		px, py := ebiten.CursorPosition()
		cols, rows := g.player.Size()
		if x, y, ok := cellAt(g.geom, cols, rows, px, py); ok {
			if _, err := g.player.ToggleCell(x, y); err != nil {
				debug.Log("gui", "toggle cell: %v", err)
			}
		}
	}
	return nil
}

// Draw paints every rect in creation order so the column highlight lands
// on top of the cells.
func (g *window) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	for _, r := range g.canvas.Snapshot() {
		cr, cg, cb := r.Color().RGB255()
		alpha := uint8(min(max(r.Opacity, 0), 1)*255 + 0.5)
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H),
			color.NRGBA{R: cr, G: cg, B: cb, A: alpha}, false)
	}
}

func (g *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}
