package main

import (
	"errors"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/milk9111/stfu/common"
	"github.com/milk9111/stfu/config"
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/prefabs"
	"github.com/milk9111/stfu/replay"
	"github.com/milk9111/stfu/sim"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

var background = color.RGBA{R: 0x1a, G: 0x1c, B: 0x2c, A: 0xff}

type Options struct {
	Config    config.Config
	Level     string
	Record    bool
	Debug     bool
	Watch     bool
	Clipboard bool
	Store     *replay.Store
}

type Game struct {
	cfg   config.Config
	level string

	sim      *sim.Simulation
	input    *Input
	camera   *Camera
	watcher  *prefabs.Watcher
	recorder *replay.Recorder
	store    *replay.Store
	pauseUI  *ebitenui.UI

	clipboard bool
	record    bool
	paused    bool
	debug     bool
	frames    int
}

func NewGame(opts Options) (*Game, error) {
	g := &Game{
		cfg:       opts.Config,
		level:     opts.Level,
		input:     NewInput(opts.Config.Simulation.Players),
		camera:    NewCamera(baseWidth, baseHeight),
		store:     opts.Store,
		clipboard: opts.Clipboard,
		record:    opts.Record,
		debug:     opts.Debug,
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, prefabs.Dir+"/scripts")
		if err != nil {
			log.Printf("prefabs: hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) load() error {
	s, err := sim.Load(g.cfg, g.level)
	if err != nil {
		return err
	}
	if g.sim != nil {
		g.sim.Close()
	}
	g.sim = s
	if lvl := s.Level(); lvl != nil {
		g.camera.SetWorldBounds(lvl.Width, lvl.Height)
	}
	if x, y, ok := g.focus(); ok {
		g.camera.Snap(x, y)
	}
	if g.record {
		g.recorder = replay.NewRecorder(g.level, g.cfg.Simulation.Players)
	}
	return nil
}

func (g *Game) restart() {
	if err := g.load(); err != nil {
		log.Printf("restart: %v", err)
		return
	}
	g.paused = false
}

func (g *Game) saveReplay() {
	if g.recorder == nil || g.store == nil {
		return
	}
	r := g.recorder.Replay()
	if err := g.store.Save(r); err != nil {
		log.Printf("replay: %v", err)
		return
	}
	log.Printf("replay: saved %s (%d frames)", r.ID, len(r.Frames))
}

func (g *Game) copyReplay() {
	if g.recorder == nil || !g.clipboard {
		return
	}
	data, err := replay.Encode(g.recorder.Replay())
	if err != nil {
		log.Printf("replay: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	log.Printf("replay: copied %d bytes", len(data))
}

// focus is player 1's smoothed position in pixels.
func (g *Game) focus() (float64, float64, bool) {
	e, _, err := g.sim.Player(1)
	if err != nil {
		return 0, 0, false
	}
	t, ok := ecs.Get(g.sim.World(), e, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	return common.ToPixels(t.X), common.ToPixels(t.Y), true
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.restart()
	}
	g.reload()

	g.frames++
	g.input.Update()
	intents := g.input.Intents()
	for i, in := range intents {
		if err := g.sim.SetIntent(i+1, in); err != nil && !errors.Is(err, sim.ErrNoPlayer) {
			return err
		}
	}
	dt := 1 / float64(ebiten.TPS())
	if g.recorder != nil {
		g.recorder.Record(dt, intents)
	}
	g.sim.Update(dt)

	if x, y, ok := g.focus(); ok {
		g.camera.Update(x, y)
	}
	return nil
}

func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for _, c := range g.watcher.Pending() {
		g.sim.Reload(c)
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("prefabs: watch: %v", err)
		}
	default:
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawLevel(screen)
	g.drawCharacters(screen)
	if g.debug {
		g.drawPhysics(screen)
	}
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.sim.Close()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
