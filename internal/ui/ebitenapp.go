package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/core"
	"github.com/FabianRolfMatthiasNoll/GameBoyEmulator/internal/joypad"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// App is a thin ebiten front end: it blits the Machine's framebuffer every
// frame, forwards key transitions to the joypad, and offers save-state
// hotkeys. It carries no ROM browser or settings menu; those are out of
// scope for the emulation core this repo implements.
type App struct {
	cfg Config
	m   *core.Machine
	tex *ebiten.Image

	paused bool
	fast   bool

	audioCtx    *audio.Context
	audioPlayer *audio.Player

	statePath string
	toastMsg  string
	toastUntil time.Time
}

// keymap pairs an ebiten key with the joypad bit it drives.
var keymap = []struct {
	key ebiten.Key
	btn int
}{
	{ebiten.KeyArrowRight, joypad.Right},
	{ebiten.KeyArrowLeft, joypad.Left},
	{ebiten.KeyArrowUp, joypad.Up},
	{ebiten.KeyArrowDown, joypad.Down},
	{ebiten.KeyZ, joypad.A},
	{ebiten.KeyX, joypad.B},
	{ebiten.KeyShiftRight, joypad.Select},
	{ebiten.KeyEnter, joypad.Start},
}

// NewApp wires an ebiten front end onto an already-loaded Machine.
func NewApp(cfg Config, m *core.Machine, statePath string) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	a := &App{cfg: cfg, m: m, statePath: statePath}
	a.tex = ebiten.NewImage(160, 144)
	a.audioCtx = audio.NewContext(48000)
	if p, err := a.audioCtx.NewPlayer(&apuStream{m: m}); err == nil {
		a.audioPlayer = p
		a.audioPlayer.Play()
	}
	return a
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) Update() error {
	for _, k := range keymap {
		if inpututil.IsKeyJustPressed(k.key) {
			a.m.OnKeyPressed(k.btn)
		}
		if inpututil.IsKeyJustReleased(k.key) {
			a.m.OnKeyReleased(k.btn)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.fast = !a.fast
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		a.loadState()
	}

	if a.paused {
		return nil
	}
	runs := 1
	if a.fast {
		runs = 4
	}
	for i := 0; i < runs; i++ {
		if err := a.m.Tick(core.CyclesPerFrame); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) saveState() {
	if a.statePath == "" {
		return
	}
	if err := os.WriteFile(a.statePath, a.m.SaveState(), 0644); err != nil {
		a.toast(fmt.Sprintf("save failed: %v", err))
		return
	}
	a.toast("state saved")
}

func (a *App) loadState() {
	if a.statePath == "" {
		return
	}
	data, err := os.ReadFile(a.statePath)
	if err != nil {
		a.toast(fmt.Sprintf("load failed: %v", err))
		return
	}
	if err := a.m.LoadState(data); err != nil {
		a.toast(fmt.Sprintf("load failed: %v", err))
		return
	}
	a.toast("state loaded")
}

func (a *App) Draw(screen *ebiten.Image) {
	fb := a.m.Framebuffer()
	pix := make([]byte, 160*144*4)
	for i, argb := range fb {
		pix[i*4+0] = byte(argb >> 16)
		pix[i*4+1] = byte(argb >> 8)
		pix[i*4+2] = byte(argb)
		pix[i*4+3] = 0xFF
	}
	a.tex.WritePixels(pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)

	if a.paused {
		ebitenutil.DebugPrint(screen, "paused")
	}
	if time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 4, 144*a.cfg.Scale-16)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 160 * a.cfg.Scale, 144 * a.cfg.Scale
}

// Run starts the ebiten game loop; it blocks until the window closes.
func (a *App) Run() error {
	return ebiten.RunGame(a)
}

// DefaultStatePath derives a save-state path next to the ROM, or "" if
// romPath is empty (headless runs with no backing file).
func DefaultStatePath(romPath string) string {
	if romPath == "" {
		return ""
	}
	return strings.TrimSuffix(romPath, ".gb") + ".state"
}
