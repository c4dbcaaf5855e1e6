package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/Div9851/gba-core/internal/logger"
	"github.com/Div9851/gba-core/pkg/emulator"
)

const (
	// GBA screen dimensions
	screenWidth  = 240
	screenHeight = 160
)

// host keys polled every frame, by the name the keypad knows them by
var keys = map[ebiten.Key]string{
	ebiten.KeyArrowRight: "ArrowRight",
	ebiten.KeyArrowLeft:  "ArrowLeft",
	ebiten.KeyArrowUp:    "ArrowUp",
	ebiten.KeyArrowDown:  "ArrowDown",
	ebiten.KeyA:          "A",
	ebiten.KeyS:          "S",
	ebiten.KeyX:          "X",
	ebiten.KeyZ:          "Z",
	ebiten.KeyEnter:      "Enter",
	ebiten.KeyBackspace:  "Backspace",
}

type Game struct {
	machine *emulator.Machine
	scale   int
	pressed []string
}

func (g *Game) Update() error {
	g.pressed = g.pressed[:0]
	for key, name := range keys {
		if ebiten.IsKeyPressed(key) {
			g.pressed = append(g.pressed, name)
		}
	}
	g.machine.IO().SetKeys(g.pressed)

	if g.machine.Halted() {
		return nil
	}
	// a decode error is in the log and on screen. the window stays open
	_ = g.machine.RunFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	var s strings.Builder
	s.WriteString(g.machine.CPU().String())
	s.WriteString("\n\n")
	if g.machine.Halted() {
		fmt.Fprintf(&s, "halted: %v\n\n", g.machine.Err())
	}
	logger.Tail(&s, 8)
	ebitenutil.DebugPrint(screen, s.String())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	// the register dump doesn't fit the GBA screen, so the overlay uses the
	// full window
	return screenWidth * g.scale, screenHeight * g.scale
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("gba-go", flag.ContinueOnError)
	biosPath := flags.String("bios", "", "path to the GBA BIOS image")
	romPath := flags.String("rom", "", "path to the cartridge image")
	skipBIOS := flags.Bool("skipbios", false, "start at the cartridge even when a BIOS is given")
	headless := flags.Bool("headless", false, "run without a window")
	frames := flags.Int("frames", 60, "frames to run in headless mode")
	trace := flags.Bool("trace", false, "print every instruction in headless mode")
	scale := flags.Int("scale", 3, "window scale factor")
	policy := flags.String("decode", "halt", "on an undefined instruction: halt, skip or trap")
	if err := flags.Parse(args); err != nil {
		return err
	}

	config := emulator.DefaultConfig()
	config.SkipBIOS = *skipBIOS || *biosPath == ""
	p, err := emulator.ParseDecodePolicy(*policy)
	if err != nil {
		return err
	}
	config.OnDecodeError = p

	machine, err := emulator.New(config)
	if err != nil {
		return err
	}
	if *biosPath != "" {
		if err := load(*biosPath, machine.LoadBIOS); err != nil {
			return err
		}
	}
	if *romPath != "" {
		if err := load(*romPath, machine.LoadROM); err != nil {
			return err
		}
	}

	if *headless {
		return runHeadless(machine, *frames, *trace)
	}

	ebiten.SetWindowSize(screenWidth**scale, screenHeight**scale)
	ebiten.SetWindowTitle("GBA Emulator")
	return ebiten.RunGame(&Game{machine: machine, scale: *scale})
}

func load(path string, into func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return into(data)
}
