package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/eliperez-dev/electron/pkg/asm"
	"github.com/eliperez-dev/electron/pkg/emulator"
	"github.com/eliperez-dev/electron/pkg/isa"

	wde "github.com/skelterjohn/go.wde"
	_ "github.com/skelterjohn/go.wde/cocoa"
)

const windowSize = 512

var pixelOff = color.RGBA{R: 15, G: 56, B: 15, A: 255}
var pixelOn = color.RGBA{R: 155, G: 188, B: 15, A: 255}

var cli struct {
	File  string  `short:"f" required:"true" help:"Path to Electron assembly source" type:"path"`
	V2    bool    `name:"v2" help:"Target the V2 instruction set (default V1)"`
	Clock float64 `short:"c" default:"1" help:"Clock rate factor"`
	NT    bool    `name:"nt" help:"Suppress the terminal state dump on exit"`
	FPS   int     `name:"fps" default:"30" help:"Display rendering frame rate"`
}

func target() isa.ISA {
	if cli.V2 {
		return isa.V2
	}
	return isa.V1
}

func run() error {
	source, err := ioutil.ReadFile(cli.File)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", cli.File)
	}

	program, err := asm.Assemble(string(source), target())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, warning := range program.Warnings {
		fmt.Fprintln(os.Stderr, warning)
	}

	e := emulator.New(target(), emulator.WithClockFactor(cli.Clock))
	if err := e.LoadProgram(program.Words); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := e.Run(ctx); err != nil {
			log.Panicln(err)
		}
	}()

	go windowLoop(e)

	wde.Run()
	cancel()

	if !cli.NT {
		state, err := e.MarshalState()
		if err != nil {
			return err
		}
		fmt.Println(string(state))
	}

	return nil
}

// windowLoop renders framebuffer updates into a go.wde window until the
// user closes it or hits escape. A typed key whose glyph is a single byte
// fills the input latch with that byte; other keys are ignored.
func windowLoop(e *emulator.Emulator) {
	defer wde.Stop()

	w, err := wde.NewWindow(windowSize, windowSize)
	if err != nil {
		log.Panicln(err)
	}
	w.SetTitle(fmt.Sprintf("electron %s", e.ISA))
	w.LockSize(true)
	w.Show()

	fps := cli.FPS
	if fps < 1 {
		fps = 30
	}

	events := w.EventChan()
	frameSync := time.NewTicker(time.Second / time.Duration(fps))
	defer frameSync.Stop()

	var frame emulator.Frame
	dirty := true

	for {
		select {

		case event := <-events:
			switch v := event.(type) {
			case wde.CloseEvent:
				return
			case wde.KeyTypedEvent:
				if v.Key == wde.KeyEscape {
					return
				}
				if len(v.Glyph) == 1 {
					e.SetInput(v.Glyph[0])
				}
			}

		case frame = <-e.FrameChan:
			dirty = true

		case <-frameSync.C:
			if !dirty {
				continue
			}
			render(w, frame)
			dirty = false
		}
	}
}

// render scales the 8×8 framebuffer up to the window. Bit 7 of each row
// is the leftmost pixel.
func render(w wde.Window, frame emulator.Frame) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y, row := range frame {
		for x := 0; x < 8; x++ {
			c := pixelOff
			if row>>(7-uint(x))&1 == 1 {
				c = pixelOn
			}
			src.SetRGBA(x, y, c)
		}
	}

	bounds := w.Screen().Bounds()
	buffer := image.NewRGBA(bounds)
	xdraw.NearestNeighbor.Scale(buffer, bounds, src, src.Bounds(), xdraw.Src, nil)

	w.Screen().CopyRGBA(buffer, bounds)
	w.FlushImage(bounds)
}

func main() {
	k := kong.Parse(&cli)
	err := run()
	k.FatalIfErrorf(err)
}
