package emulator

import (
	"context"
	"time"

	"github.com/eliperez-dev/electron/pkg/isa"
)

// baseClockHz is the clock rate at factor 1.0, roughly the cadence of the
// redstone build the machine is derived from
const baseClockHz = 10.0

// Emulator emulates one Electron machine: ROM, the 4-stage pipeline,
// registers, RAM/stack (V2), and the I/O port bank behind the display.
//
// The emulator is a single-threaded cooperative state machine. Tick
// advances one clock cycle atomically; between ticks the host may inspect
// any state, set the input latch, or reset.
type Emulator struct {
	ISA isa.ISA

	// FrameChan publishes a framebuffer snapshot after every tick that
	// committed a port write (even one that rewrote a row with its current
	// value), for a renderer running on its own goroutine
	FrameChan chan Frame

	rom      *rom
	pipeline *pipeline
	ports    *portBank
	options  options
}

type options struct {
	// ClockFactor scales the base clock rate. 0 = uncapped.
	ClockFactor float64
}

type optionFunc func(e *Emulator)

// WithClockFactor scales the emulated clock by a positive factor
func WithClockFactor(factor float64) optionFunc {
	return func(e *Emulator) {
		e.options.ClockFactor = factor
	}
}

// WithSpeedUncapped causes Run to tick as fast as it can
func WithSpeedUncapped() optionFunc {
	return func(e *Emulator) {
		e.options.ClockFactor = 0
	}
}

// WithDisplaySink provides a func f that is called with (port, value) on
// every committed port write
func WithDisplaySink(f DisplaySink) optionFunc {
	return func(e *Emulator) {
		e.ports.sink = f
	}
}

// New returns an Emulator for the given ISA revision
func New(target isa.ISA, opts ...optionFunc) *Emulator {
	rom := newROM(target)
	regs := newRegisterFile()
	mem := newMemory()
	ports := newPortBank()

	e := &Emulator{
		ISA:       target,
		FrameChan: make(chan Frame),
		rom:       rom,
		pipeline:  newPipeline(target, rom, regs, mem, ports),
		ports:     ports,
		options:   options{ClockFactor: 1},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LoadProgram places an assembled ROM image into the machine
func (e *Emulator) LoadProgram(words []isa.Word) error {
	return e.rom.Load(words)
}

// Tick advances the pipeline by exactly one clock cycle
func (e *Emulator) Tick() {
	e.pipeline.Tick()
}

// RunTicks advances the pipeline by n clock cycles
func (e *Emulator) RunTicks(n int) {
	for i := 0; i < n; i++ {
		e.pipeline.Tick()
	}
}

// SetInput fills the input latch, releasing a pipeline stalled on INP
func (e *Emulator) SetInput(value uint8) {
	e.ports.SetInput(value)
}

// Frame returns the current framebuffer contents
func (e *Emulator) Frame() Frame {
	return e.ports.rows
}

// Reset returns the machine to power-on state, keeping the loaded ROM.
// Resetting twice is the same as resetting once.
func (e *Emulator) Reset() {
	e.pipeline.reset()
}

// Run ticks the emulator at the configured clock rate until the context
// is cancelled, publishing display updates on FrameChan
func (e *Emulator) Run(ctx context.Context) error {
	var clock <-chan time.Time
	if e.options.ClockFactor > 0 {
		period := time.Duration(float64(time.Second) / (baseClockHz * e.options.ClockFactor))
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		clock = ticker.C
	}

	for {
		if clock != nil {
			select {
			case <-clock:
			case <-ctx.Done():
				return nil
			}
		} else {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}

		e.pipeline.Tick()

		if e.ports.dirty {
			select {
			case e.FrameChan <- e.ports.Frame():
			case <-ctx.Done():
				return nil
			}
		}
	}
}
