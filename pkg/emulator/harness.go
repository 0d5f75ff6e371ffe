package emulator

import (
	"github.com/pkg/errors"

	"github.com/eliperez-dev/electron/pkg/asm"
	"github.com/eliperez-dev/electron/pkg/isa"
)

// RunSource assembles an Electron source text, loads it into a fresh
// emulator, and ticks a fixed number of cycles. Deterministic given the
// source and tick count, which makes it the backbone of the conformance
// fixtures.
func RunSource(source string, target isa.ISA, ticks int, opts ...optionFunc) (*Emulator, *asm.Program, error) {
	program, err := asm.Assemble(source, target)
	if err != nil {
		return nil, nil, errors.Wrap(err, "assembly failed")
	}

	e := New(target, opts...)
	if err := e.LoadProgram(program.Words); err != nil {
		return nil, nil, err
	}

	e.RunTicks(ticks)
	return e, program, nil
}
