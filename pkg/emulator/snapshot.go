package emulator

import (
	"encoding/json"

	"github.com/eliperez-dev/electron/pkg/isa"
)

// Snapshot is the full observable machine state between two ticks
type Snapshot struct {
	ISA         string   `json:"isa"`
	Ticks       uint64   `json:"ticks"`
	PC          uint8    `json:"pc"`
	Registers   [8]uint8 `json:"registers"`
	Accumulator uint8    `json:"accumulator"`
	Flags       Flags    `json:"flags"`
	SP          uint8    `json:"sp"`
	RAM         []uint8  `json:"ram,omitempty"`
	Framebuffer Frame    `json:"framebuffer"`
}

// Snapshot captures the observable state. R0 reads as zero here like
// everywhere else outside WRITE_BACK.
func (e *Emulator) Snapshot() Snapshot {
	p := e.pipeline

	s := Snapshot{
		ISA:         e.ISA.String(),
		Ticks:       p.ticks,
		PC:          p.pc,
		Accumulator: p.accumulator,
		Flags:       p.flags,
		SP:          p.mem.sp,
		Framebuffer: p.ports.rows,
	}
	for i := uint8(0); i < 8; i++ {
		s.Registers[i] = p.regs.Read(i)
	}
	if e.ISA == isa.V2 {
		s.RAM = append([]uint8(nil), p.mem.data[:]...)
	}
	return s
}

// MarshalState dumps the snapshot as JSON for the terminal state dump and
// for debugging tools
func (e *Emulator) MarshalState() ([]byte, error) {
	return json.MarshalIndent(e.Snapshot(), "", "  ")
}
