package emulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliperez-dev/electron/pkg/asm"
	"github.com/eliperez-dev/electron/pkg/isa"
)

func TestRegisterResultLatency(t *testing.T) {
	// IMM's write back and ADD's execute share a tick; write back runs
	// first, so ADD reads 5. Bare ADD stores nothing, UADD reads the
	// forwarded accumulator and the still-unchanged R1.
	source := `
IMM R1 5
ADD R1 R1
UADD R2 R1
`
	e, _, err := RunSource(source, isa.V1, 7)
	require.NoError(t, err)

	s := e.Snapshot()
	require.Equal(t, uint8(5), s.Registers[1])
	require.Equal(t, uint8(15), s.Registers[2])
	require.Equal(t, uint8(15), s.Accumulator)
}

func TestAccumulatorForwarding(t *testing.T) {
	// back to back U-prefixed adds see each other's accumulator without
	// waiting for any write back
	source := `
IMM R1 1
UADD R2 R1
UADD R3 R1
UADD R4 R1
`
	e, _, err := RunSource(source, isa.V1, 8)
	require.NoError(t, err)

	s := e.Snapshot()
	require.Equal(t, uint8(1), s.Registers[2])
	require.Equal(t, uint8(2), s.Registers[3])
	require.Equal(t, uint8(3), s.Registers[4])
}

func TestBranchShadowCommits(t *testing.T) {
	// the instruction already fetched behind a taken branch still
	// commits; the one after it is never fetched
	source := `
IMM R1 1
JMP TGT
IMM R2 2
IMM R3 3
TGT:
IMM R4 4
`
	e, _, err := RunSource(source, isa.V1, 8)
	require.NoError(t, err)

	s := e.Snapshot()
	require.Equal(t, uint8(1), s.Registers[1])
	require.Equal(t, uint8(2), s.Registers[2], "shadow instruction must commit")
	require.Equal(t, uint8(0), s.Registers[3], "instruction past the shadow must not run")
	require.Equal(t, uint8(4), s.Registers[4], "branch target must run")
}

func TestBranchShadowCommitsBeforeTarget(t *testing.T) {
	// write back order across a taken branch: shadow first, target after
	source := `
JMP TGT
OUT %0 R0
IMM R1 1
TGT:
OUT %1 R0
`
	var order []uint8
	sink := func(port, value uint8) {
		order = append(order, port)
	}

	_, _, err := RunSource(source, isa.V1, 8, WithDisplaySink(sink))
	require.NoError(t, err)
	require.Equal(t, []uint8{0, 1}, order)
}

func TestConditionalBranches(t *testing.T) {
	tests := []struct {
		name   string
		setup  string
		branch string
		taken  bool
	}{
		{name: "BIE taken", setup: "IMM R1 5\nIMM R2 5", branch: "BIE", taken: true},
		{name: "BIE not taken", setup: "IMM R1 5\nIMM R2 6", branch: "BIE", taken: false},
		{name: "BIG taken", setup: "IMM R1 9\nIMM R2 5", branch: "BIG", taken: true},
		{name: "BIL taken", setup: "IMM R1 2\nIMM R2 5", branch: "BIL", taken: true},
		{name: "BIO taken", setup: "IMM R1 200\nIMM R2 100", branch: "BIO", taken: true},
		{name: "BIO not taken", setup: "IMM R1 2\nIMM R2 3", branch: "BIO", taken: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.setup + `
ADD R1 R2
` + tt.branch + ` TGT
NOOP
NOOP
IMM R7 1
TGT:
IMM R6 1
`
			e, _, err := RunSource(source, isa.V1, 12)
			require.NoError(t, err)

			s := e.Snapshot()
			if tt.taken {
				require.Equal(t, uint8(0), s.Registers[7], "fall-through must be skipped")
			} else {
				require.Equal(t, uint8(1), s.Registers[7], "fall-through must run")
			}
			require.Equal(t, uint8(1), s.Registers[6])
		})
	}
}

func TestFlagsPersistAcrossNonALUOps(t *testing.T) {
	source := `
IMM R1 5
IMM R2 5
ADD R1 R2
IMM R3 9
OUT %0 R3
`
	e, _, err := RunSource(source, isa.V1, 10)
	require.NoError(t, err)

	s := e.Snapshot()
	require.True(t, s.Flags.EQ, "EQ set by ADD must survive IMM and OUT")
	require.False(t, s.Flags.GT)
	require.False(t, s.Flags.LT)
	require.False(t, s.Flags.OV)
}

func TestADDCConsumesPreviousOverflow(t *testing.T) {
	source := `
IMM R1 200
IMM R2 100
ADD R1 R2
ADDC R0 R0
`
	e, _, err := RunSource(source, isa.V2, 8)
	require.NoError(t, err)

	s := e.Snapshot()
	require.Equal(t, uint8(1), s.Accumulator, "ADDC must see the carry of the previous ALU op")
	require.False(t, s.Flags.OV, "ADDC must then write its own overflow")
}

func TestWritesToR0AreDropped(t *testing.T) {
	source := `
IMM R0 9
IMM R1 3
SADD R0 R1
`
	e, _, err := RunSource(source, isa.V1, 12)
	require.NoError(t, err)

	for tick := 0; tick < 12; tick++ {
		e.Tick()
		require.Equal(t, uint8(0), e.Snapshot().Registers[0], "R0 observable at every tick")
	}
}

func TestInputStallFreezesPipeline(t *testing.T) {
	source := `
INP R1
OUT %0 R1
`
	program, err := asm.Assemble(source, isa.V2)
	require.NoError(t, err)

	e := New(isa.V2)
	require.NoError(t, e.LoadProgram(program.Words))

	e.RunTicks(8)
	s := e.Snapshot()
	require.Equal(t, uint8(0), s.Registers[1], "INP must not complete before input arrives")
	require.Equal(t, uint8(0), s.Framebuffer[0], "OUT is frozen behind the stalled INP")

	e.SetInput(77)
	e.RunTicks(4)

	s = e.Snapshot()
	require.Equal(t, uint8(77), s.Registers[1])
	require.Equal(t, uint8(77), s.Framebuffer[0])
}

func TestResetIsIdempotent(t *testing.T) {
	source := `
IMM R1 5
SADD R1 R1
OUT %0 R1
`
	e, _, err := RunSource(source, isa.V1, 9)
	require.NoError(t, err)
	require.NotEqual(t, uint8(0), e.Snapshot().Registers[1])

	e.Reset()
	once := e.Snapshot()
	e.Reset()
	twice := e.Snapshot()

	require.Equal(t, once, twice)
	require.Equal(t, uint8(0), once.Registers[1])
	require.Equal(t, uint8(0), once.PC)
	require.Equal(t, uint64(0), once.Ticks)

	// the ROM survives a reset
	e.RunTicks(9)
	require.Equal(t, uint8(10), e.Snapshot().Registers[1])
}

func TestProgramCounterWraps(t *testing.T) {
	// an empty V1 ROM is 32 NOOPs; the PC must walk 0..31 and wrap
	e := New(isa.V1)

	e.RunTicks(33)
	require.Equal(t, uint8(1), e.Snapshot().PC)
}
