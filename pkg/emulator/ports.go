package emulator

// Frame is a snapshot of the 8×8 framebuffer. Row r is the current value
// of output port r; bit 7 is the leftmost pixel of the row.
type Frame [8]uint8

// DisplaySink receives every port write as it commits, in order
type DisplaySink func(port, value uint8)

// portBank is the I/O side of the machine: eight output ports driving the
// display rows, and a single byte-wide input latch the host fills.
type portBank struct {
	rows  [8]uint8
	dirty bool

	input      uint8
	inputFresh bool

	sink DisplaySink
}

func newPortBank() *portBank {
	return &portBank{}
}

// Write commits a value to an output port. Only the low 3 bits of the
// port index are wired.
func (b *portBank) Write(port, value uint8) {
	port &= 0x07
	b.rows[port] = value
	b.dirty = true
	if b.sink != nil {
		b.sink(port, value)
	}
}

// SetInput fills the input latch and marks it fresh, releasing a stalled INP
func (b *portBank) SetInput(value uint8) {
	b.input = value
	b.inputFresh = true
}

// TakeInput samples the latch and consumes its freshness
func (b *portBank) TakeInput() uint8 {
	b.inputFresh = false
	return b.input
}

// Frame copies out the current framebuffer and clears the dirty mark
func (b *portBank) Frame() Frame {
	b.dirty = false
	return b.rows
}

func (b *portBank) reset() {
	b.rows = [8]uint8{}
	b.dirty = false
	b.input = 0
	b.inputFresh = false
}
