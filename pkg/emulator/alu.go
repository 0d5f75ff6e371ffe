package emulator

import "github.com/eliperez-dev/electron/pkg/isa"

// executeALU runs one arithmetic/logic instruction. The prefix decides
// where operand a comes from and whether the result is stored:
//
//	(none)  a from register, flags and accumulator only
//	S       a from register, result stored to a
//	U       a from accumulator, result stored to a
//	X       a from accumulator, flags and accumulator only
//
// SHR and NOT operate on operand b alone and store even without a prefix.
// The accumulator and flags update here, in EXECUTE, which is why a U- or
// X-prefixed op one instruction later already sees the new accumulator
// while the register file still lags a tick behind.
func (p *pipeline) executeALU(in isa.Instruction) {
	opA := p.regs.Read(in.A.Value)
	if in.Prefix.ReadsAccumulator() {
		opA = p.accumulator
	}
	opB := p.regs.Read(in.B.Value)

	// ADDC consumes the overflow of the previous ALU op, so sample it
	// before the flags are rewritten below
	carryIn := p.flags.OV

	result, overflow := compute(in.Op, opA, opB, carryIn)

	p.accumulator = result
	p.flags = Flags{
		EQ: opA == opB,
		GT: opA > opB,
		LT: opA < opB,
		OV: overflow,
	}

	if p.storesResult(in) {
		p.ew = &writeBack{kind: writeRegister, target: in.A.Value, value: result}
	}
}

// compute performs the unsigned 8-bit arithmetic. Overflow means a carry
// out of bit 7 for additions and a borrow for subtraction; the bitwise
// and shift ops never overflow.
func compute(op isa.Opcode, a, b uint8, carryIn bool) (uint8, bool) {
	switch op {
	case isa.ADD:
		sum := uint16(a) + uint16(b)
		return uint8(sum), sum > 0xFF
	case isa.ADDC:
		sum := uint16(a) + uint16(b)
		if carryIn {
			sum++
		}
		return uint8(sum), sum > 0xFF
	case isa.SUB:
		return a - b, a < b
	case isa.AND:
		return a & b, false
	case isa.OR:
		return a | b, false
	case isa.XOR:
		return a ^ b, false
	case isa.SHR:
		return b >> 1, false
	case isa.NOT:
		return ^b, false
	}
	return 0, false
}

func (p *pipeline) storesResult(in isa.Instruction) bool {
	switch in.Prefix {
	case isa.PrefixS, isa.PrefixU:
		return true
	case isa.PrefixNone:
		// SHR and NOT always store unless explicitly compare-only
		return in.Op == isa.SHR || in.Op == isa.NOT
	}
	return false
}
