package asm

import "github.com/eliperez-dev/electron/pkg/isa"

// writeTarget returns the register an instruction writes during
// WRITE_BACK, if any. ALU ops only store under the S and U prefixes,
// except SHR and NOT which also store with no prefix at all.
func writeTarget(in isa.Instruction) (uint8, bool) {
	switch in.Op {
	case isa.IMM, isa.LOAD, isa.POP, isa.INP:
		return in.A.Value, true
	case isa.ADD, isa.ADDC, isa.SUB, isa.AND, isa.OR, isa.XOR:
		if in.Prefix == isa.PrefixS || in.Prefix == isa.PrefixU {
			return in.A.Value, true
		}
	case isa.SHR, isa.NOT:
		if in.Prefix != isa.PrefixX {
			return in.A.Value, true
		}
	}
	return 0, false
}

// readsRegister reports whether an instruction reads the given register
// during EXECUTE. R0 always reads as zero, so it never participates.
func readsRegister(in isa.Instruction, reg uint8) bool {
	if reg == 0 {
		return false
	}

	spec := isa.LookupOp(in.Op)
	if spec.Prefixable {
		if in.B.Value == reg {
			return true
		}
		return !in.Prefix.ReadsAccumulator() && in.A.Value == reg
	}

	switch in.Op {
	case isa.OUT, isa.STORE:
		return in.B.Value == reg
	case isa.PUSH:
		return in.A.Value == reg
	case isa.ROUT:
		return in.A.Value == reg || in.B.Value == reg
	}
	return false
}

// checkHazards flags ALU results that the very next instruction consumes.
// The result only reaches the register file after WRITE_BACK, one slot
// behind where a straight reading of the program suggests, so the read is
// a hazard the programmer has to reason about. Code is emitted anyway.
func (p *Program) checkHazards(statements []statement, instructions []isa.Instruction) {
	for i := 0; i+1 < len(instructions); i++ {
		if !instructions[i].IsALU() {
			continue
		}
		dest, ok := writeTarget(instructions[i])
		if !ok || dest == 0 {
			continue
		}
		if readsRegister(instructions[i+1], dest) {
			p.warnf(statements[i+1].line, WarnPipelineHazard,
				"R%d is written by the previous instruction and may not have reached the register file yet", dest)
		}
	}
}

// checkStackDepth runs a best-effort linear scan of stack depth. Branches
// are ignored, so the tracker only catches straight-line mistakes.
func (p *Program) checkStackDepth(statements []statement, instructions []isa.Instruction) {
	depth := 0
	for i, in := range instructions {
		switch in.Op {
		case isa.PUSH, isa.CALL:
			if depth >= stackCapacity {
				p.warnf(statements[i].line, WarnStackOverflowStatic,
					"%s with a full stack, the value will be dropped", in.Op.Mnemonic())
				continue
			}
			depth++
		case isa.POP, isa.RET:
			if depth == 0 {
				p.warnf(statements[i].line, WarnStackUnderflowStatic,
					"%s with an empty stack", in.Op.Mnemonic())
				continue
			}
			depth--
		}
	}
}

// stackCapacity is the V2 stack limit: the stack shares all 16 RAM bytes
const stackCapacity = 16
