package emulator

import "github.com/eliperez-dev/electron/pkg/isa"

// The pipeline has no hardware interlocks. Each Tick advances the four
// stages in reverse order (WRITE_BACK, EXECUTE, DECODE, FETCH) so that
// every stage consumes the latch its upstream neighbour filled on the
// previous tick. WRITE_BACK therefore commits to the register file before
// EXECUTE reads it, and a taken branch rewrites the PC before the same
// tick's FETCH runs — the instruction already latched behind the branch
// still commits, it is never flushed.

// fetched is the FETCH→DECODE latch: a raw ROM word and its address
type fetched struct {
	word isa.Word
	addr uint8
}

// decoded is the DECODE→EXECUTE latch
type decoded struct {
	in   isa.Instruction
	addr uint8
}

// writeKind selects what a writeBack commits
type writeKind int

const (
	writeNone writeKind = iota
	writeRegister
	writeRAM
	writePort
	writeLoad // register ← RAM, the read happens at commit time
	writePush
	writePop // register ← top of stack, then SP increments
)

// writeBack is the EXECUTE→WRITE_BACK latch: the single externally
// visible effect the instruction still owes the machine
type writeBack struct {
	kind   writeKind
	target uint8
	value  uint8
}

type pipeline struct {
	target isa.ISA
	pcMask uint8

	rom   *rom
	regs  *registerFile
	mem   *memory
	ports *portBank

	pc          uint8
	accumulator uint8
	flags       Flags

	fd *fetched
	de *decoded
	ew *writeBack

	ticks uint64
}

func newPipeline(target isa.ISA, rom *rom, regs *registerFile, mem *memory, ports *portBank) *pipeline {
	return &pipeline{
		target: target,
		pcMask: uint8(target.ROMSize() - 1),
		rom:    rom,
		regs:   regs,
		mem:    mem,
		ports:  ports,
	}
}

// Tick advances the machine by exactly one clock cycle. It is strictly
// deterministic given the current state and the input latch.
func (p *pipeline) Tick() {
	p.ticks++

	p.writeBackStage()

	if stalled := !p.executeStage(); stalled {
		// INP with no fresh input freezes the whole pipeline: FETCH and
		// DECODE hold their latches until the host fills the latch.
		return
	}

	p.decodeStage()
	p.fetchStage()
}

func (p *pipeline) fetchStage() {
	addr := p.pc
	p.fd = &fetched{word: p.rom.At(addr), addr: addr}
	p.pc = (p.pc + 1) & p.pcMask
}

func (p *pipeline) decodeStage() {
	if p.fd == nil {
		return
	}
	p.de = &decoded{in: isa.Decode(p.fd.word, p.target), addr: p.fd.addr}
	p.fd = nil
}

// executeStage runs the ALU or resolves control transfer, updating the
// accumulator and flags immediately so the very next EXECUTE sees them.
// Returns false when the pipeline must stall on INP.
func (p *pipeline) executeStage() bool {
	if p.de == nil {
		return true
	}

	in := p.de.in
	if in.Op == isa.INP && !p.ports.inputFresh {
		return false
	}

	addr := p.de.addr
	p.de = nil

	switch in.Op {
	case isa.NOOP:

	case isa.IMM:
		p.ew = &writeBack{kind: writeRegister, target: in.A.Value, value: in.B.Value}

	case isa.ADD, isa.ADDC, isa.SUB, isa.AND, isa.OR, isa.XOR, isa.SHR, isa.NOT:
		p.executeALU(in)

	case isa.OUT:
		p.ew = &writeBack{kind: writePort, target: in.A.Value, value: p.regs.Read(in.B.Value)}

	case isa.ROUT:
		p.ew = &writeBack{kind: writePort, target: p.regs.Read(in.A.Value) & 0x07, value: p.regs.Read(in.B.Value)}

	case isa.JMP:
		p.pc = in.A.Value & p.pcMask

	case isa.BIE:
		p.branchIf(p.flags.EQ, in.A.Value)
	case isa.BIG:
		p.branchIf(p.flags.GT, in.A.Value)
	case isa.BIL:
		p.branchIf(p.flags.LT, in.A.Value)
	case isa.BIO:
		p.branchIf(p.flags.OV, in.A.Value)

	case isa.CALL:
		returnTo := (addr + 1) & p.pcMask
		p.ew = &writeBack{kind: writePush, value: returnTo}
		p.pc = in.A.Value & p.pcMask

	case isa.RET:
		// control transfer needs the address now, so the pop happens in
		// EXECUTE rather than WRITE_BACK
		p.pc = p.mem.Pop() & p.pcMask

	case isa.LOAD:
		p.ew = &writeBack{kind: writeLoad, target: in.A.Value, value: in.B.Value}

	case isa.STORE:
		p.ew = &writeBack{kind: writeRAM, target: in.A.Value, value: p.regs.Read(in.B.Value)}

	case isa.PUSH:
		p.ew = &writeBack{kind: writePush, value: p.regs.Read(in.A.Value)}

	case isa.POP:
		p.ew = &writeBack{kind: writePop, target: in.A.Value}

	case isa.INP:
		p.ew = &writeBack{kind: writeRegister, target: in.A.Value, value: p.ports.TakeInput()}
	}

	return true
}

func (p *pipeline) branchIf(taken bool, target uint8) {
	if taken {
		p.pc = target & p.pcMask
	}
}

func (p *pipeline) writeBackStage() {
	if p.ew == nil {
		return
	}
	wb := *p.ew
	p.ew = nil

	switch wb.kind {
	case writeRegister:
		p.regs.Write(wb.target, wb.value)
	case writeRAM:
		p.mem.Write(wb.target, wb.value)
	case writePort:
		p.ports.Write(wb.target, wb.value)
	case writeLoad:
		p.regs.Write(wb.target, p.mem.Read(wb.value))
	case writePush:
		p.mem.Push(wb.value)
	case writePop:
		p.regs.Write(wb.target, p.mem.Pop())
	}
}

func (p *pipeline) reset() {
	p.pc = 0
	p.accumulator = 0
	p.flags = Flags{}
	p.fd = nil
	p.de = nil
	p.ew = nil
	p.ticks = 0
	p.regs.reset()
	p.mem.reset()
	p.ports.reset()
}
