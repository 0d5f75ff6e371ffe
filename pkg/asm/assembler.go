package asm

import (
	"fmt"
	"strings"

	"github.com/eliperez-dev/electron/pkg/isa"
)

// Program is the result of a successful assembly: a full ROM image padded
// with NOOP, plus any non-fatal warnings collected along the way.
type Program struct {
	ISA      isa.ISA
	Words    []isa.Word
	Warnings []Warning

	// Lines maps each emitted instruction (by code address) back to its
	// 1-based source line, for diagnostics and debugging tools.
	Lines []int
}

// statement is one instruction-bearing source line after lexing
type statement struct {
	line   int
	tokens []token // label definitions stripped
}

// Assemble runs the two-pass assembler over an Electron source text and
// produces a ROM image for the given ISA. The returned error is always an
// *Error with the offending line; warnings never abort assembly.
func Assemble(source string, target isa.ISA) (*Program, error) {
	statements, labels, err := collect(source, target)
	if err != nil {
		return nil, err
	}

	program := &Program{ISA: target}
	instructions := make([]isa.Instruction, 0, len(statements))

	for _, stmt := range statements {
		in, err := program.emit(stmt, labels, target)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, in)
		program.Words = append(program.Words, isa.Encode(in))
		program.Lines = append(program.Lines, stmt.line)
	}

	program.checkHazards(statements, instructions)
	program.checkStackDepth(statements, instructions)

	for len(program.Words) < target.ROMSize() {
		program.Words = append(program.Words, isa.NoopWord())
	}

	return program, nil
}

type pendingLabel struct {
	name string
	line int
}

// collect is pass 1: lex every line, assign code addresses to
// instruction-bearing lines, and bind labels to the address of the
// following instruction.
func collect(source string, target isa.ISA) ([]statement, map[string]int, error) {
	var statements []statement
	labels := make(map[string]int)
	var pending []pendingLabel

	next := 0
	for i, line := range strings.Split(source, "\n") {
		lineNumber := i + 1

		tokens, err := lexLine(line, lineNumber)
		if err != nil {
			return nil, nil, err
		}

		for len(tokens) > 0 && tokens[0].kind == tokenLabelDef {
			pending = append(pending, pendingLabel{name: tokens[0].text, line: lineNumber})
			tokens = tokens[1:]
		}

		if len(tokens) == 0 {
			continue
		}

		for _, label := range pending {
			if _, exists := labels[label.name]; exists {
				return nil, nil, errorf(label.line, ErrDuplicateLabel, "label %q is already defined", label.name)
			}
			labels[label.name] = next
		}
		pending = pending[:0]

		if next >= target.ROMSize() {
			return nil, nil, errorf(lineNumber, ErrAddressRange, "program exceeds the %d-instruction ROM", target.ROMSize())
		}

		statements = append(statements, statement{
			line:   lineNumber,
			tokens: tokens,
		})
		next++
	}

	// a label at the end of the file binds to the NOOP padding that follows
	for _, label := range pending {
		if _, exists := labels[label.name]; exists {
			return nil, nil, errorf(label.line, ErrDuplicateLabel, "label %q is already defined", label.name)
		}
		if next >= target.ROMSize() {
			return nil, nil, errorf(label.line, ErrAddressRange, "label %q falls outside the %d-instruction ROM", label.name, target.ROMSize())
		}
		labels[label.name] = next
	}

	return statements, labels, nil
}

// emit is pass 2 for a single statement: mnemonic lookup, arity and
// operand-kind validation, label resolution, and warning checks.
func (p *Program) emit(stmt statement, labels map[string]int, target isa.ISA) (isa.Instruction, error) {
	head := stmt.tokens[0]
	if head.kind != tokenIdent {
		return isa.Instruction{}, errorf(stmt.line, ErrUnknownMnemonic, "expected a mnemonic, got %q", describeToken(head))
	}

	spec, prefix, ok := lookupMnemonic(head.text, target)
	if !ok {
		return isa.Instruction{}, errorf(stmt.line, ErrUnknownMnemonic, "%q is not a %s instruction", head.text, target)
	}

	operands := stmt.tokens[1:]
	if len(operands) != spec.Arity() {
		return isa.Instruction{}, errorf(stmt.line, ErrArity, "%s takes %d operand(s), got %d", spec.Op.Mnemonic(), spec.Arity(), len(operands))
	}

	in := isa.Instruction{Op: spec.Op, Prefix: prefix}
	for pos, kind := range spec.Signature {
		operand, err := p.resolve(operands[pos], kind, stmt.line, labels, target)
		if err != nil {
			return isa.Instruction{}, err
		}
		if pos == 0 {
			in.A = operand
		} else {
			in.B = operand
		}
	}

	if dest, ok := writeTarget(in); ok && dest == 0 {
		p.warnf(stmt.line, WarnWriteToZeroRegister, "write to R0 is silently ignored by the hardware")
	}

	return in, nil
}

// lookupMnemonic resolves a mnemonic token, stripping an ALU prefix when
// the token itself is not a mnemonic. Checking the full token first keeps
// XOR from parsing as X+OR and SUB from parsing as S+UB.
func lookupMnemonic(text string, target isa.ISA) (isa.Spec, isa.Prefix, bool) {
	if spec, ok := isa.Lookup(text); ok && spec.AvailableIn(target) {
		return spec, isa.PrefixNone, true
	}

	if len(text) < 2 {
		return isa.Spec{}, isa.PrefixNone, false
	}

	var prefix isa.Prefix
	switch text[0] {
	case 'S':
		prefix = isa.PrefixS
	case 'U':
		prefix = isa.PrefixU
	case 'X':
		prefix = isa.PrefixX
	default:
		return isa.Spec{}, isa.PrefixNone, false
	}

	spec, ok := isa.Lookup(text[1:])
	if !ok || !spec.Prefixable || !spec.AvailableIn(target) {
		return isa.Spec{}, isa.PrefixNone, false
	}

	return spec, prefix, true
}

func (p *Program) resolve(t token, kind isa.OperandKind, line int, labels map[string]int, target isa.ISA) (isa.Operand, error) {
	switch kind {
	case isa.KindRegister:
		if t.kind != tokenRegister {
			return isa.Operand{}, kindMismatch(line, kind, t)
		}
		return isa.Register(uint8(t.value)), nil

	case isa.KindPort:
		if t.kind != tokenPort {
			return isa.Operand{}, kindMismatch(line, kind, t)
		}
		if t.value > 7 {
			p.warnf(line, WarnPortOutOfRange, "port %%%d does not exist, only the low 3 bits are wired", t.value)
		}
		return isa.Port(uint8(t.value)), nil

	case isa.KindAddress:
		if t.kind != tokenAddress {
			return isa.Operand{}, kindMismatch(line, kind, t)
		}
		if t.value >= target.RAMSize() {
			p.warnf(line, WarnAddressOutOfRange, "address #%d is outside the %d-byte RAM", t.value, target.RAMSize())
		}
		return isa.Address(uint8(t.value)), nil

	case isa.KindImmediate:
		if t.kind != tokenNumber {
			return isa.Operand{}, kindMismatch(line, kind, t)
		}
		if t.value > 255 {
			return isa.Operand{}, errorf(line, ErrAddressRange, "immediate %d does not fit in a byte", t.value)
		}
		return isa.Immediate(uint8(t.value)), nil

	case isa.KindCodeAddr:
		addr := t.value
		if t.kind == tokenIdent {
			resolved, ok := labels[t.text]
			if !ok {
				return isa.Operand{}, errorf(line, ErrUnknownLabel, "label %q is never defined", t.text)
			}
			addr = resolved
		} else if t.kind != tokenNumber {
			return isa.Operand{}, kindMismatch(line, kind, t)
		}
		if addr >= target.ROMSize() {
			return isa.Operand{}, errorf(line, ErrAddressRange, "code address %d is outside the %d-instruction ROM", addr, target.ROMSize())
		}
		return isa.CodeAddr(uint8(addr)), nil
	}

	return isa.Operand{}, kindMismatch(line, kind, t)
}

func kindMismatch(line int, want isa.OperandKind, got token) *Error {
	return errorf(line, ErrOperandKind, "expected a %s operand, got %q", want, describeToken(got))
}

func describeToken(t token) string {
	switch t.kind {
	case tokenRegister:
		return fmt.Sprintf("R%d", t.value)
	case tokenPort:
		return fmt.Sprintf("%%%d", t.value)
	case tokenAddress:
		return fmt.Sprintf("#%d", t.value)
	case tokenNumber:
		return fmt.Sprintf("%d", t.value)
	}
	return t.text
}

func (p *Program) warnf(line int, kind WarningKind, format string, args ...interface{}) {
	p.Warnings = append(p.Warnings, warningf(line, kind, format, args...))
}
