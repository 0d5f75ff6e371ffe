package isa

// Spec describes one mnemonic: its opcode, the operand kinds it accepts
// positionally, whether it takes an ALU prefix, and which ISA revisions
// carry it.
type Spec struct {
	Op         Opcode
	Signature  []OperandKind
	Prefixable bool
	minISA     ISA
}

// Arity returns the number of operands the instruction takes
func (s Spec) Arity() int {
	return len(s.Signature)
}

// AvailableIn is true if the mnemonic exists in the given ISA revision
func (s Spec) AvailableIn(i ISA) bool {
	return i >= s.minISA
}

var specs = [opcodeCount]Spec{
	NOOP:  {Op: NOOP, Signature: nil, minISA: V1},
	IMM:   {Op: IMM, Signature: []OperandKind{KindRegister, KindImmediate}, minISA: V1},
	ADD:   {Op: ADD, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V1},
	SUB:   {Op: SUB, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V1},
	OUT:   {Op: OUT, Signature: []OperandKind{KindPort, KindRegister}, minISA: V1},
	JMP:   {Op: JMP, Signature: []OperandKind{KindCodeAddr}, minISA: V1},
	BIE:   {Op: BIE, Signature: []OperandKind{KindCodeAddr}, minISA: V1},
	BIG:   {Op: BIG, Signature: []OperandKind{KindCodeAddr}, minISA: V1},
	BIL:   {Op: BIL, Signature: []OperandKind{KindCodeAddr}, minISA: V1},
	BIO:   {Op: BIO, Signature: []OperandKind{KindCodeAddr}, minISA: V1},
	ADDC:  {Op: ADDC, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	AND:   {Op: AND, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	OR:    {Op: OR, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	XOR:   {Op: XOR, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	SHR:   {Op: SHR, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	NOT:   {Op: NOT, Signature: []OperandKind{KindRegister, KindRegister}, Prefixable: true, minISA: V2},
	LOAD:  {Op: LOAD, Signature: []OperandKind{KindRegister, KindAddress}, minISA: V2},
	STORE: {Op: STORE, Signature: []OperandKind{KindAddress, KindRegister}, minISA: V2},
	PUSH:  {Op: PUSH, Signature: []OperandKind{KindRegister}, minISA: V2},
	POP:   {Op: POP, Signature: []OperandKind{KindRegister}, minISA: V2},
	CALL:  {Op: CALL, Signature: []OperandKind{KindCodeAddr}, minISA: V2},
	RET:   {Op: RET, Signature: nil, minISA: V2},
	INP:   {Op: INP, Signature: []OperandKind{KindRegister}, minISA: V2},
	ROUT:  {Op: ROUT, Signature: []OperandKind{KindRegister, KindRegister}, minISA: V2},
}

var mnemonics = [opcodeCount]string{
	NOOP:  "NOOP",
	IMM:   "IMM",
	ADD:   "ADD",
	SUB:   "SUB",
	OUT:   "OUT",
	JMP:   "JMP",
	BIE:   "BIE",
	BIG:   "BIG",
	BIL:   "BIL",
	BIO:   "BIO",
	ADDC:  "ADDC",
	AND:   "AND",
	OR:    "OR",
	XOR:   "XOR",
	SHR:   "SHR",
	NOT:   "NOT",
	LOAD:  "LOAD",
	STORE: "STORE",
	PUSH:  "PUSH",
	POP:   "POP",
	CALL:  "CALL",
	RET:   "RET",
	INP:   "INP",
	ROUT:  "ROUT",
}

var byMnemonic = func() map[string]Spec {
	m := make(map[string]Spec, len(specs))
	for op, name := range mnemonics {
		m[name] = specs[op]
	}
	return m
}()

// Mnemonic returns the canonical (uppercase) name of the opcode
func (o Opcode) Mnemonic() string {
	if int(o) < len(mnemonics) {
		return mnemonics[o]
	}
	return "NOOP"
}

// Lookup resolves an uppercase mnemonic to its spec. The second return
// value is false for unknown mnemonics.
func Lookup(mnemonic string) (Spec, bool) {
	s, ok := byMnemonic[mnemonic]
	return s, ok
}

// LookupOp returns the spec for an opcode
func LookupOp(op Opcode) Spec {
	if int(op) < len(specs) {
		return specs[op]
	}
	return specs[NOOP]
}
