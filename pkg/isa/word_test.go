package isa

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		target ISA
		in     Instruction
	}{
		{
			name:   "NOOP",
			target: V1,
			in:     Instruction{Op: NOOP},
		},
		{
			name:   "IMM",
			target: V1,
			in:     Instruction{Op: IMM, A: Register(3), B: Immediate(200)},
		},
		{
			name:   "prefixed ADD",
			target: V1,
			in:     Instruction{Op: ADD, Prefix: PrefixU, A: Register(2), B: Register(7)},
		},
		{
			name:   "compare-only SUB",
			target: V2,
			in:     Instruction{Op: SUB, Prefix: PrefixX, A: Register(1), B: Register(1)},
		},
		{
			name:   "OUT",
			target: V1,
			in:     Instruction{Op: OUT, A: Port(6), B: Register(4)},
		},
		{
			name:   "JMP",
			target: V1,
			in:     Instruction{Op: JMP, A: CodeAddr(31)},
		},
		{
			name:   "STORE",
			target: V2,
			in:     Instruction{Op: STORE, A: Address(15), B: Register(5)},
		},
		{
			name:   "CALL",
			target: V2,
			in:     Instruction{Op: CALL, A: CodeAddr(200)},
		},
		{
			name:   "RET",
			target: V2,
			in:     Instruction{Op: RET},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(Encode(tt.in), tt.target); got != tt.in {
				t.Errorf("Decode(Encode(%v)) = %v, want %v", tt.in, got, tt.in)
			}
		})
	}
}

func TestDecodeUnknownOpcodeIsNoop(t *testing.T) {
	for _, target := range []ISA{V1, V2} {
		w := Word{0xFF, 0xAA, 0x55}
		if got := Decode(w, target); got.Op != NOOP {
			t.Errorf("Decode(%v, %s).Op = %v, want NOOP", w, target, got.Op)
		}
	}
}

func TestDecodeV2OpcodeUnderV1IsNoop(t *testing.T) {
	w := Encode(Instruction{Op: CALL, A: CodeAddr(4)})

	if got := Decode(w, V1); got.Op != NOOP {
		t.Errorf("Decode(CALL, V1).Op = %v, want NOOP", got.Op)
	}
	if got := Decode(w, V2); got.Op != CALL {
		t.Errorf("Decode(CALL, V2).Op = %v, want CALL", got.Op)
	}
}

func TestDecodeIgnoresPrefixOnUnprefixableOps(t *testing.T) {
	w := Encode(Instruction{Op: OUT, A: Port(1), B: Register(2)})
	w[0] |= 0x3 << prefixBits

	if got := Decode(w, V1); got.Prefix != PrefixNone {
		t.Errorf("Decode forged a prefix %v on OUT", got.Prefix)
	}
}

func TestLookupAvailability(t *testing.T) {
	tests := []struct {
		mnemonic string
		target   ISA
		want     bool
	}{
		{mnemonic: "ADD", target: V1, want: true},
		{mnemonic: "JMP", target: V1, want: true},
		{mnemonic: "CALL", target: V1, want: false},
		{mnemonic: "CALL", target: V2, want: true},
		{mnemonic: "XOR", target: V1, want: false},
		{mnemonic: "XOR", target: V2, want: true},
		{mnemonic: "BOGUS", target: V2, want: false},
	}
	for _, tt := range tests {
		spec, ok := Lookup(tt.mnemonic)
		got := ok && spec.AvailableIn(tt.target)
		if got != tt.want {
			t.Errorf("%s available in %s = %v, want %v", tt.mnemonic, tt.target, got, tt.want)
		}
	}
}
