package emulator

import "testing"

func TestStackPushPop(t *testing.T) {
	m := newMemory()

	m.Push(11)
	m.Push(22)
	m.Push(33)

	if m.sp != 13 {
		t.Errorf("sp = %d after three pushes, want 13", m.sp)
	}

	for _, want := range []uint8{33, 22, 11} {
		if got := m.Pop(); got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}

	if m.sp != spEmpty {
		t.Errorf("sp = %d after balanced pops, want %d", m.sp, spEmpty)
	}
}

func TestStackSaturates(t *testing.T) {
	m := newMemory()

	// popping empty yields zero and leaves SP alone
	if got := m.Pop(); got != 0 {
		t.Errorf("Pop() on empty stack = %d, want 0", got)
	}
	if m.sp != spEmpty {
		t.Errorf("sp = %d after empty pop, want %d", m.sp, spEmpty)
	}

	for i := 0; i < ramBytes; i++ {
		m.Push(uint8(i + 1))
	}
	if m.sp != 0 {
		t.Fatalf("sp = %d after filling the stack, want 0", m.sp)
	}

	// pushing onto a full stack is dropped
	m.Push(99)
	if m.sp != 0 {
		t.Errorf("sp = %d after overflowing push, want 0", m.sp)
	}
	if m.data[0] != ramBytes {
		t.Errorf("top of stack = %d, want %d", m.data[0], ramBytes)
	}
}

func TestStackAliasesRAM(t *testing.T) {
	m := newMemory()

	m.Push(42)
	if got := m.Read(15); got != 42 {
		t.Errorf("RAM[15] = %d after push, want 42", got)
	}

	m.Write(15, 7)
	if got := m.Pop(); got != 7 {
		t.Errorf("Pop() = %d after aliased write, want 7", got)
	}
}

func TestRegisterZeroIsHardwired(t *testing.T) {
	r := newRegisterFile()

	r.Write(0, 123)
	if got := r.Read(0); got != 0 {
		t.Errorf("R0 = %d after write, want 0", got)
	}

	r.Write(3, 99)
	if got := r.Read(3); got != 99 {
		t.Errorf("R3 = %d, want 99", got)
	}
}
