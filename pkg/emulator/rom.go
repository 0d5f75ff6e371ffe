package emulator

import (
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"

	"github.com/eliperez-dev/electron/pkg/isa"
)

// rom holds the fixed-size instruction store. Slots a program does not
// fill are NOOP, so the program counter can wrap freely.
type rom struct {
	words []isa.Word
}

func newROM(target isa.ISA) *rom {
	r := &rom{words: make([]isa.Word, target.ROMSize())}
	r.clear()
	return r
}

func (r *rom) clear() {
	for i := range r.words {
		r.words[i] = isa.NoopWord()
	}
}

// Load places an encoded program at the start of ROM and pads the rest
// with NOOP
func (r *rom) Load(words []isa.Word) error {
	if len(words) > len(r.words) {
		return errors.Errorf("program of %d instructions does not fit the %d-slot ROM", len(words), len(r.words))
	}

	r.clear()
	copy(r.words, words)

	log.Infof("loaded %d instructions into a %d-slot ROM", len(words), len(r.words))
	return nil
}

func (r *rom) At(address uint8) isa.Word {
	return r.words[int(address)%len(r.words)]
}
