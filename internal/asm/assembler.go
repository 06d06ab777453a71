package asm

// assembler.go drives the two-pass assembly: pass one tokenizes every line and records label
// addresses; pass two resolves symbols and generates code. Grounded in the teacher's
// internal/asm/assembler.go two-pass structure.

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/oswald-vm/oswald/internal/vm"
)

// ErrAssemble is the sentinel wrapped by every error this package returns.
var ErrAssemble = errors.New("assemble error")

// defaultOrigin matches spec.md section 6's sample program base.
const defaultOrigin = 300

// Assemble compiles source into a vm.Program. Limit is left at 100 words, matching the sample
// program's region length; callers needing a different region size may overwrite p.Limit.
func Assemble(source string) (vm.Program, error) {
	var (
		lines  []line
		labels = map[string]int{}
		pc     = defaultOrigin
	)

	scanner := bufio.NewScanner(strings.NewReader(source))

	no := 0
	for scanner.Scan() {
		no++

		l, err := parseLine(no, scanner.Text())
		if err != nil {
			return vm.Program{}, err
		}

		if l.mnemonic == "" && l.directive == "" && l.label == "" {
			continue
		}

		if l.directive == ".ORG" {
			pc = l.raw
			lines = append(lines, l)

			continue
		}

		if l.label != "" {
			if _, exists := labels[l.label]; exists {
				return vm.Program{}, fmt.Errorf("%w: line %d: duplicate label %q", ErrAssemble, no, l.label)
			}

			labels[l.label] = pc
		}

		if l.mnemonic != "" || l.directive == ".WORD" {
			lines = append(lines, l)
			pc++
		}
	}

	if err := scanner.Err(); err != nil {
		return vm.Program{}, fmt.Errorf("%w: %w", ErrAssemble, err)
	}

	base := defaultOrigin
	baseSet := false
	words := make([]vm.Word, 0, len(lines))
	pc = defaultOrigin

	for _, l := range lines {
		if l.directive == ".ORG" {
			if baseSet && l.raw < pc {
				return vm.Program{}, fmt.Errorf("%w: line %d: .ORG %d is below the current address %d", ErrAssemble, l.no, l.raw, pc)
			}

			// Fill the gap with zero words so the words that follow land at the new origin.
			for baseSet && pc < l.raw {
				words = append(words, vm.ZeroWord)
				pc++
			}

			pc = l.raw

			if !baseSet {
				base = pc
				baseSet = true
			}

			continue
		}

		if !baseSet {
			base = pc
			baseSet = true
		}

		if l.directive == ".WORD" {
			words = append(words, vm.ToWord(l.raw, vm.NopLogger()))
			pc++

			continue
		}

		info, ok := instTable[l.mnemonic]
		if !ok {
			return vm.Program{}, fmt.Errorf("%w: line %d: unknown mnemonic %q", ErrAssemble, l.no, l.mnemonic)
		}

		mode, value := 0, 0

		switch info.Arity {
		case arityOne:
			if l.operand == nil {
				return vm.Program{}, fmt.Errorf("%w: line %d: %s requires an operand", ErrAssemble, l.no, l.mnemonic)
			}

			mode = l.operand.mode
			value = l.operand.value

			if l.operand.symbol != "" {
				addr, ok := labels[l.operand.symbol]
				if !ok {
					return vm.Program{}, fmt.Errorf("%w: line %d: undefined label %q", ErrAssemble, l.no, l.operand.symbol)
				}

				value = addr
			}
		case arityNone:
			if l.operand != nil {
				return vm.Program{}, fmt.Errorf("%w: line %d: %s takes no operand", ErrAssemble, l.no, l.mnemonic)
			}
		}

		if value < 0 || value > 99999 {
			return vm.Program{}, fmt.Errorf("%w: line %d: value %d out of range", ErrAssemble, l.no, value)
		}

		w, err := vm.WordFromDigits(fmt.Sprintf("%02d%01d%05d", info.Opcode, mode, value))
		if err != nil {
			return vm.Program{}, fmt.Errorf("%w: line %d: %w", ErrAssemble, l.no, err)
		}

		words = append(words, w)
		pc++
	}

	return vm.Program{Base: base, Limit: 100, Words: words}, nil
}
