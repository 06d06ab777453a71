// Package image implements this machine's program object format: a minimal text encoding of a
// vm.Program, one 8-character word per line with optional origin directives.
//
// It plays the same role the teacher's internal/encoding package plays for the LC-3 -- a
// MarshalText/UnmarshalText pair between an in-memory program and a file -- adapted from Intel Hex's
// binary records to plain ASCII decimal, since a Word is already text and needs no further encoding.
package image

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oswald-vm/oswald/internal/vm"
)

// Grammar documents the format, the way the teacher documents Intel Hex's grammar in a package
// comment.
const Grammar = `
file    = { line } ;
line    = origin | word | comment ;
origin  = '@' digit digit digit digit ;
word    = 8*digit ;
comment = '#' { any } ;
digit   = '0'..'9' ;
`

// ErrImage is the sentinel wrapped by every error this package returns.
var ErrImage = errors.New("image error")

// Marshal renders p as the text object format: an "@NNNN" origin line followed by one word per line.
func Marshal(p vm.Program) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "@%04d\n", p.Base)

	for _, w := range p.Words {
		fmt.Fprintln(&buf, w.String())
	}

	return buf.Bytes(), nil
}

// Unmarshal parses the text object format into a vm.Program. The base defaults to 0 when there is
// no "@NNNN" directive, and the limit is always vm.MemorySize -- callers that need a specific region
// length should set p.Limit themselves after Unmarshal returns.
func Unmarshal(data []byte) (vm.Program, error) {
	p := vm.Program{Base: 0, Limit: vm.MemorySize}

	scanner := bufio.NewScanner(bytes.NewReader(data))

	baseSet := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "@") {
			n, err := strconv.Atoi(line[1:])
			if err != nil {
				return p, fmt.Errorf("%w: line %d: invalid origin %q: %w", ErrImage, lineNo, line, err)
			}

			if baseSet {
				return p, fmt.Errorf("%w: line %d: duplicate origin directive", ErrImage, lineNo)
			}

			p.Base = n
			baseSet = true

			continue
		}

		if len(line) != vm.WordLen {
			return p, fmt.Errorf("%w: line %d: word %q is not %d characters", ErrImage, lineNo, line, vm.WordLen)
		}

		var w vm.Word
		copy(w[:], line)
		p.Words = append(p.Words, w)
	}

	if err := scanner.Err(); err != nil {
		return p, fmt.Errorf("%w: %w", ErrImage, err)
	}

	if len(p.Words) == 0 {
		return p, fmt.Errorf("%w: no words decoded", ErrImage)
	}

	return p, nil
}
