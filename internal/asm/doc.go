// Package asm implements a small mnemonic assembler for this machine's 46-opcode instruction set.
//
// It is a trimmed, domain-adapted descendant of the teacher's LC-3 assembler: the same two-pass
// shape (tokenize and collect labels, then resolve and generate code) survives, cut down from the
// LC-3's sixteen opcodes and multiple operand encodings to this machine's single uniform
// OOMVVVVV word format.
//
// Syntax, one instruction per line:
//
//	label:  MNEMONIC  operand   ; comment
//
// An operand may be:
//
//	#123       immediate
//	400        direct (a literal address)
//	loop       direct (a label)
//	400,X      indexed: effective address is AC + 400
//	loop,X     indexed: effective address is AC + the label's address
//
// Directives: ".ORG n" sets the origin for subsequent instructions (default 300); ".WORD n"
// emits a literal data word.
package asm
