package asm

// inst.go is the mnemonic table: one entry per opcode, grounded in spec.md section 4.7's
// opcode -> semantics table and in the teacher's table-driven instruction-info style
// (internal/asm/inst.go's per-mnemonic metadata).

// operandArity is whether a mnemonic takes an addressing-mode operand.
type operandArity int

const (
	arityNone operandArity = iota
	arityOne
)

type instInfo struct {
	Opcode int
	Arity  operandArity
}

// instTable maps mnemonics to their opcode and operand arity.
var instTable = map[string]instInfo{
	"SUM":  {0, arityOne},
	"RES":  {1, arityOne},
	"MULT": {2, arityOne},
	"DIVI": {3, arityOne},
	"LOAD": {4, arityOne},
	"STR":  {5, arityOne},
	"CMP":  {6, arityOne},
	"TST":  {7, arityOne},
	"MOV":  {8, arityOne},
	"JEQ":  {9, arityOne},
	"JGT":  {10, arityOne},
	"JLT":  {11, arityOne},
	"JOV":  {12, arityOne},
	"SVC":  {13, arityNone},
	"CALL": {14, arityOne},
	"RET":  {15, arityNone},
	"LDR":  {16, arityNone},
	"STRR": {17, arityNone},
	"LDRL": {18, arityNone},
	"STRL": {19, arityNone},
	"PUSH": {25, arityNone},
	"POP":  {26, arityNone},
	"JMP":  {27, arityOne},
	"DMAR": {28, arityOne},
	"DMAW": {29, arityOne},

	"DMAWAIT": {30, arityNone},
	"DMAS":    {31, arityNone},
	"DMAC":    {32, arityOne},
	"DMAZ":    {33, arityOne},

	"IN":   {34, arityNone},
	"OUT":  {35, arityNone},
	"IOST": {36, arityNone},

	"HALT":   {40, arityNone},
	"NOP":    {41, arityNone},
	"EI":     {42, arityNone},
	"DI":     {43, arityNone},
	"SWUSER": {44, arityNone},
	"SWKERN": {45, arityNone},
}
