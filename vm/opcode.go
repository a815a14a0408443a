package vm

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode is the one byte tag of an instruction.
type Opcode byte

// Integer register operations.
const (
	OP_HLT  = Opcode(0x00) // HLT
	OP_SET  = Opcode(0x01) // SET
	OP_LOAD = Opcode(0x02) // LOAD
	OP_STOR = Opcode(0x03) // STOR
	OP_MOV  = Opcode(0x04) // MOV
)

// Integer arithmetic and bitwise operations.
const (
	OP_ADD = Opcode(0x10) // ADD
	OP_SUB = Opcode(0x11) // SUB
	OP_MUL = Opcode(0x12) // MUL
	OP_DIV = Opcode(0x13) // DIV
	OP_AND = Opcode(0x14) // AND
	OP_OR  = Opcode(0x15) // OR
	OP_XOR = Opcode(0x16) // XOR
	OP_SHL = Opcode(0x17) // SHL
	OP_SHR = Opcode(0x18) // SHR
	OP_INC = Opcode(0x19) // INC
	OP_DEC = Opcode(0x1a) // DEC
)

// Integer comparisons.
const (
	OP_EQ  = Opcode(0x20) // EQ
	OP_NEQ = Opcode(0x21) // NEQ
	OP_GT  = Opcode(0x22) // GT
	OP_LT  = Opcode(0x23) // LT
	OP_GEQ = Opcode(0x24) // GEQ
	OP_LEQ = Opcode(0x25) // LEQ
)

// Floating point register operations.
const (
	OP_SETF  = Opcode(0x30) // SETF
	OP_LOADF = Opcode(0x31) // LOADF
	OP_STORF = Opcode(0x32) // STORF
	OP_MOVF  = Opcode(0x33) // MOVF
)

// Floating point arithmetic.
const (
	OP_ADDF = Opcode(0x41) // ADDF
	OP_SUBF = Opcode(0x42) // SUBF
	OP_MULF = Opcode(0x43) // MULF
	OP_DIVF = Opcode(0x44) // DIVF
)

// Floating point comparisons.
const (
	OP_EQF  = Opcode(0x51) // EQF
	OP_NEQF = Opcode(0x52) // NEQF
	OP_GTF  = Opcode(0x53) // GTF
	OP_LTF  = Opcode(0x54) // LTF
	OP_GEQF = Opcode(0x55) // GEQF
	OP_LEQF = Opcode(0x56) // LEQF
)

// Control flow.
const (
	OP_JMP  = Opcode(0x60) // JMP
	OP_JMPF = Opcode(0x61) // JMPF
	OP_JMPB = Opcode(0x62) // JMPB
	OP_JEQ  = Opcode(0x63) // JEQ
)

// OperandKind is the decode type of a single operand field.
type OperandKind int

const (
	OPERAND_REG   = OperandKind(0) // integer register index
	OPERAND_FREG  = OperandKind(1) // float register index
	OPERAND_IMM8  = OperandKind(2) // immediate byte
	OPERAND_IMM16 = OperandKind(3) // immediate big-endian word
)

// Size returns the number of program bytes the operand occupies.
func (kind OperandKind) Size() int {
	if kind == OPERAND_IMM16 {
		return 2
	}
	return 1
}

func (kind OperandKind) String() string {
	switch kind {
	case OPERAND_REG:
		return "$reg"
	case OPERAND_FREG:
		return "$freg"
	case OPERAND_IMM8:
		return "imm8"
	case OPERAND_IMM16:
		return "imm16"
	}
	return fmt.Sprintf("OperandKind(%d)", int(kind))
}

// Operands holds the decoded operand fields of one instruction, in encoding order.
type Operands [3]uint16

// Handler executes an instruction whose operands have already been fetched.
// It returns false to halt the machine.
type Handler func(m *Machine, ops Operands) (ok bool, err error)

// Instruction describes one entry of the instruction set.
type Instruction struct {
	Opcode   Opcode
	Mnemonic string        // Assembler keyword, ie "ADD".
	Name     string        // Long form name, ie "Add".
	Info     string        // One line description.
	Operands []OperandKind // Operand fields, in encoding order.

	handler Handler
}

// Size returns the encoded length of the instruction, including the opcode.
func (inst *Instruction) Size() (size int) {
	size = 1
	for _, kind := range inst.Operands {
		size += kind.Size()
	}
	return
}

const (
	rI = OPERAND_REG
	rF = OPERAND_FREG
)

// catalog is the declarative instruction set. Order is by opcode byte.
var catalog = []Instruction{
	{OP_HLT, "HLT", "Halt", "Stop execution immediately.", nil, doHalt},

	{OP_SET, "SET", "Set", "Set $target using constant bytes.", []OperandKind{rI, OPERAND_IMM16}, doSet},
	{OP_LOAD, "LOAD", "Load", "Set $target to the heap word at $address.", []OperandKind{rI, rI}, doLoad},
	{OP_STOR, "STOR", "Store", "Set the heap word at $address to $value.", []OperandKind{rI, rI}, doStore},
	{OP_MOV, "MOV", "Move", "Set $target to $value.", []OperandKind{rI, rI}, doMove},

	{OP_ADD, "ADD", "Add", "Set $target to $value1 + $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a + b })},
	{OP_SUB, "SUB", "Subtract", "Set $target to $value1 - $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a - b })},
	{OP_MUL, "MUL", "Multiply", "Set $target to $value1 * $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a * b })},
	{OP_DIV, "DIV", "Divide", "Set $target to $value1 / $value2. Remainder in a dedicated register.", []OperandKind{rI, rI, rI}, doDivide},
	{OP_AND, "AND", "And", "Set $target to $value1 & $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a & b })},
	{OP_OR, "OR", "Or", "Set $target to $value1 | $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a | b })},
	{OP_XOR, "XOR", "XOR", "Set $target to $value1 ^ $value2.", []OperandKind{rI, rI, rI}, aluOp(func(a, b int32) int32 { return a ^ b })},
	{OP_SHL, "SHL", "ShiftLeft", "Bit shift $target count left.", []OperandKind{rI, OPERAND_IMM8}, shiftOp(func(v, n uint32) uint32 { return v << n })},
	{OP_SHR, "SHR", "ShiftRight", "Bit shift $target count right.", []OperandKind{rI, OPERAND_IMM8}, shiftOp(func(v, n uint32) uint32 { return v >> n })},
	{OP_INC, "INC", "Increment", "Increment $target by 1.", []OperandKind{rI}, stepOp(1)},
	{OP_DEC, "DEC", "Decrement", "Decrement $target by 1.", []OperandKind{rI}, stepOp(-1)},

	{OP_EQ, "EQ", "Equal", "Sets the equal flag if $value1 == $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a == b })},
	{OP_NEQ, "NEQ", "NotEqual", "Sets the equal flag if $value1 != $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a != b })},
	{OP_GT, "GT", "GreaterThan", "Sets the equal flag if $value1 > $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a > b })},
	{OP_LT, "LT", "LessThan", "Sets the equal flag if $value1 < $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a < b })},
	{OP_GEQ, "GEQ", "GreaterThanOrEqual", "Sets the equal flag if $value1 >= $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a >= b })},
	{OP_LEQ, "LEQ", "LessThanOrEqual", "Sets the equal flag if $value1 <= $value2.", []OperandKind{rI, rI}, cmpOp(func(a, b int32) bool { return a <= b })},

	{OP_SETF, "SETF", "SetF64", "Set $target using constant bytes.", []OperandKind{rF, OPERAND_IMM16}, doSetF64},
	{OP_LOADF, "LOADF", "LoadF64", "Set $target to the heap double word at $address.", []OperandKind{rF, rI}, doLoadF64},
	{OP_STORF, "STORF", "StoreF64", "Set the heap double word at $address to $value.", []OperandKind{rI, rF}, doStoreF64},
	{OP_MOVF, "MOVF", "MoveF64", "Set $target to $value.", []OperandKind{rF, rF}, doMoveF64},

	{OP_ADDF, "ADDF", "AddF64", "Set $target to $value1 + $value2.", []OperandKind{rF, rF, rF}, floatOp(func(a, b float64) float64 { return a + b })},
	{OP_SUBF, "SUBF", "SubtractF64", "Set $target to $value1 - $value2.", []OperandKind{rF, rF, rF}, floatOp(func(a, b float64) float64 { return a - b })},
	{OP_MULF, "MULF", "MultiplyF64", "Set $target to $value1 * $value2.", []OperandKind{rF, rF, rF}, floatOp(func(a, b float64) float64 { return a * b })},
	{OP_DIVF, "DIVF", "DivideF64", "Set $target to $value1 / $value2.", []OperandKind{rF, rF, rF}, floatOp(func(a, b float64) float64 { return a / b })},

	{OP_EQF, "EQF", "EqualF64", "Sets the equal flag if $value1 == $value2.", []OperandKind{rF, rF}, floatCmpOp(floatEqual)},
	{OP_NEQF, "NEQF", "NotEqualF64", "Sets the equal flag if $value1 != $value2.", []OperandKind{rF, rF}, floatCmpOp(floatNotEqual)},
	{OP_GTF, "GTF", "GreaterThanF64", "Sets the equal flag if $value1 > $value2.", []OperandKind{rF, rF}, floatCmpOp(func(a, b float64) bool { return a > b })},
	{OP_LTF, "LTF", "LessThanF64", "Sets the equal flag if $value1 < $value2.", []OperandKind{rF, rF}, floatCmpOp(func(a, b float64) bool { return a < b })},
	{OP_GEQF, "GEQF", "GreaterThanOrEqualF64", "Sets the equal flag if $value1 >= $value2.", []OperandKind{rF, rF}, floatCmpOp(func(a, b float64) bool { return a >= b })},
	{OP_LEQF, "LEQF", "LessThanOrEqualF64", "Sets the equal flag if $value1 <= $value2.", []OperandKind{rF, rF}, floatCmpOp(func(a, b float64) bool { return a <= b })},

	{OP_JMP, "JMP", "Jump", "Jump to the offset in $target.", []OperandKind{rI}, doJump},
	{OP_JMPF, "JMPF", "JumpForward", "Jump forward $bytes.", []OperandKind{rI}, doJumpForward},
	{OP_JMPB, "JMPB", "JumpBackward", "Jump backward $bytes.", []OperandKind{rI}, doJumpBackward},
	{OP_JEQ, "JEQ", "JumpIfEqual", "If the equal flag is set, jump to the offset in $target.", []OperandKind{rI}, doJumpIfEqual},
}

// dispatch maps every opcode byte to its catalog entry, or nil.
var dispatch [256]*Instruction

// byKeyword maps upper case mnemonics and names to catalog entries.
var byKeyword = map[string]*Instruction{}

func init() {
	for n := range catalog {
		inst := &catalog[n]
		if dispatch[inst.Opcode] != nil {
			panic(fmt.Sprintf("opcode 0x%02x declared twice", byte(inst.Opcode)))
		}
		dispatch[inst.Opcode] = inst
		byKeyword[strings.ToUpper(inst.Mnemonic)] = inst
		byKeyword[strings.ToUpper(inst.Name)] = inst
	}
}

// Lookup returns the instruction with the exact opcode byte.
func Lookup(code byte) (inst *Instruction, ok bool) {
	inst = dispatch[code]
	ok = inst != nil
	return
}

// ParseOpcode finds an instruction by mnemonic ("ADD") or name ("Add"),
// ignoring case.
func ParseOpcode(word string) (inst *Instruction, ok bool) {
	inst, ok = byKeyword[strings.ToUpper(word)]
	return
}

// Catalog iterates over the instruction set in opcode order.
func Catalog() iter.Seq[*Instruction] {
	return func(yield func(inst *Instruction) bool) {
		for n := range catalog {
			if !yield(&catalog[n]) {
				return
			}
		}
	}
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	inst, ok := Lookup(byte(op))
	if !ok {
		return fmt.Sprintf("Opcode(0x%02x)", byte(op))
	}
	return inst.Mnemonic
}
