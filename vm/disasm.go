package vm

import (
	"fmt"
	"iter"
	"strings"
)

// Decoded is a single instruction decoded from a program.
type Decoded struct {
	Pc          int
	Instruction *Instruction
	Operands    Operands
}

// Encode returns the bytecode of the instruction with the given operands.
func (inst *Instruction) Encode(ops Operands) (code []byte) {
	code = make([]byte, 0, inst.Size())
	code = append(code, byte(inst.Opcode))
	for n, kind := range inst.Operands {
		if kind == OPERAND_IMM16 {
			code = append(code, byte(ops[n]>>8), byte(ops[n]))
		} else {
			code = append(code, byte(ops[n]))
		}
	}
	return
}

// Decode decodes the instruction at pc without executing it.
func Decode(program []byte, pc int) (dec Decoded, err error) {
	m := &Machine{Program: program, Pc: pc}

	code, err := m.ReadU8()
	if err != nil {
		return
	}

	inst, ok := Lookup(code)
	if !ok {
		err = ErrUnknownOpcode(code)
		return
	}

	ops, err := m.fetchOperands(inst)
	if err != nil {
		return
	}

	dec = Decoded{Pc: pc, Instruction: inst, Operands: ops}
	return
}

// Disassemble decodes program from the start, stopping after the first error.
func Disassemble(program []byte) iter.Seq2[Decoded, error] {
	return func(yield func(dec Decoded, err error) bool) {
		for pc := 0; pc < len(program); {
			dec, err := Decode(program, pc)
			if !yield(dec, err) || err != nil {
				return
			}
			pc += dec.Size()
		}
	}
}

// Size returns the encoded length of the instruction.
func (dec Decoded) Size() int {
	if dec.Instruction == nil {
		return 0
	}
	return dec.Instruction.Size()
}

// Bytes re-encodes the decoded instruction.
func (dec Decoded) Bytes() []byte {
	if dec.Instruction == nil {
		return nil
	}
	return dec.Instruction.Encode(dec.Operands)
}

// String returns the assembly language representation of the instruction.
func (dec Decoded) String() string {
	if dec.Instruction == nil {
		return "???"
	}

	words := []string{dec.Instruction.Mnemonic}
	for n, kind := range dec.Instruction.Operands {
		switch kind {
		case OPERAND_REG, OPERAND_FREG:
			words = append(words, fmt.Sprintf("$%d", dec.Operands[n]))
		case OPERAND_IMM8:
			words = append(words, fmt.Sprintf("%d", dec.Operands[n]))
		case OPERAND_IMM16:
			words = append(words, fmt.Sprintf("0x%04x", dec.Operands[n]))
		}
	}

	return strings.Join(words, " ")
}
