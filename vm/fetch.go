package vm

// ReadU8 returns the program byte at Pc and advances Pc by one.
func (m *Machine) ReadU8() (value uint8, err error) {
	if m.Pc < 0 || m.Pc >= len(m.Program) {
		err = ErrProgramBounds
		return
	}

	value = m.Program[m.Pc]
	m.Pc++
	return
}

// ReadU16 returns the big-endian (high byte first) word at Pc and
// advances Pc by two.
func (m *Machine) ReadU16() (value uint16, err error) {
	if m.Pc < 0 || m.Pc+2 > len(m.Program) {
		err = ErrProgramBounds
		return
	}

	value = uint16(m.Program[m.Pc])<<8 | uint16(m.Program[m.Pc+1])
	m.Pc += 2
	return
}

// fetchOperands reads all operand fields of inst. Either the whole
// instruction fits in the program, or nothing is consumed.
func (m *Machine) fetchOperands(inst *Instruction) (ops Operands, err error) {
	if m.Pc+inst.Size()-1 > len(m.Program) {
		err = ErrProgramBounds
		return
	}

	for n, kind := range inst.Operands {
		switch kind {
		case OPERAND_IMM16:
			ops[n], err = m.ReadU16()
		default:
			var b uint8
			b, err = m.ReadU8()
			ops[n] = uint16(b)
		}
		if err != nil {
			return
		}
	}

	return
}
