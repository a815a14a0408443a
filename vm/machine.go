package vm

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

const (
	REGISTERS       = 16 // Number of integer registers.
	FLOAT_REGISTERS = 32 // Number of float registers.
)

// Epsilon is the float64 machine epsilon, the tolerance of EQF and NEQF.
const Epsilon = 2.220446049250313e-16

var _vm_defines = map[string]string{
	"REGISTERS":       fmt.Sprintf("%v", REGISTERS),
	"FLOAT_REGISTERS": fmt.Sprintf("%v", FLOAT_REGISTERS),
}

// Machine is the execution state of a single virtual machine.
//
// A Machine is owned by one caller at a time; it holds no locks.
type Machine struct {
	Verbose bool // Set to enable instruction tracing.

	Pc int // Offset of the next byte to fetch from Program.
	Ic int // Count of executed instructions.

	Registers      [REGISTERS]int32         // Integer register bank.
	FloatRegisters [FLOAT_REGISTERS]float64 // Float register bank.
	Remainder      uint32                   // Remainder of the last DIV.
	EqualFlag      bool                     // Result of the last comparison.

	Heap    Heap   // Data memory, sized by the caller.
	Program []byte // Bytecode being executed.
}

// NewMachine creates a machine with a zeroed heap of heapSize bytes.
func NewMachine(heapSize int) (m *Machine) {
	m = &Machine{}
	m.Grow(heapSize)
	return
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_vm_defines)
}

// Reset the machine state.
// - Clears the registers, remainder, and flag.
// - Zeros the heap, keeping its size.
// - Zeros the counters and rewinds Pc.
// The program is kept.
func (m *Machine) Reset() {
	clear(m.Registers[:])
	clear(m.FloatRegisters[:])
	clear(m.Heap)
	m.Remainder = 0
	m.EqualFlag = false
	m.Pc = 0
	m.Ic = 0
}

// Grow extends the heap by n zero bytes.
func (m *Machine) Grow(n int) {
	if n <= 0 {
		return
	}
	m.Heap = append(m.Heap, make([]byte, n)...)
}

// Append adds bytecode to the end of the program.
func (m *Machine) Append(code ...byte) {
	m.Program = append(m.Program, code...)
}

// Exhausted returns true when Pc is at or beyond the end of the program.
// An executed HLT leaves Pc after the HLT, so it is not tracked here.
func (m *Machine) Exhausted() bool {
	return m.Pc >= len(m.Program)
}

func (m *Machine) reg(index uint16) (reg *int32, err error) {
	if int(index) >= len(m.Registers) {
		err = ErrRegisterBounds
		return
	}
	reg = &m.Registers[index]
	return
}

func (m *Machine) freg(index uint16) (reg *float64, err error) {
	if int(index) >= len(m.FloatRegisters) {
		err = ErrRegisterBounds
		return
	}
	reg = &m.FloatRegisters[index]
	return
}

// jumpTo moves Pc to target, which may be one past the final byte.
func (m *Machine) jumpTo(target int64) (err error) {
	if target < 0 || target > int64(len(m.Program)) {
		err = ErrJumpBounds
		return
	}
	m.Pc = int(target)
	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 5s: %04X\n", "pc", m.Pc)
	fmt.Fprintf(&sb, "% 5s: %v\n", "ic", m.Ic)
	fmt.Fprintf(&sb, "% 5s: %v\n", "eq", m.EqualFlag)
	fmt.Fprintf(&sb, "% 5s: %04X_%04X\n", "rem", m.Remainder>>16, m.Remainder&0xffff)
	for n, val := range m.Registers {
		uval := uint32(val)
		fmt.Fprintf(&sb, "% 5s: %04X_%04X (%d)\n", fmt.Sprintf("$%d", n), uval>>16, uval&0xffff, val)
	}
	for n, val := range m.FloatRegisters {
		if val == 0 {
			continue
		}
		fmt.Fprintf(&sb, "% 5s: %g\n", fmt.Sprintf("$f%d", n), val)
	}

	text = sb.String()
	return
}
