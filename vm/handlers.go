package vm

import (
	"math"
)

// Every handler fetches and validates all of its registers before it
// writes any state, so a faulting instruction has no side effects.

func doHalt(m *Machine, ops Operands) (ok bool, err error) {
	return false, nil
}

func doSet(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.reg(ops[0])
	if err != nil {
		return
	}
	*dst = int32(ops[1])
	return true, nil
}

func doLoad(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.reg(ops[0])
	if err != nil {
		return
	}
	addr, err := m.reg(ops[1])
	if err != nil {
		return
	}
	value, err := m.Heap.U32(int(uint32(*addr)))
	if err != nil {
		return
	}
	*dst = int32(value)
	return true, nil
}

func doStore(m *Machine, ops Operands) (ok bool, err error) {
	addr, err := m.reg(ops[0])
	if err != nil {
		return
	}
	src, err := m.reg(ops[1])
	if err != nil {
		return
	}
	err = m.Heap.SetU32(int(uint32(*addr)), uint32(*src))
	if err != nil {
		return
	}
	return true, nil
}

func doMove(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.reg(ops[0])
	if err != nil {
		return
	}
	src, err := m.reg(ops[1])
	if err != nil {
		return
	}
	*dst = *src
	return true, nil
}

// reg3 fetches the destination and both source registers.
func (m *Machine) reg3(ops Operands) (dst, a, b *int32, err error) {
	if dst, err = m.reg(ops[0]); err != nil {
		return
	}
	if a, err = m.reg(ops[1]); err != nil {
		return
	}
	b, err = m.reg(ops[2])
	return
}

// aluOp builds a handler for a wrapping binary integer operation.
func aluOp(op func(a, b int32) int32) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		dst, a, b, err := m.reg3(ops)
		if err != nil {
			return
		}
		*dst = op(*a, *b)
		return true, nil
	}
}

// doDivide truncates toward zero and keeps the remainder.
func doDivide(m *Machine, ops Operands) (ok bool, err error) {
	dst, a, b, err := m.reg3(ops)
	if err != nil {
		return
	}
	if *b == 0 {
		err = ErrDivideByZero
		return
	}
	quo, rem := *a / *b, *a % *b
	*dst = quo
	m.Remainder = uint32(rem)
	return true, nil
}

// shiftOp builds a logical shift handler. The count wraps modulo 32.
func shiftOp(op func(value, count uint32) uint32) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		dst, err := m.reg(ops[0])
		if err != nil {
			return
		}
		*dst = int32(op(uint32(*dst), uint32(ops[1])&0x1f))
		return true, nil
	}
}

func stepOp(delta int32) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		dst, err := m.reg(ops[0])
		if err != nil {
			return
		}
		*dst += delta
		return true, nil
	}
}

func cmpOp(op func(a, b int32) bool) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		a, err := m.reg(ops[0])
		if err != nil {
			return
		}
		b, err := m.reg(ops[1])
		if err != nil {
			return
		}
		m.EqualFlag = op(*a, *b)
		return true, nil
	}
}

func doSetF64(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.freg(ops[0])
	if err != nil {
		return
	}
	*dst = float64(ops[1])
	return true, nil
}

// doLoadF64 converts the unsigned heap value numerically, it does not
// reinterpret the bits.
func doLoadF64(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.freg(ops[0])
	if err != nil {
		return
	}
	addr, err := m.reg(ops[1])
	if err != nil {
		return
	}
	value, err := m.Heap.U64(int(uint32(*addr)))
	if err != nil {
		return
	}
	*dst = float64(value)
	return true, nil
}

func doStoreF64(m *Machine, ops Operands) (ok bool, err error) {
	addr, err := m.reg(ops[0])
	if err != nil {
		return
	}
	src, err := m.freg(ops[1])
	if err != nil {
		return
	}
	err = m.Heap.SetU64(int(uint32(*addr)), saturateU64(*src))
	if err != nil {
		return
	}
	return true, nil
}

// saturateU64 converts to uint64, clamping out of range values and
// mapping NaN to zero.
func saturateU64(value float64) uint64 {
	switch {
	case math.IsNaN(value), value <= 0:
		return 0
	case value >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(value)
}

func doMoveF64(m *Machine, ops Operands) (ok bool, err error) {
	dst, err := m.freg(ops[0])
	if err != nil {
		return
	}
	src, err := m.freg(ops[1])
	if err != nil {
		return
	}
	*dst = *src
	return true, nil
}

func floatOp(op func(a, b float64) float64) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		dst, err := m.freg(ops[0])
		if err != nil {
			return
		}
		a, err := m.freg(ops[1])
		if err != nil {
			return
		}
		b, err := m.freg(ops[2])
		if err != nil {
			return
		}
		*dst = op(*a, *b)
		return true, nil
	}
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func floatNotEqual(a, b float64) bool {
	return math.Abs(a-b) > Epsilon
}

func floatCmpOp(op func(a, b float64) bool) Handler {
	return func(m *Machine, ops Operands) (ok bool, err error) {
		a, err := m.freg(ops[0])
		if err != nil {
			return
		}
		b, err := m.freg(ops[1])
		if err != nil {
			return
		}
		m.EqualFlag = op(*a, *b)
		return true, nil
	}
}

func doJump(m *Machine, ops Operands) (ok bool, err error) {
	target, err := m.reg(ops[0])
	if err != nil {
		return
	}
	if err = m.jumpTo(int64(*target)); err != nil {
		return
	}
	return true, nil
}

// Relative jumps are measured from the end of the jump instruction.

func doJumpForward(m *Machine, ops Operands) (ok bool, err error) {
	delta, err := m.reg(ops[0])
	if err != nil {
		return
	}
	if err = m.jumpTo(int64(m.Pc) + int64(*delta)); err != nil {
		return
	}
	return true, nil
}

func doJumpBackward(m *Machine, ops Operands) (ok bool, err error) {
	delta, err := m.reg(ops[0])
	if err != nil {
		return
	}
	if err = m.jumpTo(int64(m.Pc) - int64(*delta)); err != nil {
		return
	}
	return true, nil
}

// doJumpIfEqual always consumes its operand, jumping only when the flag is set.
func doJumpIfEqual(m *Machine, ops Operands) (ok bool, err error) {
	target, err := m.reg(ops[0])
	if err != nil {
		return
	}
	if m.EqualFlag {
		if err = m.jumpTo(int64(*target)); err != nil {
			return
		}
	}
	return true, nil
}
