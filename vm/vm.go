package vm

import (
	log "github.com/sirupsen/logrus"
)

// Step executes a single instruction.
//
// Returns running == false, with no error, when the program is exhausted
// (Pc at or beyond the end of Program) or a HLT executed. Faults are
// returned as *ErrFault; the faulting instruction changes nothing except
// Ic, and Pc is left at its opcode.
func (m *Machine) Step() (running bool, err error) {
	if m.Pc >= len(m.Program) {
		return
	}

	pc := m.Pc
	m.Ic++

	var code uint8
	defer func() {
		if err != nil {
			m.Pc = pc
			running = false
			err = &ErrFault{Pc: pc, Opcode: Opcode(code), Err: err}
		}
	}()

	code, err = m.ReadU8()
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

	if m.Verbose {
		log.Debugf("%04x: %v", pc, Decoded{Pc: pc, Instruction: inst, Operands: ops})
	}

	return inst.handler(m, ops)
}

// RunOnce executes exactly one instruction, for stepped execution.
func (m *Machine) RunOnce() (running bool, err error) {
	return m.Step()
}

// Run executes until the machine halts or faults.
//
// There is no step limit; a program that loops forever never returns.
// See RunLimit.
func (m *Machine) Run() (err error) {
	for running := true; running; {
		running, err = m.Step()
		if err != nil {
			return
		}
	}

	return
}

// RunLimit executes at most limit instructions. When the machine is still
// running after limit steps, ErrStepLimit is returned.
func (m *Machine) RunLimit(limit int) (steps int, err error) {
	for steps < limit {
		ic := m.Ic
		var running bool
		running, err = m.Step()
		steps += m.Ic - ic
		if err != nil || !running {
			return
		}
	}

	if !m.Exhausted() {
		err = ErrStepLimit
	}

	return
}
