// Package snapshot saves and restores complete machine state as CBOR.
package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/rvm/translate"
	"github.com/ezrec/rvm/vm"
)

var f = translate.From

var (
	ErrSnapshotVersion = errors.New(f("snapshot version unsupported"))
	ErrSnapshotLayout  = errors.New(f("snapshot register bank size mismatch"))
)

// VERSION is the current snapshot layout.
const VERSION = 1

// state is the encoded form of a machine.
type state struct {
	Version        int       `cbor:"1,keyasint"`
	Pc             int       `cbor:"2,keyasint"`
	Ic             int       `cbor:"3,keyasint"`
	Registers      []int32   `cbor:"4,keyasint"`
	FloatRegisters []float64 `cbor:"5,keyasint"`
	Remainder      uint32    `cbor:"6,keyasint"`
	EqualFlag      bool      `cbor:"7,keyasint"`
	Heap           []byte    `cbor:"8,keyasint"`
	Program        []byte    `cbor:"9,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal encodes the machine state. Equal machines encode to equal bytes.
func Marshal(m *vm.Machine) (data []byte, err error) {
	st := state{
		Version:        VERSION,
		Pc:             m.Pc,
		Ic:             m.Ic,
		Registers:      m.Registers[:],
		FloatRegisters: m.FloatRegisters[:],
		Remainder:      m.Remainder,
		EqualFlag:      m.EqualFlag,
		Heap:           m.Heap,
		Program:        m.Program,
	}

	data, err = encMode.Marshal(&st)
	return
}

// Unmarshal decodes a machine state.
func Unmarshal(data []byte) (m *vm.Machine, err error) {
	var st state
	err = cbor.Unmarshal(data, &st)
	if err != nil {
		return
	}

	m, err = st.machine()
	return
}

func (st *state) machine() (m *vm.Machine, err error) {
	if st.Version != VERSION {
		err = ErrSnapshotVersion
		return
	}

	if len(st.Registers) != vm.REGISTERS || len(st.FloatRegisters) != vm.FLOAT_REGISTERS {
		err = ErrSnapshotLayout
		return
	}

	m = &vm.Machine{
		Pc:        st.Pc,
		Ic:        st.Ic,
		Remainder: st.Remainder,
		EqualFlag: st.EqualFlag,
		Heap:      vm.Heap(st.Heap),
		Program:   st.Program,
	}
	copy(m.Registers[:], st.Registers)
	copy(m.FloatRegisters[:], st.FloatRegisters)

	return
}

// Save writes the machine state to w.
func Save(w io.Writer, m *vm.Machine) (err error) {
	data, err := Marshal(m)
	if err != nil {
		return
	}

	_, err = w.Write(data)
	return
}

// Load reads a machine state from r.
func Load(r io.Reader) (m *vm.Machine, err error) {
	var st state
	err = cbor.NewDecoder(r).Decode(&st)
	if err != nil {
		return
	}

	m, err = st.machine()
	return
}
