package snapshot

import (
	"bytes"
	"math"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvm/vm"
)

func sampleMachine() (m *vm.Machine) {
	m = vm.NewMachine(32)
	m.Program = []byte{byte(vm.OP_INC), 3, byte(vm.OP_HLT)}
	m.Pc = 2
	m.Ic = 1
	m.Registers[3] = -7
	m.Registers[15] = math.MaxInt32
	m.FloatRegisters[0] = 1.5
	m.FloatRegisters[31] = math.Inf(-1)
	m.Remainder = 0xdeadbeef
	m.EqualFlag = true
	_ = m.Heap.SetU32(4, 0x01020304)
	return
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	m := sampleMachine()

	var buf bytes.Buffer
	if !assert.NoError(Save(&buf, m)) {
		return
	}

	loaded, err := Load(&buf)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(m, loaded)

	// A restored machine resumes where it left off.
	running, err := loaded.Step()
	assert.NoError(err)
	assert.False(running)
	assert.Equal(2, loaded.Ic)
}

func TestCanonical(t *testing.T) {
	assert := assert.New(t)

	a, err := Marshal(sampleMachine())
	assert.NoError(err)
	b, err := Marshal(sampleMachine())
	assert.NoError(err)
	assert.Equal(a, b)

	m := sampleMachine()
	m.Registers[0] = 1
	c, err := Marshal(m)
	assert.NoError(err)
	assert.NotEqual(a, c)
}

func TestErrors(t *testing.T) {
	assert := assert.New(t)

	data, err := cbor.Marshal(&state{Version: VERSION + 1})
	assert.NoError(err)
	_, err = Unmarshal(data)
	assert.ErrorIs(err, ErrSnapshotVersion)

	data, err = cbor.Marshal(&state{Version: VERSION, Registers: make([]int32, 4)})
	assert.NoError(err)
	_, err = Unmarshal(data)
	assert.ErrorIs(err, ErrSnapshotLayout)

	_, err = Load(bytes.NewReader([]byte{0xff, 0x00}))
	assert.Error(err)

	_, err = Load(bytes.NewReader(nil))
	assert.Error(err)
}
