package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code []byte
		text string
	}){
		{[]byte{byte(OP_HLT)}, "HLT"},
		{[]byte{byte(OP_SET), 3, 0x01, 0xf4}, "SET $3 0x01f4"},
		{[]byte{byte(OP_ADD), 0, 1, 2}, "ADD $0 $1 $2"},
		{[]byte{byte(OP_SHL), 2, 31}, "SHL $2 31"},
		{[]byte{byte(OP_MOVF), 31, 0}, "MOVF $31 $0"},
		{[]byte{byte(OP_JEQ), 4}, "JEQ $4"},
	}

	for _, entry := range table {
		dec, err := Decode(entry.code, 0)
		if !assert.NoError(err, entry.text) {
			continue
		}
		assert.Equal(entry.text, dec.String())
		assert.Equal(len(entry.code), dec.Size())
		assert.Equal(entry.code, dec.Bytes())
	}
}

func TestDecodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode([]byte{0xff}, 0)
	assert.ErrorIs(err, ErrUnknownOpcode(0xff))

	_, err = Decode([]byte{byte(OP_ADD), 0, 1}, 0)
	assert.ErrorIs(err, ErrProgramBounds)

	_, err = Decode([]byte{byte(OP_HLT)}, 1)
	assert.ErrorIs(err, ErrProgramBounds)

	assert.Equal("???", Decoded{}.String())
	assert.Nil(Decoded{}.Bytes())
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	var pcs []int
	var code []byte
	for dec, err := range Disassemble(fibonacci) {
		if !assert.NoError(err) {
			return
		}
		pcs = append(pcs, dec.Pc)
		code = append(code, dec.Bytes()...)
	}

	assert.Equal([]int{0, 4, 6, 7, 11, 15, 19, 23, 27, 31, 34, 36, 38, 42, 45, 48}, pcs)
	assert.Equal(fibonacci, code)

	// Decoding stops at the first error.
	count := 0
	var last error
	for _, err := range Disassemble([]byte{byte(OP_HLT), 0xee, byte(OP_HLT)}) {
		count++
		last = err
	}
	assert.Equal(2, count)
	assert.ErrorIs(last, ErrUnknownOpcode(0xee))
}
