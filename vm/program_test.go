package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(fibonacciSource))
	if !assert.NoError(err) {
		return
	}

	dbg := prog.Debug(6)
	if assert.NotNil(dbg.Line) {
		assert.Equal([]string{"hlt"}, dbg.Words)
		assert.Equal(0, dbg.Index)
	}

	dbg = prog.Debug(40)
	if assert.NotNil(dbg.Line) {
		assert.Equal(38, dbg.Pc)
		assert.Equal(2, dbg.Index)
		assert.Equal([]string{"add", "$5", "$3", "$4"}, dbg.Words)
	}

	dbg = prog.Debug(len(fibonacci))
	assert.Nil(dbg.Line)
}

func TestProgramInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(fibonacciSource))
	if !assert.NoError(err) {
		return
	}

	var text []string
	for pc, dec := range prog.Instructions() {
		assert.Equal(pc, dec.Pc)
		text = append(text, dec.String())
		if pc >= 11 {
			break
		}
	}

	assert.Equal([]string{
		"SET $0 0x0001",
		"JMPF $0",
		"HLT",
		"SET $0 0x0006",
		"SET $1 0x0000",
	}, text)

	empty := &Program{}
	assert.Equal(0, empty.Size())
	assert.Empty(empty.Binary())
}
