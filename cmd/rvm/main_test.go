package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvm/binfile"
	"github.com/ezrec/rvm/snapshot"
	"github.com/ezrec/rvm/vm"
)

const sumSource = `
; sum of 1..10 in $1
        set $0 10
        set $2 loop
start:
loop:   add $1 $1 $0
        dec $0
        set $3 0
        neq $0 $3
        jeq $2
        hlt
`

func execute(t *testing.T, args ...string) (output string, err error) {
	root := newRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err = root.Execute()
	output = out.String()
	return
}

func writeFile(t *testing.T, name string, text string) (path string) {
	path = filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return
}

func TestRunSource(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "sum.s", sumSource)
	dump := filepath.Join(t.TempDir(), "sum.cbor")

	output, err := execute(t, "run", "--regs", "--dump", dump, source)
	assert.NoError(err)
	assert.Contains(output, "(55)")

	inf, err := os.Open(dump)
	if !assert.NoError(err) {
		return
	}
	defer inf.Close()

	m, err := snapshot.Load(inf)
	assert.NoError(err)
	assert.Equal(int32(55), m.Registers[1])
}

func TestRunMaxSteps(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "sum.s", sumSource)

	_, err := execute(t, "run", "--max-steps", "5", source)
	assert.ErrorIs(err, vm.ErrStepLimit)

	config := writeFile(t, "rvm.toml", "[machine]\nmax-steps = 5\n")
	_, err = execute(t, "run", "--config", config, source)
	assert.ErrorIs(err, vm.ErrStepLimit)

	// The flag overrides the configuration.
	_, err = execute(t, "run", "--config", config, "--max-steps", "0", source)
	assert.NoError(err)
}

func TestAsmAndRunImage(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "sum.s", sumSource)
	image := filepath.Join(t.TempDir(), "sum.rvm")

	_, err := execute(t, "asm", "--entry", "start", "-o", image, source)
	if !assert.NoError(err) {
		return
	}

	img, err := binfile.ReadFile(os.DirFS(filepath.Dir(image)), filepath.Base(image))
	if !assert.NoError(err) {
		return
	}
	assert.Equal(uint32(8), img.Header.EntryPoint)

	// Starting at the loop with $0 = 0 jumps back to the setup at 0.
	output, err := execute(t, "run", "--regs", "--max-steps", "100", image)
	assert.NoError(err)
	assert.Contains(output, "(55)")
	assert.Contains(output, "ic: 58\n")

	output, err = execute(t, "disasm", image)
	assert.NoError(err)
	assert.Contains(output, " 0000: SET $0 0x000a\n")
	assert.Contains(output, ">0008: ADD $1 $1 $0\n")

	_, err = execute(t, "asm", "--entry", "nowhere", "-o", image, source)
	assert.ErrorIs(err, ErrEntryLabel("nowhere"))
}

func TestAsmDefaultOutput(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "prog.s", "hlt\n")

	_, err := execute(t, "asm", source)
	assert.NoError(err)

	data, err := os.ReadFile(strings.TrimSuffix(source, ".s") + ".rvm")
	assert.NoError(err)
	assert.True(binfile.IsImage(data))
	assert.Len(data, binfile.HEADER_LENGTH+1)
}

func TestSourceErrors(t *testing.T) {
	assert := assert.New(t)

	source := writeFile(t, "bad.s", "hlt\nbogus $1\n")

	_, err := execute(t, "run", source)
	assert.ErrorIs(err, vm.ErrInstructionInvalid)

	var ferr *ErrFile
	assert.ErrorAs(err, &ferr)

	_, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.s"))
	assert.ErrorIs(err, os.ErrNotExist)

	_, err = execute(t, "run")
	assert.Error(err)
}

func TestCalc(t *testing.T) {
	assert := assert.New(t)

	output, err := execute(t, "calc", "2", "3", "*", "4", "+")
	assert.NoError(err)
	assert.Equal("10\n", output)

	_, err = execute(t, "calc", "1 0 /")
	assert.Error(err)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	output, err := execute(t, "defines")
	assert.NoError(err)
	assert.Contains(output, ".equ HEAP_SIZE 4096\n")
	assert.Contains(output, ".equ REGISTERS 16\n")
}

func TestRepl(t *testing.T) {
	assert := assert.New(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader("set 01 00 07\n!quit\n"))
	root.SetArgs([]string{"repl"})

	assert.NoError(root.Execute())
	assert.True(strings.HasPrefix(out.String(), "$0=0x0000 $1=0x0007 "))
}

func TestBadConfig(t *testing.T) {
	assert := assert.New(t)

	config := writeFile(t, "rvm.toml", "[machine]\nheap = -5\n")
	_, err := execute(t, "defines", "--config", config)
	assert.Error(err)
}
