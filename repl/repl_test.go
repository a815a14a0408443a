package repl

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvm/emulator"
	"github.com/ezrec/rvm/vm"
)

func session(t *testing.T, input string) (rp *Repl, output []string) {
	emu := emulator.NewEmulator(32)
	rp = New(emu)

	var out bytes.Buffer
	err := rp.Start(strings.NewReader(input), &out)
	assert.NoError(t, err)

	text := strings.TrimRight(out.String(), "\n")
	if len(text) != 0 {
		output = strings.Split(text, "\n")
	}
	return
}

func TestSession(t *testing.T) {
	assert := assert.New(t)

	rp, output := session(t, strings.Join([]string{
		"set 00 01 f4",
		"SET 01 00 0x03",
		"div 02 00 01",
		"Equal 02 02",
	}, "\n"))

	if !assert.Len(output, 4) {
		return
	}

	assert.True(strings.HasPrefix(output[0], "$0=0x01f4 $1=0x0000 $2=0x0000 "))
	assert.True(strings.HasSuffix(output[0], "$15=0x0000 rem=0x0000 eq=false"))
	assert.True(strings.HasPrefix(output[1], "$0=0x01f4 $1=0x0003 "))
	assert.True(strings.HasPrefix(output[2], "$0=0x01f4 $1=0x0003 $2=0x00a6 "))
	assert.True(strings.HasSuffix(output[2], "rem=0x0002 eq=false"))
	assert.True(strings.HasSuffix(output[3], "rem=0x0002 eq=true"))

	m := rp.Emulator.Machine
	assert.Equal(int32(166), m.Registers[2])
	assert.Equal(4, m.Ic)
	assert.Equal(4+4+4+3, len(m.Program))
	assert.Equal(len(m.Program), m.Pc)
}

func TestSessionErrors(t *testing.T) {
	assert := assert.New(t)

	rp, output := session(t, strings.Join([]string{
		"bogus 00",
		"set 00 01",
		"set 00 01 zz",
		"inc 20",
		"!nothing",
		"!grow",
		"",
		"inc 01",
	}, "\n"))

	if !assert.Len(output, 8) {
		return
	}

	for _, n := range []int{0, 1, 2, 4, 5, 6} {
		assert.True(strings.HasPrefix(output[n], "error: "), output[n])
	}
	// The faulting INC still reports the machine state.
	assert.True(strings.HasPrefix(output[3], "$0=0x0000 $1=0x0000 "))
	assert.Contains(output[6], "!grow BYTES")
	assert.True(strings.HasPrefix(output[7], "$0=0x0000 $1=0x0001 "))

	// The faulting INC was dropped, only the final INC remains.
	m := rp.Emulator.Machine
	assert.Equal([]byte{byte(vm.OP_INC), 0x01}, m.Program)
	assert.Equal(int32(1), m.Registers[1])
}

func TestFaultNotReplayed(t *testing.T) {
	assert := assert.New(t)

	rp, output := session(t, strings.Join([]string{
		"div 02 00 01",
		"inc 00",
		"!run",
	}, "\n"))

	if !assert.Len(output, 4) {
		return
	}
	assert.True(strings.HasPrefix(output[1], "error: "))
	assert.True(strings.HasPrefix(output[3], "$0=0x0001 "), output[3])

	m := rp.Emulator.Machine
	assert.Equal([]byte{byte(vm.OP_INC), 0x00}, m.Program)
	assert.Equal(len(m.Program), m.Pc)
	assert.NoError(rp.Execute("!run"))
}

func TestLoadResetsEntry(t *testing.T) {
	assert := assert.New(t)

	name := filepath.Join(t.TempDir(), "state.cbor")

	rp := New(emulator.NewEmulator(16))
	assert.NoError(rp.Execute("inc 01"))
	assert.NoError(rp.Execute("!save " + name))

	rp.Emulator.Entry = 40
	assert.NoError(rp.Execute("!load " + name))
	assert.Equal(0, rp.Emulator.Entry)

	assert.NoError(rp.Execute("!run"))
	assert.Equal(int32(1), rp.Emulator.Registers[1])
	assert.Equal(1, rp.Emulator.Ic)
}

func TestExecuteErrors(t *testing.T) {
	assert := assert.New(t)

	rp := New(emulator.NewEmulator(16))

	assert.ErrorIs(rp.Execute("nope"), vm.ErrInstructionInvalid)
	assert.ErrorIs(rp.Execute("add 00 01"), ErrOperandCount)
	assert.ErrorIs(rp.Execute("inc 100"), ErrOperandByte)
	assert.ErrorIs(rp.Execute("inc 10"), vm.ErrRegisterBounds)
	assert.ErrorIs(rp.Execute("!bogus"), ErrCommandUnknown)
	assert.ErrorIs(rp.Execute("!heap"), ErrCommandArgs)
	assert.ErrorIs(rp.Execute("!heap 8 9"), vm.ErrHeapBounds)
	assert.ErrorIs(rp.Execute("!heap -1"), vm.ErrParseNumber("-1"))
	assert.NoError(rp.Execute("!heap 8 8"))
}

func TestCommands(t *testing.T) {
	assert := assert.New(t)

	rp, output := session(t, strings.Join([]string{
		"set 03 12 34",
		"!regs",
		"!grow 16",
		"!heap 0 4",
		"!dis",
		"!quit",
		"inc 00",
	}, "\n"))

	text := strings.Join(output, "\n")
	assert.Contains(text, "$3  0x00001234 4660")
	assert.Contains(text, "heap is 48 bytes")
	assert.Contains(text, "00000000  00 00 00 00")
	assert.Contains(text, "0000: SET $3 0x1234")

	// Nothing runs after !quit.
	assert.Equal(1, rp.Emulator.Ic)
}

func TestRunAndReset(t *testing.T) {
	assert := assert.New(t)

	rp, output := session(t, strings.Join([]string{
		"inc 00",
		"inc 00",
		"!reset",
		"!run",
	}, "\n"))

	if !assert.Len(output, 4) {
		return
	}
	assert.True(strings.HasPrefix(output[2], "$0=0x0000 "))
	assert.True(strings.HasPrefix(output[3], "$0=0x0002 "))
	assert.Equal(2, rp.Emulator.Ic)
}

func TestSaveLoad(t *testing.T) {
	assert := assert.New(t)

	name := filepath.Join(t.TempDir(), "state.cbor")

	rp, _ := session(t, strings.Join([]string{
		"set 05 00 2a",
		"!save " + name,
		"inc 05",
		"!load " + name,
	}, "\n"))

	m := rp.Emulator.Machine
	assert.Equal(int32(42), m.Registers[5])
	assert.Equal(1, m.Ic)
	assert.Equal([]byte{byte(vm.OP_SET), 5, 0x00, 0x2a}, m.Program)
}

func TestInteractive(t *testing.T) {
	assert := assert.New(t)

	rp := New(emulator.NewEmulator(16))
	rp.Prompt = "> "
	yes := true
	rp.Interactive = &yes

	var out bytes.Buffer
	assert.NoError(rp.Start(strings.NewReader("!quit\n"), &out))

	assert.True(strings.HasPrefix(out.String(), "rvm interactive session."))
	assert.True(strings.HasSuffix(out.String(), "> "))

	rp.Banner = false
	out.Reset()
	assert.NoError(rp.Start(strings.NewReader(""), &out))
	assert.Equal("> ", out.String())
}
