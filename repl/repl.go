// Package repl is an interactive session that executes one instruction
// per line against an emulator.
//
// An instruction line is a mnemonic (or long name) followed by exactly as
// many hex operand bytes as the instruction encodes:
//
//	rvm> set 00 01 f4
//	$0=0x01f4 $1=0x0000 ... rem=0x0000 eq=false
//
// Lines starting with '!' are session commands; see !help.
package repl

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/ezrec/rvm/emulator"
	"github.com/ezrec/rvm/snapshot"
	"github.com/ezrec/rvm/translate"
	"github.com/ezrec/rvm/vm"
)

var f = translate.From

var (
	ErrCommandUnknown = errors.New(f("unknown command"))
	ErrCommandArgs    = errors.New(f("wrong number of command arguments"))
	ErrOperandCount   = errors.New(f("operand byte count does not match the instruction"))
	ErrOperandByte    = errors.New(f("operand is not a hex byte"))
)

// ErrUsage reports the usage of a misused command.
type ErrUsage struct {
	Usage string
	Err   error
}

func (err *ErrUsage) Error() string {
	return f("%v (usage: %v)", err.Err, err.Usage)
}

func (err *ErrUsage) Unwrap() error {
	return err.Err
}

const DEFAULT_PROMPT = "rvm> "

// Repl is an interactive session.
type Repl struct {
	Verbose  bool               // If set, logs each executed line.
	Emulator *emulator.Emulator // Emulator that lines execute against.
	Prompt   string             // Prompt, when the input is a terminal.
	Banner   bool               // If set, greets a terminal on Start.

	// Interactive overrides terminal detection when non-nil.
	Interactive *bool

	out  io.Writer
	done bool
}

// New creates a session on emu.
func New(emu *emulator.Emulator) (rp *Repl) {
	rp = &Repl{
		Emulator: emu,
		Prompt:   DEFAULT_PROMPT,
		Banner:   true,
	}
	return
}

// isTerminal reports whether in is attached to a terminal.
func isTerminal(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Start reads lines from in until end of input or !quit. Line errors are
// reported to out and do not end the session.
func (rp *Repl) Start(in io.Reader, out io.Writer) (err error) {
	rp.out = out
	rp.done = false

	interactive := isTerminal(in)
	if rp.Interactive != nil {
		interactive = *rp.Interactive
	}

	if interactive && rp.Banner {
		fmt.Fprintln(out, f("rvm interactive session. Type !help for commands."))
	}

	scanner := bufio.NewScanner(in)
	for !rp.done {
		if interactive {
			fmt.Fprint(out, rp.Prompt)
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if rp.Verbose {
			log.Debugf("repl: %v", line)
		}

		lineErr := rp.Execute(line)
		if lineErr != nil {
			fmt.Fprintln(out, f("error: %v", lineErr))
		}
	}

	err = scanner.Err()
	return
}

// Execute runs a single line of input.
func (rp *Repl) Execute(line string) (err error) {
	if rp.out == nil {
		rp.out = io.Discard
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	if strings.HasPrefix(words[0], "!") {
		err = rp.command(words[0][1:], words[1:])
		return
	}

	err = rp.instruction(words)
	return
}

// instruction appends a single instruction to the program, and executes it.
func (rp *Repl) instruction(words []string) (err error) {
	inst, ok := vm.ParseOpcode(words[0])
	if !ok {
		err = vm.ErrInstructionInvalid
		return
	}

	operands := words[1:]
	if len(operands) != inst.Size()-1 {
		err = ErrOperandCount
		return
	}

	code := []byte{byte(inst.Opcode)}
	for _, word := range operands {
		var value uint64
		value, err = strconv.ParseUint(strings.TrimPrefix(strings.ToLower(word), "0x"), 16, 8)
		if err != nil {
			err = ErrOperandByte
			return
		}
		code = append(code, byte(value))
	}

	m := rp.Emulator.Machine
	end := len(m.Program)
	m.Pc = end
	m.Append(code...)

	_, err = rp.Emulator.Tick()
	if err != nil {
		// Only instructions that executed stay in the program.
		m.Program = m.Program[:end]
		m.Pc = end
	}
	rp.printState()
	return
}

func (rp *Repl) printState() {
	m := rp.Emulator.Machine

	words := make([]string, 0, len(m.Registers)+2)
	for n, value := range m.Registers {
		words = append(words, fmt.Sprintf("$%d=%#04x", n, uint32(value)))
	}
	words = append(words, fmt.Sprintf("rem=%#04x", m.Remainder))
	words = append(words, fmt.Sprintf("eq=%v", m.EqualFlag))

	fmt.Fprintln(rp.out, strings.Join(words, " "))
}

type command struct {
	args  []int // Allowed argument counts.
	usage string
	run   func(rp *Repl, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"quit":  {[]int{0}, "!quit", (*Repl).cmdQuit},
		"help":  {[]int{0}, "!help", (*Repl).cmdHelp},
		"regs":  {[]int{0}, "!regs", (*Repl).cmdRegs},
		"fregs": {[]int{0}, "!fregs", (*Repl).cmdFregs},
		"heap":  {[]int{1, 2}, "!heap OFFSET [COUNT]", (*Repl).cmdHeap},
		"grow":  {[]int{1}, "!grow BYTES", (*Repl).cmdGrow},
		"reset": {[]int{0}, "!reset", (*Repl).cmdReset},
		"dis":   {[]int{0}, "!dis", (*Repl).cmdDis},
		"run":   {[]int{0}, "!run", (*Repl).cmdRun},
		"save":  {[]int{1}, "!save FILE", (*Repl).cmdSave},
		"load":  {[]int{1}, "!load FILE", (*Repl).cmdLoad},
	}
}

func (rp *Repl) command(name string, args []string) (err error) {
	cmd, ok := commands[strings.ToLower(name)]
	if !ok {
		err = ErrCommandUnknown
		return
	}

	if !slices.Contains(cmd.args, len(args)) {
		err = &ErrUsage{Usage: cmd.usage, Err: ErrCommandArgs}
		return
	}

	err = cmd.run(rp, args)
	return
}

func (rp *Repl) cmdQuit(args []string) (err error) {
	rp.done = true
	return
}

func (rp *Repl) cmdHelp(args []string) (err error) {
	names := slices.Sorted(func(yield func(string) bool) {
		for name := range commands {
			if !yield(name) {
				return
			}
		}
	})

	fmt.Fprintln(rp.out, f("Commands:"))
	for _, name := range names {
		fmt.Fprintf(rp.out, "  %v\n", commands[name].usage)
	}

	fmt.Fprintln(rp.out, f("Instructions (operands are hex bytes):"))
	for inst := range vm.Catalog() {
		kinds := make([]string, 0, len(inst.Operands))
		for _, kind := range inst.Operands {
			kinds = append(kinds, kind.String())
		}
		fmt.Fprintf(rp.out, "  %-5s %-20s %v\n", inst.Mnemonic, strings.Join(kinds, " "), inst.Info)
	}
	return
}

func (rp *Repl) cmdRegs(args []string) (err error) {
	for n, value := range rp.Emulator.Registers {
		fmt.Fprintf(rp.out, "$%-2d 0x%08x %d\n", n, uint32(value), value)
	}
	fmt.Fprintf(rp.out, "rem 0x%08x\n", rp.Emulator.Remainder)
	fmt.Fprintf(rp.out, "eq  %v\n", rp.Emulator.EqualFlag)
	return
}

func (rp *Repl) cmdFregs(args []string) (err error) {
	for n, value := range rp.Emulator.FloatRegisters {
		fmt.Fprintf(rp.out, "$%-2d %g\n", n, value)
	}
	return
}

func parseCount(word string) (value int, err error) {
	n, err := strconv.ParseInt(word, 0, 64)
	if err != nil || n < 0 {
		err = vm.ErrParseNumber(word)
		return
	}
	value = int(n)
	return
}

func (rp *Repl) cmdHeap(args []string) (err error) {
	offset, err := parseCount(args[0])
	if err != nil {
		return
	}

	count := 16
	if len(args) > 1 {
		count, err = parseCount(args[1])
		if err != nil {
			return
		}
	}

	heap := rp.Emulator.Heap
	if offset > len(heap) || count > len(heap)-offset {
		err = vm.ErrHeapBounds
		return
	}

	fmt.Fprint(rp.out, hex.Dump(heap[offset:offset+count]))
	return
}

func (rp *Repl) cmdGrow(args []string) (err error) {
	count, err := parseCount(args[0])
	if err != nil {
		return
	}

	rp.Emulator.Grow(count)
	fmt.Fprintln(rp.out, f("heap is %v bytes", len(rp.Emulator.Heap)))
	return
}

func (rp *Repl) cmdReset(args []string) (err error) {
	rp.Emulator.Reset()
	rp.printState()
	return
}

func (rp *Repl) cmdDis(args []string) (err error) {
	for dec, derr := range vm.Disassemble(rp.Emulator.Machine.Program) {
		if derr != nil {
			err = derr
			return
		}
		fmt.Fprintf(rp.out, "%04x: %v\n", dec.Pc, dec)
	}
	return
}

func (rp *Repl) cmdRun(args []string) (err error) {
	rp.Emulator.Reset()
	err = rp.Emulator.Run()
	rp.printState()
	return
}

func (rp *Repl) cmdSave(args []string) (err error) {
	ouf, err := os.Create(args[0])
	if err != nil {
		return
	}

	err = snapshot.Save(ouf, rp.Emulator.Machine)
	err = errors.Join(err, ouf.Close())
	return
}

func (rp *Repl) cmdLoad(args []string) (err error) {
	inf, err := os.Open(args[0])
	if err != nil {
		return
	}
	defer inf.Close()

	m, err := snapshot.Load(inf)
	if err != nil {
		return
	}

	m.Verbose = rp.Emulator.Machine.Verbose
	rp.Emulator.Machine = m
	rp.Emulator.Program = &vm.Program{}
	rp.Emulator.Entry = 0
	rp.printState()
	return
}
