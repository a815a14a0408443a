// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/rvm/binfile"
	"github.com/ezrec/rvm/internal"
	"github.com/ezrec/rvm/vm"
)

const (
	HEAP_SIZE = 4096 // Default heap size, in bytes.
)

var _emulator_defines = map[string]string{
	"HEAP_SIZE": fmt.Sprintf("%v", HEAP_SIZE),
}

// Emulator state. Machine + program listing + run policy.
type Emulator struct {
	Verbose     bool        // If set, enables verbose logging.
	*vm.Machine             // Reference to the machine.
	Program     *vm.Program // Listing of the loaded program, if assembled.

	Entry    int // Offset that Reset places in Pc.
	MaxSteps int // Steps allowed per Run; 0 for no limit.
}

// NewEmulator creates a new emulator with a heap of heapSize bytes.
func NewEmulator(heapSize int) (emu *Emulator) {
	emu = &Emulator{
		Machine: vm.NewMachine(heapSize),
		Program: &vm.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Assemble parses source with the emulator defines, and loads the result.
func (emu *Emulator) Assemble(input io.Reader) (asm *vm.Assembler, err error) {
	asm = &vm.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.LoadProgram(prog)
	return
}

// LoadProgram loads an assembled listing, with an entry point of 0.
func (emu *Emulator) LoadProgram(prog *vm.Program) {
	emu.Program = prog
	emu.Machine.Program = prog.Binary()
	emu.Entry = 0
	emu.Reset()
}

// LoadImage loads a program image. The image has no listing, so LineNo
// reports 0 while it runs.
func (emu *Emulator) LoadImage(img *binfile.Image) (err error) {
	err = img.Validate()
	if err != nil {
		return
	}

	emu.Program = &vm.Program{}
	emu.Machine.Program = img.Code
	emu.Entry = int(img.Header.EntryPoint)
	emu.Reset()

	return
}

// Image returns the loaded program as an image.
func (emu *Emulator) Image() *binfile.Image {
	return binfile.NewImage(emu.Machine.Program, uint32(emu.Entry))
}

// Reset the machine state, keeping the program, and set Pc to the entry.
func (emu *Emulator) Reset() {
	emu.Machine.Reset()
	emu.Machine.Pc = emu.Entry

	if emu.Verbose {
		log.Debugf("reset: entry 0x%04x, %v bytes", emu.Entry, len(emu.Machine.Program))
	}
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Machine.Ic
}

// Code returns the instruction at Pc.
func (emu *Emulator) Code() (dec vm.Decoded) {
	dec, _ = vm.Decode(emu.Machine.Program, emu.Machine.Pc)
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Machine.Pc)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Machine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Machine.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	running, err := emu.Machine.Step()
	if err != nil {
		return
	}

	done = !running
	return
}

// Run ticks the emulator until it is done, or MaxSteps is exceeded.
func (emu *Emulator) Run() (err error) {
	for steps := 0; emu.MaxSteps == 0 || steps < emu.MaxSteps; steps++ {
		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	if !emu.Machine.Exhausted() {
		err = &ErrRuntime{LineNo: emu.LineNo(), Pc: emu.Machine.Pc, Err: vm.ErrStepLimit}
	}

	return
}
