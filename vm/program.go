package vm

import (
	"iter"
)

// Line is a line of assembled source with the bytecode it generated.
type Line struct {
	LineNo     int
	Pc         int
	Words      []string
	Bytes      []byte
	LinkLabel  string // Label to patch into the immediate at LinkOffset.
	LinkOffset int    // Offset in Bytes of the 16-bit link immediate.
}

// Program is an assembled listing.
type Program struct {
	Lines []Line
}

type Debug struct {
	*Line
	Index int // Offset of the pc inside Line.Bytes.
}

// Debug finds the source line that generated the byte at pc.
func (prog *Program) Debug(pc int) (dbg Debug) {
	for n, line := range prog.Lines {
		if pc >= line.Pc && pc < line.Pc+len(line.Bytes) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: pc - line.Pc,
			}
			break
		}
	}

	return
}

// Size returns the length of the bytecode.
func (prog *Program) Size() (size int) {
	if len(prog.Lines) == 0 {
		return
	}
	last := prog.Lines[len(prog.Lines)-1]
	size = last.Pc + len(last.Bytes)
	return
}

// Binary returns the program bytecode.
func (prog *Program) Binary() (code []byte) {
	code = make([]byte, 0, prog.Size())
	for _, line := range prog.Lines {
		code = append(code, line.Bytes...)
	}

	return
}

// Instructions iterates over the instructions in the listing, by pc.
// Lines generated by .byte are decoded as if they were code.
func (prog *Program) Instructions() iter.Seq2[int, Decoded] {
	code := prog.Binary()
	return func(yield func(pc int, dec Decoded) bool) {
		for dec, err := range Disassemble(code) {
			if err != nil {
				return
			}
			if !yield(dec.Pc, dec) {
				return
			}
		}
	}
}
