// Package vm implements the rvm register machine and its assembler.
//
// The machine consists of a program counter (Pc) over a flat bytecode buffer,
// sixteen signed 32-bit integer registers ($0-$15), thirty-two float64
// registers, a remainder register written by integer division, a single
// equality flag written by comparisons, and a byte-addressable heap.
//
// Every instruction is a one byte opcode followed by a fixed number of
// operand bytes. Sixteen bit immediates are big-endian, heap words are
// little-endian. See Catalog() for the full instruction set.
//
// The assembler provides a line oriented assembly language for the
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package vm
