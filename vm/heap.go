package vm

import (
	"encoding/binary"
)

// Heap is the byte addressable data memory of the machine.
//
// Multi-byte values are little-endian with no alignment requirement.
// Accesses beyond the current length return ErrHeapBounds; the heap
// never grows implicitly.
type Heap []byte

// span returns the size bytes at offset, or ErrHeapBounds.
func (heap Heap) span(offset int, size int) (buf []byte, err error) {
	if offset < 0 || size > len(heap) || offset > len(heap)-size {
		err = ErrHeapBounds
		return
	}

	buf = heap[offset : offset+size]
	return
}

func (heap Heap) U8(offset int) (value uint8, err error) {
	buf, err := heap.span(offset, 1)
	if err != nil {
		return
	}
	value = buf[0]
	return
}

func (heap Heap) U16(offset int) (value uint16, err error) {
	buf, err := heap.span(offset, 2)
	if err != nil {
		return
	}
	value = binary.LittleEndian.Uint16(buf)
	return
}

func (heap Heap) U32(offset int) (value uint32, err error) {
	buf, err := heap.span(offset, 4)
	if err != nil {
		return
	}
	value = binary.LittleEndian.Uint32(buf)
	return
}

func (heap Heap) U64(offset int) (value uint64, err error) {
	buf, err := heap.span(offset, 8)
	if err != nil {
		return
	}
	value = binary.LittleEndian.Uint64(buf)
	return
}

func (heap Heap) SetU8(offset int, value uint8) (err error) {
	buf, err := heap.span(offset, 1)
	if err != nil {
		return
	}
	buf[0] = value
	return
}

func (heap Heap) SetU16(offset int, value uint16) (err error) {
	buf, err := heap.span(offset, 2)
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint16(buf, value)
	return
}

func (heap Heap) SetU32(offset int, value uint32) (err error) {
	buf, err := heap.span(offset, 4)
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint32(buf, value)
	return
}

func (heap Heap) SetU64(offset int, value uint64) (err error) {
	buf, err := heap.span(offset, 8)
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint64(buf, value)
	return
}
