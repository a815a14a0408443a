// Package binfile reads and writes rvm program images.
//
// An image is a fixed 64 byte header followed by the program bytecode.
// All header fields are little-endian:
//
//	offset  size  field
//	0       5     magic "lux\r\n"
//	5       2     version
//	7       4     entry point, as an offset into the bytecode
//	11      53    zero padding
package binfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"

	"github.com/ezrec/rvm/translate"
)

var f = translate.From

var (
	ErrHeaderShort   = errors.New(f("image header truncated"))
	ErrHeaderMagic   = errors.New(f("image magic number invalid"))
	ErrHeaderVersion = errors.New(f("image version unsupported"))
	ErrEntryPoint    = errors.New(f("image entry point beyond code"))
)

const (
	HEADER_LENGTH = 64 // Size of the encoded header.
	VERSION       = 0  // Current image layout version.
)

// ErrImageFile locates an image decoding error.
type ErrImageFile struct {
	Name string
	Err  error
}

func (err *ErrImageFile) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrImageFile) Unwrap() error {
	return err.Err
}

// MAGIC identifies an rvm image.
var MAGIC = [5]byte{0x6c, 0x75, 0x78, 0x0d, 0x0a}

// Header is the decoded form of an image header.
type Header struct {
	Version    uint16
	EntryPoint uint32
}

// Bytes encodes the header, padded to HEADER_LENGTH.
func (hdr Header) Bytes() (data []byte) {
	data = make([]byte, HEADER_LENGTH)
	copy(data, MAGIC[:])
	binary.LittleEndian.PutUint16(data[5:], hdr.Version)
	binary.LittleEndian.PutUint32(data[7:], hdr.EntryPoint)
	return
}

// DecodeHeader decodes the header at the start of data.
func DecodeHeader(data []byte) (hdr Header, err error) {
	if len(data) < HEADER_LENGTH {
		err = ErrHeaderShort
		return
	}

	if !bytes.Equal(data[:len(MAGIC)], MAGIC[:]) {
		err = ErrHeaderMagic
		return
	}

	hdr.Version = binary.LittleEndian.Uint16(data[5:])
	if hdr.Version != VERSION {
		err = ErrHeaderVersion
		return
	}

	hdr.EntryPoint = binary.LittleEndian.Uint32(data[7:])
	return
}

// IsImage checks whether data begins with the image magic number.
func IsImage(data []byte) bool {
	return len(data) >= len(MAGIC) && bytes.Equal(data[:len(MAGIC)], MAGIC[:])
}

// Image is a header plus the bytecode it describes.
type Image struct {
	Header Header
	Code   []byte
}

// NewImage creates an image of the current version.
func NewImage(code []byte, entry uint32) (img *Image) {
	img = &Image{
		Header: Header{Version: VERSION, EntryPoint: entry},
		Code:   code,
	}
	return
}

// Validate checks that the entry point lies inside the code. An entry point
// equal to the code length is valid, and runs nothing.
func (img *Image) Validate() (err error) {
	if int64(img.Header.EntryPoint) > int64(len(img.Code)) {
		err = ErrEntryPoint
		return
	}
	return
}

// Marshal encodes the image.
func (img *Image) Marshal() (data []byte, err error) {
	err = img.Validate()
	if err != nil {
		return
	}

	data = make([]byte, 0, HEADER_LENGTH+len(img.Code))
	data = append(data, img.Header.Bytes()...)
	data = append(data, img.Code...)
	return
}

// Unmarshal decodes an image, replacing the contents of img.
func (img *Image) Unmarshal(data []byte) (err error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return
	}

	decoded := Image{
		Header: hdr,
		Code:   bytes.Clone(data[HEADER_LENGTH:]),
	}
	err = decoded.Validate()
	if err != nil {
		return
	}

	*img = decoded
	return
}

// ReadFile loads an image from a file system.
func ReadFile(fsys fs.FS, name string) (img *Image, err error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	img = &Image{}
	err = img.Unmarshal(data)
	if err != nil {
		img = nil
		err = &ErrImageFile{Name: name, Err: err}
		return
	}

	return
}

// WriteFile stores an image to the named file.
func WriteFile(name string, img *Image) (err error) {
	data, err := img.Marshal()
	if err != nil {
		return
	}

	err = os.WriteFile(name, data, 0o644)
	return
}
