package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxArraySize is the maximum size of an array which can be decoded.
// It is taken from https://github.com/neo-project/neo/blob/master/neo/IO/Helper.cs#L130
const MaxArraySize = 0x1000000

// ErrTooBig is returned when a decoded length exceeds the given limit.
var ErrTooBig = errors.New("value is too big")

// BinReader is a convenient wrapper around an io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	uv  [8]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from a byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return NewBinReaderFromIO(bytes.NewReader(b))
}

// Len returns the number of unread bytes if the reader is backed by a
// buffer and -1 otherwise.
func (r *BinReader) Len() int {
	if br, ok := r.r.(*bytes.Reader); ok {
		return br.Len()
	}
	return -1
}

// ReadU64LE reads a little-endian encoded uint64 value.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU32LE reads a little-endian encoded uint32 value.
func (r *BinReader) ReadU32LE() uint32 {
	r.ReadBytes(r.uv[:4])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadU16LE reads a little-endian encoded uint16 value.
func (r *BinReader) ReadU16LE() uint16 {
	r.ReadBytes(r.uv[:2])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.uv[:2])
}

// ReadB reads a byte.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadBool reads a boolean value encoded in a zero/non-zero byte.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadArray reads an array into arr, which must be a pointer to a slice of
// decodable elements (or a slice of pointers to them).
func ReadArray[T any, PT interface {
	*T
	decodable
}](r *BinReader, arr *[]T, maxSize ...int) {
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	l := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if l > uint64(ms) {
		r.Err = fmt.Errorf("%w: array of %d elements, max %d", ErrTooBig, l, ms)
		return
	}
	res := make([]T, l)
	for i := range res {
		PT(&res[i]).DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	*arr = res
}

// ReadVarUint reads a variable-length-encoded integer.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	switch b := r.ReadB(); b {
	case 0xfd:
		return uint64(r.ReadU16LE())
	case 0xfe:
		return uint64(r.ReadU32LE())
	case 0xff:
		return r.ReadU64LE()
	default:
		return uint64(b)
	}
}

// ReadVarBytes reads a varint length-prefixed byte slice. The optional
// argument limits the length (MaxArraySize by default).
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("%w: byte slice of %d bytes, max %d", ErrTooBig, n, ms)
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadBytes fills buf with the next len(buf) bytes.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadString reads a varint length-prefixed string.
func (r *BinReader) ReadString(maxSize ...int) string {
	return string(r.ReadVarBytes(maxSize...))
}
