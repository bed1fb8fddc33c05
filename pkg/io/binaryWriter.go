package io

import (
	"encoding/binary"
	"io"
)

// BinWriter is a convenient wrapper around an io.Writer and err object.
// Used to simplify error handling when writing into an io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
	uv  [9]byte
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteU64LE writes a uint64 value in little-endian format.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteU32LE writes a uint32 value in little-endian format.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	binary.LittleEndian.PutUint32(w.uv[:4], u32)
	w.WriteBytes(w.uv[:4])
}

// WriteU16LE writes a uint16 value in little-endian format.
func (w *BinWriter) WriteU16LE(u16 uint16) {
	binary.LittleEndian.PutUint16(w.uv[:2], u16)
	w.WriteBytes(w.uv[:2])
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteBool writes a boolean value encoded as a byte with values of 0 or 1.
func (w *BinWriter) WriteBool(b bool) {
	var i byte
	if b {
		i = 1
	}
	w.WriteB(i)
}

// WriteArray writes a slice arr into w prefixed with its varint length. Nil
// and empty slices produce the same encoding. Elements may implement
// EncodeBinary with either value or pointer receiver.
func WriteArray[T any, PT interface {
	*T
	encodable
}](w *BinWriter, arr []T) {
	w.WriteVarUint(uint64(len(arr)))
	for i := range arr {
		PT(&arr[i]).EncodeBinary(w)
	}
}

// WriteVarUint writes a uint64 using variable-length encoding.
func (w *BinWriter) WriteVarUint(val uint64) {
	if w.Err != nil {
		return
	}
	n := PutVarUint(w.uv[:], val)
	w.WriteBytes(w.uv[:n])
}

// PutVarUint puts val in the varint form into the given buffer (which must
// be at least 9 bytes long) and returns the number of bytes used.
func PutVarUint(data []byte, val uint64) int {
	_ = data[8]
	switch {
	case val < 0xfd:
		data[0] = byte(val)
		return 1
	case val <= 0xffff:
		data[0] = 0xfd
		binary.LittleEndian.PutUint16(data[1:], uint16(val))
		return 3
	case val <= 0xffffffff:
		data[0] = 0xfe
		binary.LittleEndian.PutUint32(data[1:], uint32(val))
		return 5
	default:
		data[0] = 0xff
		binary.LittleEndian.PutUint64(data[1:], val)
		return 9
	}
}

// WriteBytes writes b as is, without any prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes a varint length-prefixed byte slice.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes a varint length-prefixed string.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}
