package io

// GetVarSize returns the number of bytes the varint form of n takes.
func GetVarSize(n int) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case uint64(n) <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// GetVarBytesSize returns the size of a varint length-prefixed byte slice.
func GetVarBytesSize(b []byte) int {
	return GetVarSize(len(b)) + len(b)
}

// GetVarStringSize returns the size of a varint length-prefixed string.
func GetVarStringSize(s string) int {
	return GetVarSize(len(s)) + len(s)
}

type counter struct {
	n int
}

func (c *counter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}

// GetSize returns the encoded size of s without keeping the encoded data.
func GetSize(s encodable) int {
	c := new(counter)
	w := NewBinWriterFromIO(c)
	s.EncodeBinary(w)
	return c.n
}
