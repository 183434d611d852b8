package bitutil

import "errors"

// ErrShortRead is returned when more bits are requested than remain.
var ErrShortRead = errors.New("bitutil: not enough bits")

// BitSource reads big-endian bit fields from a byte slice.
type BitSource struct {
	data []byte
	pos  int // in bits
}

// NewBitSource reads from data, first byte first, most significant bit first.
func NewBitSource(data []byte) *BitSource {
	return &BitSource{data: data}
}

// Available returns the number of unread bits.
func (s *BitSource) Available() int {
	return 8*len(s.data) - s.pos
}

// ReadBits reads numBits (1 to 32) bits as an unsigned value.
func (s *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > 32 || numBits > s.Available() {
		return 0, ErrShortRead
	}
	result := 0
	for numBits > 0 {
		byteIdx := s.pos >> 3
		bitIdx := s.pos & 7
		take := 8 - bitIdx
		if take > numBits {
			take = numBits
		}
		shift := 8 - bitIdx - take
		chunk := (int(s.data[byteIdx]) >> uint(shift)) & (1<<uint(take) - 1)
		result = result<<uint(take) | chunk
		s.pos += take
		numBits -= take
	}
	return result, nil
}
