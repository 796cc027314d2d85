// Package compression implements the compact fingerprint wire format: a
// four byte header followed by two bit-packed streams of set-bit gaps.
package compression

import (
	"errors"
	"fmt"
)

const (
	HeaderSize = 4

	NormalBits    = 3
	ExceptionBits = 5
	// MaxNormalValue marks a gap completed from the exception stream.
	MaxNormalValue = 1<<NormalBits - 1

	MaxLength = 1<<24 - 1
)

var (
	ErrTooShort         = errors.New("compression: fingerprint too short")
	ErrTruncated        = errors.New("compression: fingerprint truncated")
	ErrInvalidBits      = errors.New("compression: bit position out of range")
	ErrTooLong          = errors.New("compression: too many subfingerprints")
	ErrInvalidAlgorithm = errors.New("compression: algorithm id out of range")
)

// Compress encodes subfingerprints for the given algorithm id.
func Compress(fingerprint []uint32, algorithm int) ([]byte, error) {
	if algorithm < 0 || algorithm > 255 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlgorithm, algorithm)
	}
	if len(fingerprint) > MaxLength {
		return nil, fmt.Errorf("%w: %d", ErrTooLong, len(fingerprint))
	}

	gaps := make([]byte, 0, len(fingerprint)*4)
	var prev uint32
	for _, sub := range fingerprint {
		gaps = appendGaps(gaps, sub^prev)
		prev = sub
	}

	n := len(fingerprint)
	out := make([]byte, HeaderSize, HeaderSize+(len(gaps)*NormalBits+7)/8)
	out[0] = byte(algorithm)
	out[1] = byte(n >> 16)
	out[2] = byte(n >> 8)
	out[3] = byte(n)

	normal := NewBitWriter(cap(out) - HeaderSize)
	exceptions := NewBitWriter(0)
	for _, gap := range gaps {
		normal.Write(uint32(min(gap, MaxNormalValue)), NormalBits)
		if gap >= MaxNormalValue {
			exceptions.Write(uint32(gap-MaxNormalValue), ExceptionBits)
		}
	}
	normal.Flush()
	exceptions.Flush()

	out = append(out, normal.Bytes()...)
	return append(out, exceptions.Bytes()...), nil
}

// appendGaps emits the distance between consecutive set bits of x, counting
// positions from 1, terminated by a zero.
func appendGaps(gaps []byte, x uint32) []byte {
	bit, last := 1, 0
	for x != 0 {
		if x&1 != 0 {
			gaps = append(gaps, byte(bit-last))
			last = bit
		}
		x >>= 1
		bit++
	}
	return append(gaps, 0)
}

// Decompress reverses Compress. The algorithm id is -1 when the header is
// missing and is reported even when the body cannot be decoded.
func Decompress(data []byte) ([]uint32, int, error) {
	if len(data) < HeaderSize {
		return nil, -1, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}

	algorithm := int(data[0])
	n := int(data[1])<<16 | int(data[2])<<8 | int(data[3])

	reader := NewBitReader(data[HeaderSize:])
	if reader.AvailableBits() < n*NormalBits {
		return nil, algorithm, fmt.Errorf("%w: %d subfingerprints need %d bits, have %d",
			ErrTooShort, n, n*NormalBits, reader.AvailableBits())
	}

	gaps := make([]int, 0, n*4)
	for i := 0; i < n; {
		gap := int(reader.Read(NormalBits))
		if reader.EOF() {
			return nil, algorithm, fmt.Errorf("%w: normal stream ended after %d of %d subfingerprints", ErrTruncated, i, n)
		}
		if gap == 0 {
			i++
		}
		gaps = append(gaps, gap)
	}

	reader.Reset()
	for i, gap := range gaps {
		if gap != MaxNormalValue {
			continue
		}
		extra := int(reader.Read(ExceptionBits))
		if reader.EOF() {
			return nil, algorithm, fmt.Errorf("%w: exception stream ended", ErrTruncated)
		}
		gaps[i] += extra
	}

	fingerprint, err := unpack(gaps, n)
	if err != nil {
		return nil, algorithm, err
	}
	return fingerprint, algorithm, nil
}

func unpack(gaps []int, n int) ([]uint32, error) {
	result := make([]uint32, 0, n)

	var value, prev uint32
	bit := 0
	for _, gap := range gaps {
		if gap == 0 {
			value ^= prev
			result = append(result, value)
			prev = value
			value = 0
			bit = 0
			continue
		}
		bit += gap
		if bit > 32 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidBits, bit)
		}
		value |= 1 << (bit - 1)
	}
	return result, nil
}
