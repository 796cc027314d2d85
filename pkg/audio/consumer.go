package audio

import (
	"errors"
	"fmt"
)

// ErrNegativeLength is returned by consumers handed a negative sample count.
var ErrNegativeLength = errors.New("audio: negative sample count")

// Consumer is implemented by every stage that accepts 16-bit PCM. Only the
// first length samples of input are valid.
type Consumer interface {
	Consume(input []int16, length int) error
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc func(input []int16, length int) error

func (f ConsumerFunc) Consume(input []int16, length int) error {
	return f(input, length)
}

// CheckLength validates a Consume call's sample count against its buffer.
func CheckLength(input []int16, length int) error {
	if length < 0 {
		return ErrNegativeLength
	}
	if length > len(input) {
		return fmt.Errorf("audio: sample count %d exceeds buffer of %d", length, len(input))
	}
	return nil
}
