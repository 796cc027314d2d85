package audio

import (
	"context"
	"fmt"
)

// DefaultBufferSize is the number of frames pushed per Consume call by Feed.
const DefaultBufferSize = 4096

// Feed pushes interleaved PCM into consumer in chunks of bufferSize frames
// until the input is exhausted. The context is checked between chunks so a
// long decode can be abandoned.
func Feed(ctx context.Context, pcm []int16, channels, bufferSize int, consumer Consumer) error {
	if channels <= 0 {
		return fmt.Errorf("audio: invalid channel count %d", channels)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	chunk := bufferSize * channels

	for offset := 0; offset < len(pcm); offset += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(offset+chunk, len(pcm))
		// trailing partial frame is dropped
		n := (end - offset) / channels * channels
		if n == 0 {
			break
		}

		if err := consumer.Consume(pcm[offset:end], n); err != nil {
			return fmt.Errorf("audio: consume at sample %d: %w", offset, err)
		}
	}

	return nil
}
