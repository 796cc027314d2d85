package chroma

import "fmt"

// MaxFilterLength is the capacity of the filter's history ring.
const MaxFilterLength = 8

// Filter convolves each band with trained coefficients across the last
// len(coefficients) vectors.
type Filter struct {
	coefficients []float64
	buffer       [MaxFilterLength][]float64
	result       []float64
	offset       int
	size         int
	consumer     FeatureConsumer
}

func NewFilter(coefficients []float64, consumer FeatureConsumer) (*Filter, error) {
	if len(coefficients) == 0 || len(coefficients) > MaxFilterLength {
		return nil, fmt.Errorf("chroma: filter needs 1..%d coefficients, got %d", MaxFilterLength, len(coefficients))
	}
	return &Filter{
		coefficients: coefficients,
		result:       make([]float64, NumBands),
		size:         1,
		consumer:     consumer,
	}, nil
}

// Reset restarts the warm-up; stale vectors are overwritten before use.
func (f *Filter) Reset() {
	f.offset = 0
	f.size = 1
}

// Consume keeps a reference to features; callers hand over ownership.
func (f *Filter) Consume(features []float64) {
	f.buffer[f.offset] = features
	f.offset = (f.offset + 1) % MaxFilterLength

	n := len(f.coefficients)
	if f.size < n {
		f.size++
		return
	}

	start := (f.offset + MaxFilterLength - n) % MaxFilterLength
	for i := range f.result {
		f.result[i] = 0
		for j := 0; j < n; j++ {
			f.result[i] += f.buffer[(start+j)%MaxFilterLength][i] * f.coefficients[j]
		}
	}

	f.consumer.Consume(f.result)
}
