package classifier

import (
	"errors"
	"fmt"
)

var ErrThresholdOrder = errors.New("classifier: quantizer thresholds must be strictly ascending")

// Quantizer maps a filter response onto 0..3 using three thresholds.
type Quantizer struct {
	t0, t1, t2 float64
}

func NewQuantizer(t0, t1, t2 float64) (Quantizer, error) {
	if !(t0 < t1 && t1 < t2) {
		return Quantizer{}, fmt.Errorf("%w: %g, %g, %g", ErrThresholdOrder, t0, t1, t2)
	}
	return Quantizer{t0: t0, t1: t1, t2: t2}, nil
}

func (q Quantizer) Thresholds() (t0, t1, t2 float64) {
	return q.t0, q.t1, q.t2
}

func (q Quantizer) Quantize(value float64) int {
	if value < q.t1 {
		if value < q.t0 {
			return 0
		}
		return 1
	}
	if value < q.t2 {
		return 2
	}
	return 3
}
