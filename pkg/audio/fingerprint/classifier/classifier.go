package classifier

import "github.com/RyanBlaney/chromaprint/pkg/audio/image"

type Classifier struct {
	filter    Filter
	quantizer Quantizer
}

func New(filter Filter, quantizer Quantizer) Classifier {
	return Classifier{filter: filter, quantizer: quantizer}
}

func (c Classifier) Filter() Filter       { return c.filter }
func (c Classifier) Quantizer() Quantizer { return c.quantizer }

// Classify returns the 2-bit code for the filter evaluated at row offset.
func (c Classifier) Classify(ii *image.IntegralImage, offset int) (int, error) {
	value, err := c.filter.Apply(ii, offset)
	if err != nil {
		return 0, err
	}
	return c.quantizer.Quantize(value), nil
}
