package fingerprint

import (
	"fmt"

	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint/classifier"
	"github.com/RyanBlaney/chromaprint/pkg/audio/image"
)

// MaxClassifiers is the number of 2-bit codes that fit a subfingerprint.
const MaxClassifiers = 16

var grayCode = [4]uint32{0, 1, 3, 2}

// Calculator slides a classifier bank along the time axis of an image.
type Calculator struct {
	classifiers    []classifier.Classifier
	maxFilterWidth int
}

func NewCalculator(classifiers []classifier.Classifier) (*Calculator, error) {
	if len(classifiers) > MaxClassifiers {
		return nil, fmt.Errorf("%w: got %d", ErrClassifierCount, len(classifiers))
	}

	maxWidth := 0
	for _, c := range classifiers {
		maxWidth = max(maxWidth, c.Filter().Width())
	}
	if maxWidth <= 0 || maxWidth >= 256 {
		return nil, fmt.Errorf("%w: got %d", ErrFilterWidth, maxWidth)
	}

	return &Calculator{
		classifiers:    classifiers,
		maxFilterWidth: maxWidth,
	}, nil
}

// MaxFilterWidth is the number of image rows one subfingerprint spans.
func (c *Calculator) MaxFilterWidth() int {
	return c.maxFilterWidth
}

// Length returns how many subfingerprints an image with rows rows yields.
func (c *Calculator) Length(rows int) int {
	return max(0, rows-c.maxFilterWidth+1)
}

// Calculate returns one subfingerprint per row offset at which every filter
// fits. The image is left untouched.
func (c *Calculator) Calculate(img *image.Image) ([]uint32, error) {
	length := c.Length(img.Rows())
	if length == 0 {
		return []uint32{}, nil
	}

	ii := image.NewIntegralImage(img, true)
	fingerprint := make([]uint32, length)
	for offset := range fingerprint {
		bits, err := c.subfingerprint(ii, offset)
		if err != nil {
			return nil, fmt.Errorf("subfingerprint %d: %w", offset, err)
		}
		fingerprint[offset] = bits
	}
	return fingerprint, nil
}

func (c *Calculator) subfingerprint(ii *image.IntegralImage, offset int) (uint32, error) {
	var bits uint32
	for _, cl := range c.classifiers {
		code, err := cl.Classify(ii, offset)
		if err != nil {
			return 0, err
		}
		bits = bits<<2 | grayCode[code]
	}
	return bits, nil
}
