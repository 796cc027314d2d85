// Package classifier evaluates trained rectangular filters over an integral
// image and quantizes their responses into 2-bit codes.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/chromaprint/pkg/audio/image"
)

var (
	ErrNonFiniteLogRatio = errors.New("classifier: log ratio is not finite")
	ErrInvalidFilter     = errors.New("classifier: invalid filter")
)

// FilterKind selects how the filter rectangle is split into the two
// compared regions.
type FilterKind int

const (
	// Whole rectangle against nothing.
	FilterWhole FilterKind = iota
	// Upper band half against lower band half.
	FilterBandHalves
	// Later time half against earlier time half.
	FilterTimeHalves
	// Anti-diagonal quadrants against diagonal quadrants.
	FilterQuadrants
	// Middle band third against outer band thirds.
	FilterBandThirds
	// Middle time third against outer time thirds.
	FilterTimeThirds
)

var filterKindNames = [...]string{"whole", "band-halves", "time-halves", "quadrants", "band-thirds", "time-thirds"}

func (k FilterKind) String() string {
	if k < 0 || int(k) >= len(filterKindNames) {
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
	return filterKindNames[k]
}

// Comparison turns the two region sums into one response.
type Comparison int

const (
	Subtract Comparison = iota
	LogRatio
)

func (c Comparison) String() string {
	switch c {
	case Subtract:
		return "subtract"
	case LogRatio:
		return "log-ratio"
	default:
		return fmt.Sprintf("Comparison(%d)", int(c))
	}
}

// Filter is a rectangle of height bands starting at band y, width rows
// long, evaluated at a caller-supplied row offset.
type Filter struct {
	kind   FilterKind
	cmp    Comparison
	y      int
	height int
	width  int
}

func NewFilter(kind FilterKind, y, height, width int, cmp Comparison) (Filter, error) {
	if kind < FilterWhole || kind > FilterTimeThirds {
		return Filter{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidFilter, int(kind))
	}
	if cmp != Subtract && cmp != LogRatio {
		return Filter{}, fmt.Errorf("%w: unknown comparison %d", ErrInvalidFilter, int(cmp))
	}
	if y < 0 || height <= 0 || width <= 0 {
		return Filter{}, fmt.Errorf("%w: y=%d height=%d width=%d", ErrInvalidFilter, y, height, width)
	}
	return Filter{kind: kind, cmp: cmp, y: y, height: height, width: width}, nil
}

func (f Filter) Kind() FilterKind       { return f.kind }
func (f Filter) Comparison() Comparison { return f.cmp }
func (f Filter) Y() int                 { return f.y }
func (f Filter) Height() int            { return f.height }
func (f Filter) Width() int             { return f.width }

// Apply returns the filter response with the rectangle starting at row x.
func (f Filter) Apply(ii *image.IntegralImage, x int) (float64, error) {
	a, b := f.regions(ii, x)
	return f.compare(a, b)
}

func (f Filter) regions(ii *image.IntegralImage, x int) (a, b float64) {
	y, w, h := f.y, f.width, f.height

	switch f.kind {
	case FilterWhole:
		a = ii.Area(x, y, x+w-1, y+h-1)
	case FilterBandHalves:
		h2 := h / 2
		a = ii.Area(x, y+h2, x+w-1, y+h-1)
		b = ii.Area(x, y, x+w-1, y+h2-1)
	case FilterTimeHalves:
		w2 := w / 2
		a = ii.Area(x+w2, y, x+w-1, y+h-1)
		b = ii.Area(x, y, x+w2-1, y+h-1)
	case FilterQuadrants:
		w2, h2 := w/2, h/2
		a = ii.Area(x, y+h2, x+w2-1, y+h-1) + ii.Area(x+w2, y, x+w-1, y+h2-1)
		b = ii.Area(x, y, x+w2-1, y+h2-1) + ii.Area(x+w2, y+h2, x+w-1, y+h-1)
	case FilterBandThirds:
		h3 := h / 3
		a = ii.Area(x, y+h3, x+w-1, y+2*h3-1)
		b = ii.Area(x, y, x+w-1, y+h3-1) + ii.Area(x, y+2*h3, x+w-1, y+h-1)
	case FilterTimeThirds:
		w3 := w / 3
		a = ii.Area(x+w3, y, x+2*w3-1, y+h-1)
		b = ii.Area(x, y, x+w3-1, y+h-1) + ii.Area(x+2*w3, y, x+w-1, y+h-1)
	}
	return a, b
}

func (f Filter) compare(a, b float64) (float64, error) {
	if f.cmp == Subtract {
		return a - b, nil
	}
	r := math.Log((1 + a) / (1 + b))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: a=%g b=%g", ErrNonFiniteLogRatio, a, b)
	}
	return r, nil
}
