// Package resampler implements a polyphase FIR sample-rate converter working
// on 16-bit PCM. The filter design and fixed-point arithmetic follow the
// libavcodec resampler so fingerprints match other Chromaprint ports.
package resampler

import (
	"errors"
	"fmt"
	"math"
)

const (
	filterShift = 15
	// Kaiser window beta
	windowType = 9
)

var ErrInvalidRate = errors.New("resampler: sample rates must be positive")

// Resampler holds the filter bank and the fractional read position carried
// between Resample calls.
type Resampler struct {
	filterBank   []int16
	filterLength int
	phaseShift   int
	phaseMask    int
	linear       bool

	idealDstIncr         int
	dstIncr              int
	srcIncr              int
	index                int
	frac                 int
	compensationDistance int
}

// New builds a resampler converting inRate to outRate. filterSize is the
// number of taps at unity factor, phaseShift the log2 of the phase count.
func New(outRate, inRate, filterSize, phaseShift int, linear bool, cutoff float64) (*Resampler, error) {
	if outRate <= 0 || inRate <= 0 {
		return nil, ErrInvalidRate
	}
	if filterSize <= 0 || phaseShift < 0 || phaseShift > 16 {
		return nil, fmt.Errorf("resampler: invalid filter geometry (taps=%d, phase bits=%d)", filterSize, phaseShift)
	}

	factor := math.Min(float64(outRate)*cutoff/float64(inRate), 1.0)
	phaseCount := 1 << phaseShift

	r := &Resampler{
		phaseShift: phaseShift,
		phaseMask:  phaseCount - 1,
		linear:     linear,
	}

	r.filterLength = max(int(math.Ceil(float64(filterSize)/factor)), 1)
	r.filterBank = make([]int16, r.filterLength*(phaseCount+1))

	buildFilter(r.filterBank, factor, r.filterLength, phaseCount, 1<<filterShift, windowType)

	// extra phase used by the linear interpolation path
	copy(r.filterBank[r.filterLength*phaseCount+1:], r.filterBank[:r.filterLength-1])
	r.filterBank[r.filterLength*phaseCount] = r.filterBank[r.filterLength-1]

	r.srcIncr = outRate
	r.idealDstIncr = inRate * phaseCount
	r.dstIncr = r.idealDstIncr
	r.index = -phaseCount * ((r.filterLength - 1) / 2)

	return r, nil
}

// FilterLength is the number of taps per phase after scaling by the cutoff.
func (r *Resampler) FilterLength() int {
	return r.filterLength
}

// Resample converts up to srcSize samples from src into at most dstSize
// samples in dst. It returns the number of samples written and the number of
// source samples fully consumed; the caller must keep src[consumed:srcSize]
// and prepend it to the next call. When commit is false the read position is
// left untouched so the call can be repeated.
func (r *Resampler) Resample(dst, src []int16, srcSize, dstSize int, commit bool) (written, consumed int) {
	index := r.index
	frac := r.frac
	dstIncrFrac := r.dstIncr % r.srcIncr
	dstIncr := r.dstIncr / r.srcIncr
	compensationDistance := r.compensationDistance

	dstSize = min(dstSize, len(dst))
	srcSize = min(srcSize, len(src))
	if srcSize <= 0 || dstSize <= 0 {
		return 0, 0
	}

	var dstIndex int
	if compensationDistance == 0 && r.filterLength == 1 && r.phaseShift == 0 {
		index2 := int64(index) << 32
		incr := (int64(1) << 32) * int64(r.dstIncr) / int64(r.srcIncr)
		dstSize = int(min(int64(dstSize), int64(srcSize-1-index)*int64(r.srcIncr)/int64(r.dstIncr)))

		for dstIndex = 0; dstIndex < dstSize; dstIndex++ {
			dst[dstIndex] = src[index2>>32]
			index2 += incr
		}

		frac += dstIndex * dstIncrFrac
		index += dstIndex * dstIncr
		index += frac / r.srcIncr
		frac %= r.srcIncr
	} else {
		for dstIndex = 0; dstIndex < dstSize; dstIndex++ {
			filter := r.filterBank[r.filterLength*(index&r.phaseMask):]
			sampleIndex := index >> r.phaseShift
			val := 0

			if sampleIndex < 0 {
				// before stream start: reflect around the first sample
				for i := 0; i < r.filterLength; i++ {
					val += int(src[abs(sampleIndex+i)%srcSize]) * int(filter[i])
				}
			} else if sampleIndex+r.filterLength > srcSize {
				break
			} else if r.linear {
				v2 := 0
				for i := 0; i < r.filterLength; i++ {
					val += int(src[sampleIndex+i]) * int(filter[i])
					v2 += int(src[sampleIndex+i]) * int(filter[i+r.filterLength])
				}
				val += int(int64(v2-val) * int64(frac) / int64(r.srcIncr))
			} else {
				for i := 0; i < r.filterLength; i++ {
					val += int(src[sampleIndex+i]) * int(filter[i])
				}
			}

			val = (val + (1 << (filterShift - 1))) >> filterShift
			dst[dstIndex] = clip16(val)

			frac += dstIncrFrac
			index += dstIncr
			if frac >= r.srcIncr {
				frac -= r.srcIncr
				index++
			}

			if dstIndex+1 == compensationDistance {
				compensationDistance = 0
				dstIncrFrac = r.idealDstIncr % r.srcIncr
				dstIncr = r.idealDstIncr / r.srcIncr
			}
		}
	}

	consumed = max(index, 0) >> r.phaseShift
	if index >= 0 {
		index &= r.phaseMask
	}

	if compensationDistance != 0 {
		compensationDistance -= dstIndex
	}
	if commit {
		r.frac = frac
		r.index = index
		r.dstIncr = dstIncrFrac + r.srcIncr*dstIncr
		r.compensationDistance = compensationDistance
	}

	return dstIndex, consumed
}

// Compensate stretches the next compensationDistance output samples so that
// sampleDelta extra (or fewer) input samples are consumed, correcting clock
// drift between producer and consumer.
func (r *Resampler) Compensate(sampleDelta, compensationDistance int) error {
	if compensationDistance <= 0 {
		return fmt.Errorf("resampler: compensation distance must be positive, got %d", compensationDistance)
	}
	r.compensationDistance = compensationDistance
	r.dstIncr = r.idealDstIncr - int(int64(r.idealDstIncr)*int64(sampleDelta)/int64(compensationDistance))
	return nil
}

func buildFilter(filter []int16, factor float64, tapCount, phaseCount, scale, kind int) {
	tab := make([]float64, tapCount)
	center := (tapCount - 1) / 2

	// upsampling only interpolates
	if factor > 1.0 {
		factor = 1.0
	}

	for ph := 0; ph < phaseCount; ph++ {
		norm := 0.0
		for i := 0; i < tapCount; i++ {
			x := math.Pi * (float64(i-center) - float64(ph)/float64(phaseCount)) * factor
			y := 1.0
			if x != 0 {
				y = math.Sin(x) / x
			}

			switch kind {
			case 0:
				const d = -0.5
				x = math.Abs((float64(i-center) - float64(ph)/float64(phaseCount)) * factor)
				if x < 1.0 {
					y = 1 - 3*x*x + 2*x*x*x + d*(-x*x+x*x*x)
				} else {
					y = d * (-4 + 8*x - 5*x*x + x*x*x)
				}
			case 1:
				w := 2.0*x/(factor*float64(tapCount)) + math.Pi
				y *= 0.3635819 - 0.4891775*math.Cos(w) + 0.1365995*math.Cos(2*w) - 0.0106411*math.Cos(3*w)
			default:
				w := 2.0 * x / (factor * float64(tapCount) * math.Pi)
				y *= bessel(float64(kind) * math.Sqrt(math.Max(1-w*w, 0)))
			}

			tab[i] = y
			norm += y
		}

		// normalize so a constant signal keeps its level
		for i := 0; i < tapCount; i++ {
			v := int(math.Floor(tab[i]*float64(scale)/norm + 0.5))
			filter[ph*tapCount+i] = clip16(v)
		}
	}
}

// bessel is the zeroth order modified Bessel function of the first kind.
func bessel(x float64) float64 {
	v := 1.0
	lastv := 0.0
	t := 1.0

	x = x * x / 4
	for i := 1; v != lastv; i++ {
		lastv = v
		t *= x / float64(i*i)
		v += t
	}
	return v
}

func clip16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
