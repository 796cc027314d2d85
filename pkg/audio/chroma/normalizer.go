package chroma

import "math"

// NormalizeThreshold is the smallest norm scaled to unit length; weaker
// vectors are zeroed.
const NormalizeThreshold = 0.01

// Normalizer scales each vector in place to unit Euclidean norm.
type Normalizer struct {
	consumer FeatureConsumer
}

func NewNormalizer(consumer FeatureConsumer) *Normalizer {
	return &Normalizer{consumer: consumer}
}

func (n *Normalizer) Reset() {}

func (n *Normalizer) Consume(features []float64) {
	NormalizeVector(features, EuclideanNorm(features), NormalizeThreshold)
	n.consumer.Consume(features)
}

func EuclideanNorm(v []float64) float64 {
	squares := 0.0
	for _, x := range v {
		squares += x * x
	}
	if squares > 0 {
		return math.Sqrt(squares)
	}
	return 0
}

func NormalizeVector(v []float64, norm, threshold float64) {
	if norm < threshold {
		clear(v)
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
