package fingerprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint/classifier"
)

// Algorithm selects one of the trained parameter sets. The value is the id
// stored in compressed fingerprints.
type Algorithm int

const (
	FP1 Algorithm = iota
	FP2
	FP3
	FP4

	DefaultAlgorithm = FP2
)

func (a Algorithm) String() string {
	if a < FP1 || a > FP4 {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return "fp" + strconv.Itoa(int(a)+1)
}

// ParseAlgorithm accepts preset names ("fp2", "FP2") and numeric ids ("1").
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultAlgorithm, nil
	}

	if rest, ok := strings.CutPrefix(s, "fp"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= 4 {
			return Algorithm(n - 1), nil
		}
	} else if n, err := strconv.Atoi(s); err == nil && n >= int(FP1) && n <= int(FP4) {
		return Algorithm(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Preset bundles the trained data used by one algorithm.
type Preset struct {
	Algorithm          Algorithm
	Classifiers        []classifier.Classifier
	FilterCoefficients []float64
	Interpolate        bool
	RemoveSilence      bool
	SilenceThreshold   int
}

var chromaFilterCoefficients = []float64{0.25, 0.75, 1.0, 0.75, 0.25}

// classifierRow is one trained classifier: filter geometry then thresholds.
type classifierRow struct {
	kind, y, height, width int
	t0, t1, t2             float64
}

// Trained on random data.
var classifiers1 = []classifierRow{
	{0, 0, 3, 15, 2.10543, 2.45354, 2.69414},
	{1, 0, 4, 14, -0.345922, 0.0463746, 0.446251},
	{1, 4, 4, 11, -0.392132, 0.0291077, 0.443391},
	{3, 0, 4, 14, -0.192851, 0.00583535, 0.204053},
	{2, 8, 2, 4, -0.0771619, -0.00991999, 0.0575406},
	{5, 6, 2, 15, -0.710437, -0.518954, -0.330402},
	{1, 9, 2, 16, -0.353724, -0.0189719, 0.289768},
	{3, 4, 2, 10, -0.128418, -0.0285697, 0.0591791},
	{3, 9, 2, 16, -0.139052, -0.0228468, 0.0879723},
	{2, 1, 3, 6, -0.133562, 0.00669205, 0.155012},
	{3, 3, 6, 2, -0.0267, 0.00804829, 0.0459773},
	{2, 8, 1, 10, -0.0972417, 0.0152227, 0.129003},
	{3, 4, 4, 14, -0.141434, 0.00374515, 0.149935},
	{5, 4, 2, 15, -0.64035, -0.466999, -0.285493},
	{5, 9, 2, 3, -0.322792, -0.254258, -0.174278},
	{2, 1, 8, 4, -0.0741375, -0.00590933, 0.0600357},
}

// Trained on eMusic samples.
var classifiers2 = []classifierRow{
	{0, 4, 3, 15, 1.98215, 2.35817, 2.63523},
	{4, 4, 6, 15, -1.03809, -0.651211, -0.282167},
	{1, 0, 4, 16, -0.298702, 0.119262, 0.558497},
	{3, 8, 2, 12, -0.105439, 0.0153946, 0.135898},
	{3, 4, 4, 8, -0.142891, 0.0258736, 0.200632},
	{4, 0, 3, 5, -0.826319, -0.590612, -0.368214},
	{1, 2, 2, 9, -0.557409, -0.233035, 0.0534525},
	{2, 7, 3, 4, -0.0646826, 0.00620476, 0.0784847},
	{2, 6, 2, 16, -0.192387, -0.029699, 0.215855},
	{2, 1, 3, 2, -0.0397818, -0.00568076, 0.0292026},
	{5, 10, 1, 15, -0.53823, -0.369934, -0.190235},
	{3, 6, 2, 10, -0.124877, 0.0296483, 0.139239},
	{2, 1, 1, 14, -0.101475, 0.0225617, 0.231971},
	{3, 5, 6, 4, -0.0799915, -0.00729616, 0.063262},
	{1, 9, 2, 12, -0.272556, 0.019424, 0.302559},
	{3, 4, 2, 14, -0.164292, -0.0321188, 0.0846339},
}

func buildClassifiers(rows []classifierRow) ([]classifier.Classifier, error) {
	out := make([]classifier.Classifier, len(rows))
	for i, r := range rows {
		f, err := classifier.NewFilter(classifier.FilterKind(r.kind), r.y, r.height, r.width, classifier.LogRatio)
		if err != nil {
			return nil, fmt.Errorf("classifier %d: %w", i, err)
		}
		q, err := classifier.NewQuantizer(r.t0, r.t1, r.t2)
		if err != nil {
			return nil, fmt.Errorf("classifier %d: %w", i, err)
		}
		out[i] = classifier.New(f, q)
	}
	return out, nil
}

// PresetFor returns a fresh copy of the parameters for algorithm.
func PresetFor(algorithm Algorithm) (Preset, error) {
	preset := Preset{
		Algorithm:          algorithm,
		FilterCoefficients: append([]float64(nil), chromaFilterCoefficients...),
	}

	rows := classifiers2
	switch algorithm {
	case FP1:
		rows = classifiers1
	case FP2:
	case FP3:
		preset.Interpolate = true
	case FP4:
		preset.RemoveSilence = true
		preset.SilenceThreshold = 50
	default:
		return Preset{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algorithm))
	}

	classifiers, err := buildClassifiers(rows)
	if err != nil {
		return Preset{}, err
	}
	preset.Classifiers = classifiers
	return preset, nil
}
