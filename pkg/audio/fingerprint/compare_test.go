package fingerprint

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFingerprint(rng *rand.Rand, n int) []uint32 {
	fp := make([]uint32, n)
	for i := range fp {
		fp[i] = rng.Uint32()
	}
	return fp
}

func TestBitErrorRate(t *testing.T) {
	ber, n := BitErrorRate([]uint32{1, 2, 3}, []uint32{1, 2, 3, 4})
	assert.Equal(t, 0.0, ber)
	assert.Equal(t, 3, n)

	ber, n = BitErrorRate([]uint32{0}, []uint32{0xFFFFFFFF})
	assert.Equal(t, 1.0, ber)
	assert.Equal(t, 1, n)

	ber, _ = BitErrorRate([]uint32{0, 0}, []uint32{0xFFFF, 0})
	assert.Equal(t, 0.25, ber)

	ber, n = BitErrorRate(nil, []uint32{1})
	assert.Equal(t, 1.0, ber)
	assert.Equal(t, 0, n)
}

func TestHashDistance(t *testing.T) {
	assert.Equal(t, 0, HashDistance(7, 7))
	assert.Equal(t, 32, HashDistance(0, 0xFFFFFFFF))
	assert.Equal(t, 2, HashDistance(0b101, 0))
}

func TestAlignFindsShift(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := randomFingerprint(rng, 200)

	offset, ber, overlap := Align(a, a[10:], 20)
	assert.Equal(t, 10, offset)
	assert.Equal(t, 0.0, ber)
	assert.Equal(t, 190, overlap)

	b := append(randomFingerprint(rng, 5), a...)
	offset, ber, overlap = Align(a, b, 20)
	assert.Equal(t, -5, offset)
	assert.Equal(t, 0.0, ber)
	assert.Equal(t, 200, overlap)

	offset, ber, _ = Align(a, a, 20)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 0.0, ber)
}

func TestAlignOutsideWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := randomFingerprint(rng, 200)

	offset, ber, _ := Align(a, a[30:], 10)
	assert.LessOrEqual(t, offset, 10)
	assert.Greater(t, ber, 0.3)
}

func TestAlignEmpty(t *testing.T) {
	offset, ber, overlap := Align(nil, []uint32{1}, 5)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1.0, ber)
	assert.Equal(t, 0, overlap)
}

func TestCompare(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := randomFingerprint(rng, 120)

	b := append([]uint32(nil), a[8:]...)
	for i := range b {
		if i%4 == 0 {
			b[i] ^= 0x0F
		}
	}

	res, err := Compare(a, b, DefaultCompareOptions())
	require.NoError(t, err)
	assert.Equal(t, 8, res.Offset)
	assert.InDelta(t, 8*1365.0/11025.0, res.OffsetSeconds, 1e-12)
	assert.Equal(t, 112, res.Overlap)
	assert.InDelta(t, 4.0*28/(32*112), res.BitErrorRate, 1e-12)
	assert.InDelta(t, 1-res.BitErrorRate, res.Similarity, 1e-12)
	assert.True(t, res.Match)

	other := randomFingerprint(rng, 120)
	res, err = Compare(a, other, CompareOptions{MaxOffset: 0, MatchThreshold: 0.15})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.InDelta(t, 0.5, res.BitErrorRate, 0.05)
	assert.Equal(t, HashDistance(SimHash(a), SimHash(other)), res.HashDistance)
}

func TestCompareEmpty(t *testing.T) {
	_, err := Compare(nil, []uint32{1}, DefaultCompareOptions())
	assert.ErrorIs(t, err, ErrEmptyFingerprint)
}

func TestOffsetSeconds(t *testing.T) {
	assert.Equal(t, 0.0, OffsetSeconds(0))
	assert.InDelta(t, 1365.0/11025.0, OffsetSeconds(1), 1e-12)
	assert.InDelta(t, -2*1365.0/11025.0, OffsetSeconds(-2), 1e-12)
}
