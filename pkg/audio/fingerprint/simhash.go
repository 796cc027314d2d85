package fingerprint

// SimHash folds a fingerprint into one 32-bit value by per-bit majority.
// Ties leave the bit clear.
func SimHash(fingerprint []uint32) uint32 {
	var counts [32]int
	for _, sub := range fingerprint {
		for bit := range counts {
			if sub&(1<<bit) != 0 {
				counts[bit]++
			} else {
				counts[bit]--
			}
		}
	}

	var hash uint32
	for bit, n := range counts {
		if n > 0 {
			hash |= 1 << bit
		}
	}
	return hash
}
