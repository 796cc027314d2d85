package fft

// CombinedBuffer is a read-only view over the concatenation of two sample
// slices, so carried-over samples and fresh input can be framed without
// copying them together first.
type CombinedBuffer struct {
	a, b   []int16
	offset int
}

func NewCombinedBuffer(a, b []int16) *CombinedBuffer {
	return &CombinedBuffer{a: a, b: b}
}

// Size is the number of samples left after the current offset.
func (c *CombinedBuffer) Size() int {
	return len(c.a) + len(c.b) - c.offset
}

func (c *CombinedBuffer) Offset() int {
	return c.offset
}

// At returns the i-th sample after the current offset.
func (c *CombinedBuffer) At(i int) int16 {
	k := i + c.offset
	if k < len(c.a) {
		return c.a[k]
	}
	return c.b[k-len(c.a)]
}

// Shift advances the read offset, never past the end of the data.
func (c *CombinedBuffer) Shift(n int) int {
	c.offset = min(c.offset+n, len(c.a)+len(c.b))
	return c.offset
}

// Read copies up to length samples starting offset samples past the current
// read position into dst and returns how many were copied.
func (c *CombinedBuffer) Read(dst []int16, offset, length int) int {
	length = min(length, len(dst))
	pos := c.offset + offset
	n := 0

	if pos < len(c.a) {
		n = copy(dst[:length], c.a[pos:])
		pos = len(c.a)
	}
	if n < length {
		if bpos := pos - len(c.a); bpos < len(c.b) {
			n += copy(dst[n:length], c.b[bpos:])
		}
	}

	return n
}

// Flush copies all remaining samples to the start of dst. dst may alias the
// first slice.
func (c *CombinedBuffer) Flush(dst []int16) int {
	if size := c.Size(); size > 0 {
		return c.Read(dst, 0, size)
	}
	return 0
}
