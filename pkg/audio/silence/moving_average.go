package silence

// MovingAverage keeps the integer mean of the last size values added.
type MovingAverage struct {
	buffer []int
	offset int
	sum    int
	count  int
}

func NewMovingAverage(size int) *MovingAverage {
	return &MovingAverage{buffer: make([]int, max(size, 1))}
}

// Add replaces the oldest value in the window with x.
func (m *MovingAverage) Add(x int) {
	m.sum += x - m.buffer[m.offset]
	if m.count < len(m.buffer) {
		m.count++
	}
	m.buffer[m.offset] = x
	m.offset = (m.offset + 1) % len(m.buffer)
}

// Average divides by the number of values seen while the window warms up.
func (m *MovingAverage) Average() int {
	if m.count == 0 {
		return 0
	}
	return m.sum / m.count
}

// Reset empties the window.
func (m *MovingAverage) Reset() {
	clear(m.buffer)
	m.offset = 0
	m.sum = 0
	m.count = 0
}
