package compression

// BitWriter packs values of up to 32 bits into bytes, least significant
// bit first.
type BitWriter struct {
	buf   []byte
	acc   uint64
	nbits int
}

func NewBitWriter(capacity int) *BitWriter {
	return &BitWriter{buf: make([]byte, 0, capacity)}
}

// Write appends the low bits of value.
func (w *BitWriter) Write(value uint32, bits int) {
	w.acc |= uint64(value&lowMask(bits)) << w.nbits
	w.nbits += bits
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

// Flush pads the pending bits with zeros up to the next byte boundary.
func (w *BitWriter) Flush() {
	for w.nbits > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
	w.acc = 0
	w.nbits = 0
}

// Bytes returns the flushed output. Pending bits are not included.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

// BitReader is the mirror of BitWriter.
type BitReader struct {
	data  []byte
	pos   int
	acc   uint64
	nbits int
	eof   bool
}

func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Read returns the next bits of the stream. Reading past the end sets EOF
// and yields zero bits for the missing part.
func (r *BitReader) Read(bits int) uint32 {
	for r.nbits < bits {
		if r.pos >= len(r.data) {
			r.eof = true
			break
		}
		r.acc |= uint64(r.data[r.pos]) << r.nbits
		r.pos++
		r.nbits += 8
	}

	value := uint32(r.acc & uint64(lowMask(bits)))
	r.acc >>= bits
	r.nbits = max(0, r.nbits-bits)
	return value
}

// Reset drops buffered bits so the next read starts at a byte boundary.
func (r *BitReader) Reset() {
	r.acc = 0
	r.nbits = 0
}

func (r *BitReader) EOF() bool {
	return r.eof
}

func (r *BitReader) AvailableBits() int {
	if r.eof {
		return 0
	}
	return (len(r.data)-r.pos)*8 + r.nbits
}

func lowMask(bits int) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<bits - 1
}
