package image

// Builder appends every vector it consumes as a new row of its image.
type Builder struct {
	image *Image
}

func NewBuilder(img *Image) *Builder {
	return &Builder{image: img}
}

// Reset redirects subsequent rows into img.
func (b *Builder) Reset(img *Image) {
	b.image = img
}

func (b *Builder) Image() *Image {
	return b.image
}

func (b *Builder) Consume(features []float64) {
	b.image.AddRow(features)
}
