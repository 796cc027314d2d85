package image

// IntegralImage is a summed-area table: cell (x, y) holds the sum of all
// source cells at row <= x and column <= y.
type IntegralImage struct {
	image *Image
}

// NewIntegralImage transforms img in place, or a private copy of it when
// keepSource is set.
func NewIntegralImage(img *Image, keepSource bool) *IntegralImage {
	if keepSource {
		img = img.Copy()
	}
	transform(img)
	return &IntegralImage{image: img}
}

func transform(img *Image) {
	columns, rows := img.columns, img.rows
	if rows == 0 {
		return
	}
	data := img.data

	for j := 1; j < columns; j++ {
		data[j] += data[j-1]
	}

	last, curr := 0, columns
	for i := 1; i < rows; i++ {
		data[curr] += data[last]
		curr++
		last++
		for j := 1; j < columns; j++ {
			data[curr] += data[curr-1] + data[last] - data[last-1]
			curr++
			last++
		}
	}
}

func (ii *IntegralImage) Rows() int { return ii.image.rows }

func (ii *IntegralImage) Columns() int { return ii.image.columns }

// At returns the cumulative sum up to and including (x, y).
func (ii *IntegralImage) At(x, y int) float64 {
	return ii.image.At(x, y)
}

// Area returns the sum of source cells in rows x1..x2 and columns y1..y2,
// inclusive. Empty rectangles sum to zero.
func (ii *IntegralImage) Area(x1, y1, x2, y2 int) float64 {
	if x2 < x1 || y2 < y1 {
		return 0
	}

	area := ii.At(x2, y2)
	if x1 > 0 {
		area -= ii.At(x1-1, y2)
		if y1 > 0 {
			area += ii.At(x1-1, y1-1)
		}
	}
	if y1 > 0 {
		area -= ii.At(x2, y1-1)
	}
	return area
}
