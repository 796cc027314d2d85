// Package image accumulates chroma vectors into a row-major matrix and
// provides a summed-area view over it for constant-time region sums.
package image

import "fmt"

// BlockSize is the growth increment of the backing storage, in elements.
const BlockSize = 2048

// Image is a growable matrix with a fixed number of columns. Rows are
// analysis frames; columns are chroma bands.
type Image struct {
	columns int
	rows    int
	data    []float64
}

func New(columns int) *Image {
	return NewWithRows(columns, 0)
}

// NewWithRows returns a zero-filled image of the given shape. It panics if
// columns is not positive.
func NewWithRows(columns, rows int) *Image {
	mustHaveColumns(columns)
	return &Image{
		columns: columns,
		rows:    rows,
		data:    make([]float64, max(columns*rows, BlockSize)),
	}
}

func mustHaveColumns(columns int) {
	if columns <= 0 {
		panic(fmt.Sprintf("image: invalid column count %d", columns))
	}
}

// FromData wraps rows of values laid out row-major. The data is copied. Like
// NewWithRows it panics if columns is not positive; data that does not fill
// whole rows is an error.
func FromData(columns int, data []float64) (*Image, error) {
	mustHaveColumns(columns)
	if len(data)%columns != 0 {
		return nil, fmt.Errorf("image: %d values do not fill rows of %d columns", len(data), columns)
	}
	img := NewWithRows(columns, len(data)/columns)
	copy(img.data, data)
	return img, nil
}

func (img *Image) Columns() int { return img.columns }

func (img *Image) Rows() int { return img.rows }

// AddRow appends one row. Extra values are ignored and missing values stay zero.
func (img *Image) AddRow(row []float64) {
	need := (img.rows + 1) * img.columns
	if need > len(img.data) {
		blocks := (need - len(img.data) + BlockSize - 1) / BlockSize
		grown := make([]float64, len(img.data)+blocks*BlockSize)
		copy(grown, img.data[:img.rows*img.columns])
		img.data = grown
	}

	copy(img.data[img.rows*img.columns:need], row)
	img.rows++
}

// Row returns a copy of row i.
func (img *Image) Row(i int) []float64 {
	start := i * img.columns
	return append([]float64(nil), img.data[start:start+img.columns]...)
}

func (img *Image) At(row, column int) float64 {
	return img.data[row*img.columns+column]
}

func (img *Image) Set(row, column int, value float64) {
	img.data[row*img.columns+column] = value
}

// Data returns the populated part of the backing storage without copying.
func (img *Image) Data() []float64 {
	return img.data[:img.rows*img.columns]
}

func (img *Image) Copy() *Image {
	return &Image{
		columns: img.columns,
		rows:    img.rows,
		data:    append([]float64(nil), img.data...),
	}
}
