package sparsepca

import (
	"fmt"

	"github.com/yyyoichi/bitstream-go"
	"gonum.org/v1/gonum/mat"
)

// Support is the packed non-zero pattern of a d×n loadings matrix, stored
// column by column, one bit per entry.
type Support struct {
	rows, cols int
	reader     *bitstream.BitReader[uint64]
}

// NewSupport records which entries of m are non-zero.
func NewSupport(m mat.Matrix) *Support {
	r, c := m.Dims()
	w := bitstream.NewBitWriter[uint64](0, 0)
	for j := range c {
		for i := range r {
			w.WriteBool(m.At(i, j) != 0)
		}
	}
	reader := bitstream.NewBitReader(w.Data(), 0, 0)
	reader.SetBits(w.Bits())
	return &Support{rows: r, cols: c, reader: reader}
}

// SupportFromData restores a Support from the words returned by Data.
func SupportFromData(data []uint64, rows, cols int) (*Support, error) {
	if rows < 0 || cols < 0 || len(data)*64 < rows*cols {
		return nil, fmt.Errorf("%w: %d words cannot hold a %dx%d support", ErrInvalidInput, len(data), rows, cols)
	}
	reader := bitstream.NewBitReader(append([]uint64(nil), data...), 0, 0)
	reader.SetBits(rows * cols)
	return &Support{rows: rows, cols: cols, reader: reader}, nil
}

func (s *Support) Dims() (r, c int) { return s.rows, s.cols }

// At reports whether entry (i, j) is non-zero.
func (s *Support) At(i, j int) bool {
	if i < 0 || i >= s.rows || j < 0 || j >= s.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	v, _ := s.reader.ReadBitAt(j*s.rows + i)
	return v
}

// Column returns the pattern of column j.
func (s *Support) Column(j int) []bool {
	col := make([]bool, s.rows)
	for i := range col {
		col[i] = s.At(i, j)
	}
	return col
}

// Count returns the number of non-zero entries.
func (s *Support) Count() int {
	var n int
	for k := range s.rows * s.cols {
		if v, _ := s.reader.ReadBitAt(k); v {
			n++
		}
	}
	return n
}

// Overlap returns the Jaccard index of two supports of the same shape,
// 1 when both are empty.
func (s *Support) Overlap(o *Support) float64 {
	if s.rows != o.rows || s.cols != o.cols {
		panic(mat.ErrShape)
	}
	var both, either int
	for k := range s.rows * s.cols {
		a, _ := s.reader.ReadBitAt(k)
		b, _ := o.reader.ReadBitAt(k)
		if a && b {
			both++
		}
		if a || b {
			either++
		}
	}
	if either == 0 {
		return 1
	}
	return float64(both) / float64(either)
}

// Data returns a copy of the packed words.
func (s *Support) Data() []uint64 {
	return append([]uint64(nil), s.reader.Data()...)
}

// Bits returns the number of meaningful bits in Data.
func (s *Support) Bits() int { return s.rows * s.cols }
