// Package sparse provides coordinate-accumulating sparse matrix builders and
// the immutable matrices they finalize into.
//
// A builder exposes a single Add(row, col, v) operation with += semantics:
// repeated additions at one coordinate sum, so overlapping element
// contributions (parallel lines, shared buses) accumulate instead of
// overwriting. Build() freezes the accumulated entries into an immutable,
// queryable matrix with sorted coordinate storage.
package sparse

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for sparse matrix operations.
var (
	// ErrBadShape indicates a negative row or column count was requested.
	// Zero-sized axes are legal: a grid without loads yields 0-column
	// incidence matrices.
	ErrBadShape = errors.New("sparse: invalid shape")
	// ErrOutOfRange indicates a row or column index outside matrix bounds.
	ErrOutOfRange = errors.New("sparse: index out of range")
	// ErrNaNInf indicates a NaN or ±Inf component where finite values are required.
	ErrNaNInf = errors.New("sparse: NaN or Inf encountered")
)

// coord addresses one matrix entry during accumulation.
type coord struct {
	row, col int
}

// checkIndex validates (row, col) against an r×c shape.
func checkIndex(row, col, r, c int) error {
	if row < 0 || row >= r || col < 0 || col >= c {
		return fmt.Errorf("entry (%d,%d) of %dx%d: %w", row, col, r, c, ErrOutOfRange)
	}

	return nil
}

// ComplexBuilder accumulates complex128 entries for a matrix under
// construction. The zero value is unusable; use NewComplexBuilder.
type ComplexBuilder struct {
	rows, cols int
	entries    map[coord]complex128
}

// NewComplexBuilder returns an empty rows×cols accumulator.
// Returns ErrBadShape if either dimension is negative.
func NewComplexBuilder(rows, cols int) (*ComplexBuilder, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%dx%d: %w", rows, cols, ErrBadShape)
	}

	return &ComplexBuilder{rows: rows, cols: cols, entries: make(map[coord]complex128)}, nil
}

// Dims returns the builder's shape.
func (b *ComplexBuilder) Dims() (rows, cols int) { return b.rows, b.cols }

// Add accumulates v onto entry (row, col). Adding at one coordinate twice
// sums the values. Returns ErrOutOfRange for indexes outside the shape and
// ErrNaNInf for non-finite components. Time: O(1).
func (b *ComplexBuilder) Add(row, col int, v complex128) error {
	if err := checkIndex(row, col, b.rows, b.cols); err != nil {
		return err
	}
	re, im := real(v), imag(v)
	if math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(im) || math.IsInf(im, 0) {
		return fmt.Errorf("entry (%d,%d): %w", row, col, ErrNaNInf)
	}
	b.entries[coord{row, col}] += v

	return nil
}

// Build freezes the accumulated entries into an immutable Complex matrix.
// Exact-zero accumulations are dropped. The builder may be reused afterwards;
// the returned matrix shares no state with it.
// Time: O(nnz·log nnz) for the coordinate sort.
func (b *ComplexBuilder) Build() *Complex {
	m := &Complex{rows: b.rows, cols: b.cols}
	m.coords = make([]coord, 0, len(b.entries))
	for k, v := range b.entries {
		if v == 0 {
			continue
		}
		m.coords = append(m.coords, k)
	}
	sort.Slice(m.coords, func(i, j int) bool {
		if m.coords[i].row != m.coords[j].row {
			return m.coords[i].row < m.coords[j].row
		}

		return m.coords[i].col < m.coords[j].col
	})
	m.values = make([]complex128, len(m.coords))
	for i, k := range m.coords {
		m.values[i] = b.entries[k]
	}

	return m
}

// Complex is an immutable sparse complex matrix in sorted coordinate form.
type Complex struct {
	rows, cols int
	coords     []coord
	values     []complex128
}

// Dims returns the matrix shape.
func (m *Complex) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored nonzero entries.
func (m *Complex) NNZ() int { return len(m.coords) }

// At returns the entry at (row, col); absent coordinates read as zero.
// Returns ErrOutOfRange for indexes outside the shape.
// Time: O(log nnz).
func (m *Complex) At(row, col int) (complex128, error) {
	if err := checkIndex(row, col, m.rows, m.cols); err != nil {
		return 0, err
	}
	i := sort.Search(len(m.coords), func(i int) bool {
		if m.coords[i].row != row {
			return m.coords[i].row > row
		}

		return m.coords[i].col >= col
	})
	if i < len(m.coords) && m.coords[i] == (coord{row, col}) {
		return m.values[i], nil
	}

	return 0, nil
}

// NonZero calls fn for each stored entry in (row, col) order, stopping early
// if fn returns false.
func (m *Complex) NonZero(fn func(row, col int, v complex128) bool) {
	for i, k := range m.coords {
		if !fn(k.row, k.col, m.values[i]) {
			return
		}
	}
}

// RowHasNonZero reports whether row holds at least one stored entry.
// Time: O(log nnz).
func (m *Complex) RowHasNonZero(row int) bool {
	i := sort.Search(len(m.coords), func(i int) bool {
		return m.coords[i].row >= row
	})

	return i < len(m.coords) && m.coords[i].row == row
}

// Dense exports the matrix as a gonum *mat.CDense. Zero-sized matrices
// return nil, as gonum rejects empty allocations.
// Time: O(rows·cols).
func (m *Complex) Dense() *mat.CDense {
	if m.rows == 0 || m.cols == 0 {
		return nil
	}
	d := mat.NewCDense(m.rows, m.cols, nil)
	for i, k := range m.coords {
		d.Set(k.row, k.col, m.values[i])
	}

	return d
}

// RealBuilder accumulates float64 entries for a matrix under construction.
// The zero value is unusable; use NewRealBuilder.
type RealBuilder struct {
	rows, cols int
	entries    map[coord]float64
}

// NewRealBuilder returns an empty rows×cols accumulator.
// Returns ErrBadShape if either dimension is negative.
func NewRealBuilder(rows, cols int) (*RealBuilder, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%dx%d: %w", rows, cols, ErrBadShape)
	}

	return &RealBuilder{rows: rows, cols: cols, entries: make(map[coord]float64)}, nil
}

// Dims returns the builder's shape.
func (b *RealBuilder) Dims() (rows, cols int) { return b.rows, b.cols }

// Add accumulates v onto entry (row, col), summing with prior additions.
// Returns ErrOutOfRange for indexes outside the shape and ErrNaNInf for
// non-finite values. Time: O(1).
func (b *RealBuilder) Add(row, col int, v float64) error {
	if err := checkIndex(row, col, b.rows, b.cols); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("entry (%d,%d): %w", row, col, ErrNaNInf)
	}
	b.entries[coord{row, col}] += v

	return nil
}

// Build freezes the accumulated entries into an immutable Real matrix.
// Exact-zero accumulations are dropped.
// Time: O(nnz·log nnz).
func (b *RealBuilder) Build() *Real {
	m := &Real{rows: b.rows, cols: b.cols}
	m.coords = make([]coord, 0, len(b.entries))
	for k, v := range b.entries {
		if v == 0 {
			continue
		}
		m.coords = append(m.coords, k)
	}
	sort.Slice(m.coords, func(i, j int) bool {
		if m.coords[i].row != m.coords[j].row {
			return m.coords[i].row < m.coords[j].row
		}

		return m.coords[i].col < m.coords[j].col
	})
	m.values = make([]float64, len(m.coords))
	for i, k := range m.coords {
		m.values[i] = b.entries[k]
	}

	return m
}

// Real is an immutable sparse float64 matrix in sorted coordinate form.
type Real struct {
	rows, cols int
	coords     []coord
	values     []float64
}

// Dims returns the matrix shape.
func (m *Real) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored nonzero entries.
func (m *Real) NNZ() int { return len(m.coords) }

// At returns the entry at (row, col); absent coordinates read as zero.
// Returns ErrOutOfRange for indexes outside the shape.
// Time: O(log nnz).
func (m *Real) At(row, col int) (float64, error) {
	if err := checkIndex(row, col, m.rows, m.cols); err != nil {
		return 0, err
	}
	i := sort.Search(len(m.coords), func(i int) bool {
		if m.coords[i].row != row {
			return m.coords[i].row > row
		}

		return m.coords[i].col >= col
	})
	if i < len(m.coords) && m.coords[i] == (coord{row, col}) {
		return m.values[i], nil
	}

	return 0, nil
}

// NonZero calls fn for each stored entry in (row, col) order, stopping early
// if fn returns false.
func (m *Real) NonZero(fn func(row, col int, v float64) bool) {
	for i, k := range m.coords {
		if !fn(k.row, k.col, m.values[i]) {
			return
		}
	}
}

// ColHasNonZero reports whether col holds at least one stored entry.
// Time: O(nnz).
func (m *Real) ColHasNonZero(col int) bool {
	for _, k := range m.coords {
		if k.col == col {
			return true
		}
	}

	return false
}

// Dense exports the matrix as a gonum *mat.Dense. Zero-sized matrices
// return nil, as gonum rejects empty allocations.
// Time: O(rows·cols).
func (m *Real) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return nil
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	for i, k := range m.coords {
		d.Set(k.row, k.col, m.values[i])
	}

	return d
}
