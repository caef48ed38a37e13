// Package matrix implements the dense 2-D float64 matrix used throughout densenet.
//
// A Matrix has a fixed shape (rows x cols, both >= 1) and mutable contents
// stored row-major in a flat buffer. Element-wise binary operations broadcast:
// a dimension of size 1 in either operand stretches to match the other
// operand. Mismatched dimensions that are not 1 panic with a *ShapeError.
//
// Example:
//
//	a := matrix.FromValues([][]float64{{1, 2}, {3, 4}})
//	b := matrix.FromValues([][]float64{{5, 6}, {7, 8}})
//	c := matrix.Dot(a, b) // [[19 22] [43 50]]
//
//	bias := matrix.FromValues([][]float64{{1}, {2}})
//	d := a.Add(bias) // column vector stretched over both columns
package matrix

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Shape is a (rows, cols) pair.
type Shape [2]int

// Rows returns the number of rows.
func (s Shape) Rows() int { return s[0] }

// Cols returns the number of columns.
func (s Shape) Cols() int { return s[1] }

// Size returns rows*cols.
func (s Shape) Size() int { return s[0] * s[1] }

// String formats the shape as "(rows x cols)".
func (s Shape) String() string {
	return fmt.Sprintf("(%d x %d)", s[0], s[1])
}

func (s Shape) valid() bool {
	return s[0] >= 1 && s[1] >= 1
}

// Position addresses a single element.
type Position struct {
	Row int
	Col int
}

// Matrix is a 2-D numeric container with row-major backing storage.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// New creates a zero-filled matrix.
//
// Panics with a *ShapeError if rows or cols is not positive.
func New(rows, cols int) *Matrix {
	shape := Shape{rows, cols}
	if !shape.valid() {
		shapePanic("new", shape, Shape{}, "dimensions must be positive, got %v", shape)
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Fill creates a matrix of the given shape with every element set to value.
func Fill(shape Shape, value float64) *Matrix {
	m := New(shape[0], shape[1])
	if value != 0 {
		for i := range m.data {
			m.data[i] = value
		}
	}
	return m
}

// FillFunc creates a matrix whose element (i, j) is f(i, j).
func FillFunc(shape Shape, f func(i, j int) float64) *Matrix {
	m := New(shape[0], shape[1])
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			m.data[i*m.cols+j] = f(i, j)
		}
	}
	return m
}

// RandUniform creates a matrix with values drawn uniformly from [min, max).
//
// A nil rng uses the global math/rand source.
func RandUniform(shape Shape, min, max float64, rng *rand.Rand) *Matrix {
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	return FillFunc(shape, func(_, _ int) float64 {
		//nolint:gosec // weight initialization is not security-critical
		return next()*(max-min) + min
	})
}

// Identity creates an n x n identity matrix.
func Identity(n int) *Matrix {
	return FillFunc(Shape{n, n}, func(i, j int) float64 {
		if i == j {
			return 1
		}
		return 0
	})
}

// FromRows builds a matrix from a slice of equally sized rows.
//
// Returns an error if rows is empty, a row is empty, or the rows are ragged.
// The input is copied.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ShapeError{Op: "from rows", Detail: "matrix must have at least one row and one column"}
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, &ShapeError{
				Op:     "from rows",
				Detail: fmt.Sprintf("row %d has %d elements, expected %d", i, len(row), cols),
			}
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// FromValues is FromRows for literal data known to be well formed.
//
// Panics with a *ShapeError on ragged or empty input.
func FromValues(rows [][]float64) *Matrix {
	m, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Column creates an n x 1 matrix from values.
func Column(values []float64) *Matrix {
	m := New(len(values), 1)
	copy(m.data, values)
	return m
}

// Shape1D reshapes a flat row-major sequence into a matrix of the given shape.
//
// Returns an error if flat holds fewer than rows*cols values; extra values
// are ignored.
func Shape1D(flat []float64, shape Shape) (*Matrix, error) {
	if !shape.valid() {
		return nil, &ShapeError{Op: "reshape", A: shape, Detail: fmt.Sprintf("dimensions must be positive, got %v", shape)}
	}
	if len(flat) < shape.Size() {
		return nil, &ShapeError{
			Op:     "reshape",
			A:      shape,
			Detail: fmt.Sprintf("cannot shape %d values into %v", len(flat), shape),
		}
	}
	m := New(shape[0], shape[1])
	copy(m.data, flat[:shape.Size()])
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() Shape { return Shape{m.rows, m.cols} }

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Values returns a copy of the contents as nested rows.
func (m *Matrix) Values() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		copy(out[i], m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// Flat returns a row-major copy of the contents.
func (m *Matrix) Flat() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: m.Flat()}
}

// Col returns column j as an n x 1 matrix.
func (m *Matrix) Col(j int) *Matrix {
	out := New(m.rows, 1)
	for i := 0; i < m.rows; i++ {
		out.data[i] = m.data[i*m.cols+j]
	}
	return out
}

// SetCol overwrites column j with the contents of an n x 1 matrix.
func (m *Matrix) SetCol(j int, col *Matrix) {
	if col.rows != m.rows || col.cols != 1 {
		shapePanic("set column", m.Shape(), col.Shape(), "column must be (%d x 1), got %v", m.rows, col.Shape())
	}
	for i := 0; i < m.rows; i++ {
		m.data[i*m.cols+j] = col.data[i]
	}
}

// Assign replaces the contents of m with those of other in place.
//
// Holders of m observe the new values. The shapes must be identical.
func (m *Matrix) Assign(other *Matrix) error {
	if m.rows != other.rows || m.cols != other.cols {
		return &ShapeError{
			Op:     "assign",
			A:      m.Shape(),
			B:      other.Shape(),
			Detail: fmt.Sprintf("matrix is of dimensions %v not %v", m.Shape(), other.Shape()),
		}
	}
	copy(m.data, other.data)
	return nil
}

// Equal reports whether both matrices have the same shape and every element
// differs by at most tol.
func (m *Matrix) Equal(other *Matrix, tol float64) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	return floats.EqualApprox(m.data, other.data, tol)
}

// Map returns a new matrix with f applied to every element.
func (m *Matrix) Map(f func(v float64, i, j int) float64) *Matrix {
	out := New(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			k := i*m.cols + j
			out.data[k] = f(m.data[k], i, j)
		}
	}
	return out
}

// Iterate calls f for every element in row-major order.
func (m *Matrix) Iterate(f func(v float64, i, j int)) {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			f(m.data[i*m.cols+j], i, j)
		}
	}
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	t := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Dot computes the matrix product a·b.
//
// Requires a.Cols() == b.Rows(); panics with a *ShapeError otherwise.
// Accumulation is a plain running sum of products.
func Dot(a, b *Matrix) *Matrix {
	if a.cols != b.rows {
		shapePanic("dot", a.Shape(), b.Shape(), "cannot dot a %v & %v", a.Shape(), b.Shape())
	}
	out := New(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			var sum float64
			for k := 0; k < a.cols; k++ {
				sum += a.data[i*a.cols+k] * b.data[k*b.cols+j]
			}
			out.data[i*out.cols+j] = sum
		}
	}
	return out
}

// String renders the matrix as nested rows.
func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, m.data[i*m.cols:(i+1)*m.cols])
	}
	b.WriteByte(']')
	return b.String()
}

// HasNaN reports whether any element is NaN.
func (m *Matrix) HasNaN() bool {
	return floats.HasNaN(m.data)
}

// broadcastDim resolves one dimension of a broadcast.
func broadcastDim(a, b int) (int, bool) {
	switch {
	case a == b:
		return a, true
	case a == 1:
		return b, true
	case b == 1:
		return a, true
	default:
		return 0, false
	}
}

// broadcast is the shared driver for the element-wise binary operations.
//
// Same-shape operands take the flat fast path (kernel); everything else is
// resolved per dimension and evaluated with fn.
func (m *Matrix) broadcast(op string, other *Matrix, kernel func(dst, s, t []float64) []float64, fn func(a, b float64) float64) *Matrix {
	if m.rows == other.rows && m.cols == other.cols {
		out := New(m.rows, m.cols)
		if kernel != nil {
			kernel(out.data, m.data, other.data)
			return out
		}
		for k := range out.data {
			out.data[k] = fn(m.data[k], other.data[k])
		}
		return out
	}

	rows, okRows := broadcastDim(m.rows, other.rows)
	cols, okCols := broadcastDim(m.cols, other.cols)
	if !okRows || !okCols {
		shapePanic(op, m.Shape(), other.Shape(), "%v & %v not broadcastable", m.Shape(), other.Shape())
	}

	out := New(rows, cols)
	for i := 0; i < rows; i++ {
		ai, bi := i, i
		if m.rows == 1 {
			ai = 0
		}
		if other.rows == 1 {
			bi = 0
		}
		for j := 0; j < cols; j++ {
			aj, bj := j, j
			if m.cols == 1 {
				aj = 0
			}
			if other.cols == 1 {
				bj = 0
			}
			out.data[i*cols+j] = fn(m.data[ai*m.cols+aj], other.data[bi*other.cols+bj])
		}
	}
	return out
}

// Add returns m + other with broadcasting.
func (m *Matrix) Add(other *Matrix) *Matrix {
	return m.broadcast("add", other, floats.AddTo, func(a, b float64) float64 { return a + b })
}

// Sub returns m - other with broadcasting.
func (m *Matrix) Sub(other *Matrix) *Matrix {
	return m.broadcast("sub", other, floats.SubTo, func(a, b float64) float64 { return a - b })
}

// Mul returns the Hadamard product m ⊙ other with broadcasting.
func (m *Matrix) Mul(other *Matrix) *Matrix {
	return m.broadcast("mul", other, floats.MulTo, func(a, b float64) float64 { return a * b })
}

// Div returns m / other element-wise with broadcasting.
func (m *Matrix) Div(other *Matrix) *Matrix {
	return m.broadcast("div", other, floats.DivTo, func(a, b float64) float64 { return a / b })
}

// Pow returns m raised element-wise to other with broadcasting.
func (m *Matrix) Pow(other *Matrix) *Matrix {
	return m.broadcast("pow", other, nil, math.Pow)
}

// AddScalar returns m + s.
func (m *Matrix) AddScalar(s float64) *Matrix {
	out := m.Clone()
	floats.AddConst(s, out.data)
	return out
}

// MulScalar returns m * s.
func (m *Matrix) MulScalar(s float64) *Matrix {
	out := New(m.rows, m.cols)
	floats.ScaleTo(out.data, s, m.data)
	return out
}

// PowScalar returns m raised element-wise to p.
func (m *Matrix) PowScalar(p float64) *Matrix {
	return m.Map(func(v float64, _, _ int) float64 { return math.Pow(v, p) })
}

// Sum returns the sum of all elements.
func (m *Matrix) Sum() float64 {
	return floats.Sum(m.data)
}

// SumRows sums each row, returning a (rows x 1) matrix.
func (m *Matrix) SumRows() *Matrix {
	out := New(m.rows, 1)
	for i := 0; i < m.rows; i++ {
		out.data[i] = floats.Sum(m.data[i*m.cols : (i+1)*m.cols])
	}
	return out
}

// AverageRows returns the mean of each row as a (rows x 1) matrix.
func (m *Matrix) AverageRows() *Matrix {
	return m.SumRows().MulScalar(1 / float64(m.cols))
}

// SumCols sums each column, returning a (1 x cols) matrix.
func (m *Matrix) SumCols() *Matrix {
	out := New(1, m.cols)
	for i := 0; i < m.rows; i++ {
		floats.Add(out.data, m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// MaxCols returns the maximum of each column as a (1 x cols) matrix.
func (m *Matrix) MaxCols() *Matrix {
	out := New(1, m.cols)
	copy(out.data, m.data[:m.cols])
	for i := 1; i < m.rows; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, v := range row {
			if v > out.data[j] {
				out.data[j] = v
			}
		}
	}
	return out
}

// Max returns the largest element and its position.
//
// Ties resolve to the first occurrence in row-major order.
func (m *Matrix) Max() (float64, Position) {
	idx := floats.MaxIdx(m.data)
	return m.data[idx], Position{Row: idx / m.cols, Col: idx % m.cols}
}

// SameShape panics with a *ShapeError unless a and b have identical shapes.
func SameShape(op string, a, b *Matrix) {
	if a.rows != b.rows || a.cols != b.cols {
		shapePanic(op, a.Shape(), b.Shape(), "expected identical shapes, got %v & %v", a.Shape(), b.Shape())
	}
}
