package matrix_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func assertShapePanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.ErrorIs(t, err, matrix.ErrShape)
	}()
	f()
}

func TestConstructors(t *testing.T) {
	m := matrix.Fill(matrix.Shape{2, 3}, 7)
	assert.Equal(t, matrix.Shape{2, 3}, m.Shape())
	m.Iterate(func(v float64, _, _ int) {
		assert.Equal(t, 7.0, v)
	})

	f := matrix.FillFunc(matrix.Shape{2, 2}, func(i, j int) float64 { return float64(i*10 + j) })
	assert.Equal(t, [][]float64{{0, 1}, {10, 11}}, f.Values())

	r := matrix.RandUniform(matrix.Shape{10, 10}, -0.5, 0.5, rand.New(rand.NewSource(1)))
	r.Iterate(func(v float64, _, _ int) {
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.5)
	})

	assertShapePanic(t, func() { matrix.New(0, 3) })
	assertShapePanic(t, func() { matrix.Fill(matrix.Shape{3, -1}, 1) })

	_, err := matrix.FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrShape)
	_, err = matrix.FromRows(nil)
	assert.ErrorIs(t, err, matrix.ErrShape)
}

func TestBroadcast(t *testing.T) {
	b := matrix.FromValues([][]float64{{1, 2, 3}, {4, 5, 6}})

	t.Run("column operand", func(t *testing.T) {
		a := matrix.FromValues([][]float64{{10}, {20}})
		sum := a.Add(b)
		require.Equal(t, matrix.Shape{2, 3}, sum.Shape())
		sum.Iterate(func(v float64, i, j int) {
			assert.Equal(t, a.At(i, 0)+b.At(i, j), v)
		})
		assert.Equal(t, sum.Values(), b.Add(a).Values())
	})

	t.Run("row operand", func(t *testing.T) {
		a := matrix.FromValues([][]float64{{1, 10, 100}})
		prod := b.Mul(a)
		require.Equal(t, matrix.Shape{2, 3}, prod.Shape())
		assert.Equal(t, [][]float64{{1, 20, 300}, {4, 50, 600}}, prod.Values())
		assert.Equal(t, prod.Values(), a.Mul(b).Values())
	})

	t.Run("outer broadcast", func(t *testing.T) {
		col := matrix.FromValues([][]float64{{1}, {2}})
		row := matrix.FromValues([][]float64{{10, 20, 30}})
		assert.Equal(t, [][]float64{{9, 19, 29}, {8, 18, 28}}, row.Sub(col).Values())
	})

	t.Run("same shape ops", func(t *testing.T) {
		two := matrix.Fill(matrix.Shape{2, 3}, 2)
		assert.Equal(t, [][]float64{{0.5, 1, 1.5}, {2, 2.5, 3}}, b.Div(two).Values())
		assert.Equal(t, [][]float64{{1, 4, 9}, {16, 25, 36}}, b.Pow(two).Values())
		assert.Equal(t, [][]float64{{-1, 0, 1}, {2, 3, 4}}, b.Sub(two).Values())
	})

	t.Run("incompatible", func(t *testing.T) {
		c := matrix.Fill(matrix.Shape{3, 2}, 1)
		assertShapePanic(t, func() { b.Add(c) })
		assertShapePanic(t, func() { b.Mul(matrix.Fill(matrix.Shape{2, 2}, 1)) })
	})
}

func TestDot(t *testing.T) {
	a := matrix.FromValues([][]float64{{1, 2}, {3, 4}})
	b := matrix.FromValues([][]float64{{5, 6}, {7, 8}})
	assert.Equal(t, [][]float64{{19, 22}, {43, 50}}, matrix.Dot(a, b).Values())

	assertShapePanic(t, func() { matrix.Dot(a, matrix.Fill(matrix.Shape{3, 1}, 1)) })
}

func TestDot_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := matrix.RandUniform(matrix.Shape{4, 7}, -1, 1, rng)
	b := matrix.RandUniform(matrix.Shape{7, 3}, -1, 1, rng)

	got := matrix.Dot(a, b)
	require.Equal(t, matrix.Shape{4, 3}, got.Shape())

	var want mat.Dense
	want.Mul(mat.NewDense(4, 7, a.Flat()), mat.NewDense(7, 3, b.Flat()))
	got.Iterate(func(v float64, i, j int) {
		assert.InDelta(t, want.At(i, j), v, 1e-12)
	})
}

func TestTranspose(t *testing.T) {
	a := matrix.FromValues([][]float64{{1, 2, 3}, {4, 5, 6}})
	at := a.Transpose()
	assert.Equal(t, matrix.Shape{3, 2}, at.Shape())
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, at.Values())

	rng := rand.New(rand.NewSource(7))
	for _, shape := range []matrix.Shape{{1, 1}, {1, 5}, {5, 1}, {3, 8}} {
		m := matrix.RandUniform(shape, -2, 2, rng)
		assert.True(t, m.Transpose().Transpose().Equal(m, 0), "transpose involution for %v", shape)
	}
}

func TestReductions(t *testing.T) {
	m := matrix.FromValues([][]float64{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, 21.0, m.Sum())
	assert.Equal(t, [][]float64{{6}, {15}}, m.SumRows().Values())
	assert.Equal(t, [][]float64{{5, 7, 9}}, m.SumCols().Values())
	assert.Equal(t, [][]float64{{2}, {5}}, m.AverageRows().Values())
	assert.Equal(t, [][]float64{{4, 5, 6}}, m.MaxCols().Values())
}

func TestMax(t *testing.T) {
	m := matrix.FromValues([][]float64{{0.1, 0.2}, {0.7, 0.05}})
	v, pos := m.Max()
	assert.Equal(t, 0.7, v)
	assert.Equal(t, matrix.Position{Row: 1, Col: 0}, pos)
}

func TestShape1DAndFlat(t *testing.T) {
	flat := []float64{1, 2, 3, 4, 5, 6, 7}
	m, err := matrix.Shape1D(flat, matrix.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, m.Values())
	assert.Equal(t, flat[:6], m.Flat())

	_, err = matrix.Shape1D(flat[:5], matrix.Shape{2, 3})
	assert.ErrorIs(t, err, matrix.ErrShape)
}

func TestAssign(t *testing.T) {
	m := matrix.Fill(matrix.Shape{2, 2}, 0)
	alias := m
	require.NoError(t, m.Assign(matrix.Fill(matrix.Shape{2, 2}, 3)))
	assert.Equal(t, 12.0, alias.Sum())

	err := m.Assign(matrix.Fill(matrix.Shape{3, 2}, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, matrix.ErrShape)
	assert.Contains(t, err.Error(), "(2 x 2)")
	assert.Contains(t, err.Error(), "(3 x 2)")
}

func TestColumns(t *testing.T) {
	m := matrix.FromValues([][]float64{{1, 2}, {3, 4}})
	assert.Equal(t, [][]float64{{2}, {4}}, m.Col(1).Values())

	m.SetCol(0, matrix.Column([]float64{9, 8}))
	assert.Equal(t, [][]float64{{9, 2}, {8, 4}}, m.Values())

	assertShapePanic(t, func() { m.SetCol(0, matrix.Column([]float64{1, 2, 3})) })
}

func TestMapIsPure(t *testing.T) {
	m := matrix.FromValues([][]float64{{1, 2}})
	doubled := m.Map(func(v float64, _, _ int) float64 { return v * 2 })
	assert.Equal(t, [][]float64{{1, 2}}, m.Values())
	assert.Equal(t, [][]float64{{2, 4}}, doubled.Values())
	assert.Equal(t, [][]float64{{3, 4}}, m.AddScalar(2).Values())
	assert.Equal(t, [][]float64{{-1, -2}}, m.MulScalar(-1).Values())
}

func TestCatch(t *testing.T) {
	run := func() (err error) {
		defer matrix.Catch(&err)
		matrix.Dot(matrix.New(2, 3), matrix.New(2, 3))
		return nil
	}
	err := run()
	var se *matrix.ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "dot", se.Op)
	assert.Contains(t, err.Error(), "cannot dot a (2 x 3) & (2 x 3)")
}
