package mnist

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/internal/parallel"
)

func TestNormalise(t *testing.T) {
	assert.InDelta(t, 0.01, Normalise(0), 1e-12)
	assert.InDelta(t, 1.0, Normalise(255), 1e-12)
	assert.InDelta(t, 127.5/255*0.99+0.01, Normalise(127.5), 1e-12)
}

func TestOneHot(t *testing.T) {
	v, err := OneHot(3, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 0}, v)

	_, err = OneHot(5, 5)
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, err = OneHot(-1, 5)
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestReadCSV(t *testing.T) {
	const data = "label,p0,p1,p2\n" +
		"1,0,128,255\n" +
		"0,3,4,5\n" +
		"9,1,1,1\n"

	rows, err := ReadCSV(strings.NewReader(data), Options{Features: 3})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 128, 255}, {0, 3, 4, 5}, {9, 1, 1, 1}}, rows)

	rows, err = ReadCSV(strings.NewReader("2,1,2,3\n4,4,5,6\n"), Options{Features: 3, MaxSamples: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1, 2, 3}}, rows, "no header, limited")
}

func TestReadCSV_Invalid(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("label,a,b\n1,2\n"), Options{Features: 2})
	assert.ErrorIs(t, err, ErrInvalidRow)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadCSV(strings.NewReader("1,2,x\n"), Options{Features: 2})
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestReadCSV_Parallel(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 500; i++ {
		buf.WriteString("7,1,2\n")
	}
	rows, err := ReadCSV(&buf, Options{Features: 2, Parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}})
	require.NoError(t, err)
	require.Len(t, rows, 500)
	for _, r := range rows {
		require.Equal(t, []float64{7, 1, 2}, r)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("3,0,255\n"), 0o600))

	rows, err := LoadCSV(path, Options{Features: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 0, 255}}, rows)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	rows := [][]float64{{2, 0, 255}, {0, 255, 0}}
	x, y, err := Split(rows, 3, parallel.Sequential())
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 0, 1}, {1, 0, 0}}, y)
	require.Len(t, x, 2)
	assert.InDeltaSlice(t, []float64{0.01, 1.0}, x[0], 1e-12)
	assert.InDeltaSlice(t, []float64{1.0, 0.01}, x[1], 1e-12)
	assert.Equal(t, float64(2), rows[0][0], "raw rows are not modified")

	_, _, err = Split([][]float64{{1.5, 0}}, 3, parallel.Sequential())
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, _, err = Split([][]float64{{3, 0}}, 3, parallel.Sequential())
	assert.ErrorIs(t, err, ErrInvalidRow)
	_, _, err = Split([][]float64{{1}}, 3, parallel.Sequential())
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestShuffle_Deterministic(t *testing.T) {
	a := Synthetic(20)
	b := Synthetic(20)
	Shuffle(a, 42)
	Shuffle(b, 42)
	assert.Equal(t, a, b)

	labels := make(map[float64]int)
	for _, r := range a {
		labels[r[0]]++
	}
	assert.Len(t, labels, Classes, "shuffling keeps every row")
}

func TestSynthetic(t *testing.T) {
	rows := Synthetic(12)
	require.Len(t, rows, 12)
	for i, r := range rows {
		require.Len(t, r, Pixels+1)
		assert.Equal(t, float64(i%Classes), r[0])
	}
	assert.NotEqual(t, rows[0][1:], rows[1][1:], "digits have distinct patterns")
}

func TestReadIDX(t *testing.T) {
	var images, labels bytes.Buffer
	require.NoError(t, binary.Write(&images, binary.BigEndian, [4]uint32{idxImagesMagic, 2, 2, 2}))
	images.Write([]byte{0, 255, 10, 20, 1, 2, 3, 4})
	require.NoError(t, binary.Write(&labels, binary.BigEndian, [2]uint32{idxLabelsMagic, 2}))
	labels.Write([]byte{7, 3})

	rows, err := ReadIDX(bytes.NewReader(images.Bytes()), bytes.NewReader(labels.Bytes()), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{7, 0, 255, 10, 20}, {3, 1, 2, 3, 4}}, rows)

	rows, err = ReadIDX(bytes.NewReader(images.Bytes()), bytes.NewReader(labels.Bytes()), 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	bad := append([]byte{0, 0, 0, 1}, images.Bytes()[4:]...)
	_, err = ReadIDX(bytes.NewReader(bad), bytes.NewReader(labels.Bytes()), 0)
	assert.ErrorContains(t, err, "invalid image magic number")

	short := images.Bytes()[:len(images.Bytes())-1]
	_, err = ReadIDX(bytes.NewReader(short), bytes.NewReader(labels.Bytes()), 0)
	assert.ErrorContains(t, err, "failed to read image 1")
}
