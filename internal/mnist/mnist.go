// Package mnist provides MNIST-style samples for densenet models.
//
// A raw row is a label followed by pixel intensities in [0, 255]:
//
//	[5, 0, 0, 12, ..., 0]
//
// Split turns raw rows into model inputs (pixels normalised to [0.01, 1.0])
// and one-hot targets.
package mnist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/born-ml/densenet/internal/parallel"
)

// Dataset dimensions.
const (
	ImageSide = 28
	Pixels    = ImageSide * ImageSide
	Classes   = 10
)

// ErrInvalidRow reports a malformed raw row.
var ErrInvalidRow = errors.New("mnist: invalid row")

// Options controls CSV loading.
type Options struct {
	MaxSamples int             // Maximum rows to keep (0 = all)
	Features   int             // Expected pixels per row (0 = Pixels)
	Parallel   parallel.Config // Fan-out used to parse rows
}

func (o Options) features() int {
	if o.Features == 0 {
		return Pixels
	}
	return o.Features
}

// Normalise maps a pixel intensity in [0, 255] to [0.01, 1.0].
func Normalise(v float64) float64 {
	return v/255*0.99 + 0.01
}

// OneHot returns a vector of length classes with a 1 at label.
func OneHot(label, classes int) ([]float64, error) {
	if label < 0 || label >= classes {
		return nil, fmt.Errorf("%w: label %d out of range [0, %d)", ErrInvalidRow, label, classes)
	}
	out := make([]float64, classes)
	out[label] = 1
	return out, nil
}

// LoadCSV reads raw rows from a CSV file. See ReadCSV.
func LoadCSV(path string, opts Options) ([][]float64, error) {
	//nolint:gosec // G304: dataset path comes from the user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV reads raw `label,px0,...,pxN` rows.
//
// A first record whose label field is not a number is treated as a header
// and skipped.
func ReadCSV(r io.Reader, opts Options) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	first := 1
	if len(records) > 0 {
		if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
			records = records[1:]
			first = 2
		}
	}
	if opts.MaxSamples > 0 && len(records) > opts.MaxSamples {
		records = records[:opts.MaxSamples]
	}

	width := opts.features() + 1
	rows := make([][]float64, len(records))
	err = parallel.ForErr(len(records), func(i int) error {
		rec := records[i]
		if len(rec) != width {
			return fmt.Errorf("%w: line %d has %d fields, want %d", ErrInvalidRow, i+first, len(rec), width)
		}
		row := make([]float64, width)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d, column %d: %w", ErrInvalidRow, i+first, j+1, err)
			}
			row[j] = v
		}
		rows[i] = row
		return nil
	}, opts.Parallel)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Split separates raw rows into normalised features and one-hot labels.
func Split(rows [][]float64, classes int, cfg parallel.Config) (x, y [][]float64, err error) {
	x = make([][]float64, len(rows))
	y = make([][]float64, len(rows))
	err = parallel.ForErr(len(rows), func(i int) error {
		row := rows[i]
		if len(row) < 2 {
			return fmt.Errorf("%w: row %d has no features", ErrInvalidRow, i)
		}
		label := row[0]
		if label != math.Trunc(label) {
			return fmt.Errorf("%w: row %d label %v is not an integer", ErrInvalidRow, i, label)
		}
		target, err := OneHot(int(label), classes)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		features := make([]float64, len(row)-1)
		for j, v := range row[1:] {
			features[j] = Normalise(v)
		}
		x[i], y[i] = features, target
		return nil
	}, cfg)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// Shuffle permutes rows in place with a seeded source.
func Shuffle(rows [][]float64, seed int64) {
	//nolint:gosec // dataset order is not security-critical
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
}

// Synthetic returns n raw rows of simple per-digit patterns, cycling through
// the labels. It lets the pipeline run without a dataset on disk; the images
// are not realistic digits.
func Synthetic(n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		label := i % Classes
		row := make([]float64, Pixels+1)
		row[0] = float64(label)

		// A horizontal band whose position encodes the digit.
		startRow := label * 2
		for r := startRow; r < startRow+8 && r < ImageSide; r++ {
			for c := 5; c < 23; c++ {
				row[1+r*ImageSide+c] = 204
			}
		}
		rows[i] = row
	}
	return rows
}
