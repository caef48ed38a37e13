package mnist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// LoadIDX reads raw rows from a pair of IDX files, such as
// train-images-idx3-ubyte and train-labels-idx1-ubyte.
func LoadIDX(imagesPath, labelsPath string, maxSamples int) ([][]float64, error) {
	//nolint:gosec // G304: dataset path comes from the user
	images, err := os.Open(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open images: %w", err)
	}
	defer images.Close()

	//nolint:gosec // G304: dataset path comes from the user
	labels, err := os.Open(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer labels.Close()

	return ReadIDX(images, labels, maxSamples)
}

// ReadIDX reads raw rows from IDX image and label streams.
//
// IDX images:
//
//	magic number: 0x00000803 (2051)
//	number of images, rows, cols: 4 bytes each, big-endian
//	pixel data: unsigned bytes (0-255)
//
// IDX labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes, big-endian
//	label data: unsigned bytes (0-9)
func ReadIDX(images, labels io.Reader, maxSamples int) ([][]float64, error) {
	var header [4]uint32
	if err := binary.Read(images, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("invalid image magic number: got %d, want %d", header[0], idxImagesMagic)
	}
	numImages, imageSize := int(header[1]), int(header[2]*header[3])

	var labelHeader [2]uint32
	if err := binary.Read(labels, binary.BigEndian, &labelHeader); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if labelHeader[0] != idxLabelsMagic {
		return nil, fmt.Errorf("invalid label magic number: got %d, want %d", labelHeader[0], idxLabelsMagic)
	}
	if int(labelHeader[1]) != numImages {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", numImages, labelHeader[1])
	}

	n := numImages
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	labelBytes := make([]byte, n)
	if _, err := io.ReadFull(labels, labelBytes); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	rows := make([][]float64, n)
	pixels := make([]byte, imageSize)
	for i := range rows {
		if _, err := io.ReadFull(images, pixels); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		row := make([]float64, imageSize+1)
		row[0] = float64(labelBytes[i])
		for j, p := range pixels {
			row[j+1] = float64(p)
		}
		rows[i] = row
	}
	return rows, nil
}
