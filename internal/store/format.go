package store

import (
	"errors"
	"time"

	"github.com/born-ml/densenet/internal/config"
	"github.com/born-ml/densenet/internal/model"
)

// Format constants.
const (
	MagicBytes    = "DNET"
	FormatVersion = 1
	ChecksumSize  = 32
	fixedHeader   = 4 + 4 + 8 + ChecksumSize

	// MaxPayloadSize bounds the JSON payload accepted by Read.
	MaxPayloadSize = 1 << 30
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrPayloadTooLarge    = errors.New("payload exceeds maximum size")
)

// Snapshot is everything needed to restore a trained model.
type Snapshot struct {
	FormatVersion   int                     `json:"formatVersion"`
	CreatedAt       time.Time               `json:"createdAt"`
	Topology        model.Topology          `json:"topology"`
	Weights         model.WeightData        `json:"weights"`
	Hyperparameters *config.Hyperparameters `json:"hyperparameters,omitempty"`
	Metadata        map[string]string       `json:"metadata,omitempty"`
}

// FromModel captures m. hyper may be nil.
func FromModel(m *model.Model, hyper *config.Hyperparameters) Snapshot {
	return Snapshot{
		FormatVersion:   FormatVersion,
		CreatedAt:       time.Now().UTC(),
		Topology:        m.Topology(),
		Weights:         m.EncodedWeights(),
		Hyperparameters: hyper,
	}
}

// Model rebuilds a model from the snapshot.
func (s Snapshot) Model() (*model.Model, error) {
	m := model.New()
	if err := m.LoadTopology(s.Topology); err != nil {
		return nil, err
	}
	if err := m.LoadEncodedWeights(s.Weights); err != nil {
		return nil, err
	}
	return m, nil
}
