package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Read decodes a snapshot from r and verifies its checksum.
func Read(r io.Reader) (Snapshot, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return Snapshot{}, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read payload size: %w", err)
	}
	if size > MaxPayloadSize {
		return Snapshot{}, ErrPayloadTooLarge
	}

	var stored [ChecksumSize]byte
	if _, err := io.ReadFull(r, stored[:]); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read checksum: %w", err)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return s, nil
}

// Load reads a snapshot file written by Save.
func Load(path string) (Snapshot, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
