package serial

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeFloat32 packs values as little-endian float32 and base64-encodes them.
//
// Values are narrowed to float32 precision.
func EncodeFloat32(values []float64) string {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeBytes base64-decodes an encoded blob.
func DecodeBytes(encoded string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode weight blob: %w", err)
	}
	return buf, nil
}

// Float32s unpacks little-endian float32 values from buf.
//
// len(buf) must be a multiple of 4.
func Float32s(buf []byte) ([]float64, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("weight blob length %d is not a multiple of 4", len(buf))
	}
	out := make([]float64, len(buf)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:])))
	}
	return out, nil
}
