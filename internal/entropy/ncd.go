package entropy

import (
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zstd"
)

// gapHistogramBytes serializes inter-sample gaps τ into a fixed-width
// byte encoding suitable for compression-based comparison: each gap,
// in sample order, as a little-endian float64. NCD operates on these
// gap bytes, not the raw samples themselves; the gaps are not binned
// into a histogram first.
func gapHistogramBytes(dts []float64) []byte {
	buf := make([]byte, 0, len(dts)*8)
	for _, d := range dts {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(d))
		buf = append(buf, b[:]...)
	}
	return buf
}

type ncdCompressor struct {
	enc *zstd.Encoder
}

func newNCDCompressor() (*ncdCompressor, error) {
	// Zstd level 1; SpeedFastest is klauspost/compress's level-1
	// equivalent.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &ncdCompressor{enc: enc}, nil
}

func (c *ncdCompressor) compressedLen(b []byte) int {
	return len(c.enc.EncodeAll(b, nil))
}

// ncd computes the Normalized Compression Distance between x and y:
// (C(xy) - min(C(x),C(y))) / max(C(x),C(y)).
func (c *ncdCompressor) ncd(x, y []byte) float64 {
	cx := c.compressedLen(x)
	cy := c.compressedLen(y)
	xy := append(append([]byte{}, x...), y...)
	cxy := c.compressedLen(xy)

	minC := cx
	if cy < minC {
		minC = cy
	}
	maxC := cx
	if cy > maxC {
		maxC = cy
	}
	if maxC == 0 {
		return 0
	}
	return float64(cxy-minC) / float64(maxC)
}

func (c *ncdCompressor) Close() error {
	return c.enc.Close()
}
