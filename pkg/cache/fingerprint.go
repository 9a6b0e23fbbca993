package cache

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// fingerprintChunk is the number of values hashed per write.
const fingerprintChunk = 512

// Fingerprint hashes a scoring input: the threshold and every value, by
// their IEEE 754 bits. Equal inputs give equal keys; 0 and -0 differ.
func Fingerprint(values []float64, threshold float64) uint64 {
	digest := xxhash.New()
	buf := make([]byte, 0, 8*fingerprintChunk)

	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(threshold))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(values)))

	for _, v := range values {
		if len(buf) == cap(buf) {
			_, _ = digest.Write(buf)
			buf = buf[:0]
		}

		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	_, _ = digest.Write(buf)

	return digest.Sum64()
}
