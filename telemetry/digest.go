package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Digest hashes a stream of observation values. Two runs that feed the same
// values in the same order produce the same sum, down to the float bits.
type Digest struct {
	h   *xxhash.Digest
	buf [8]byte
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// Float64 adds the exact bit pattern of v.
func (d *Digest) Float64(v float64) {
	d.Uint64(math.Float64bits(v))
}

// Int adds v.
func (d *Digest) Int(v int) {
	d.Uint64(uint64(int64(v)))
}

// Uint64 adds v.
func (d *Digest) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

// Bool adds b as a single byte.
func (d *Digest) Bool(b bool) {
	var v byte
	if b {
		v = 1
	}
	_, _ = d.h.Write([]byte{v})
}

// Text adds s.
func (d *Digest) Text(s string) {
	_, _ = d.h.WriteString(s)
}

// Sum64 returns the current hash.
func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}

// Hex returns the current hash as 16 hex digits.
func (d *Digest) Hex() string {
	return fmt.Sprintf("%016x", d.h.Sum64())
}

// Reset clears the digest.
func (d *Digest) Reset() {
	d.h.Reset()
}
