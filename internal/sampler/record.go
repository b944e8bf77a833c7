package sampler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// RecordSize is the wire size of a Record.
const RecordSize = 8

var ErrShortRecord = errors.New("sampler: short record")

// Record is one sample: a running counter and a 1 Hz sine of the
// monotonic clock.
//
// Wire layout, little-endian:
//
//	0..3  Counter int32
//	4..7  Sample  float32 (IEEE 754)
type Record struct {
	Counter int32
	Sample  float32
}

// AppendBinary appends the wire form of r to b.
func (r Record) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, uint32(r.Counter))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Sample))
	return b, nil
}

// MarshalBinary returns the 8-byte wire form of r.
func (r Record) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, RecordSize))
}

// UnmarshalBinary decodes the first RecordSize bytes of b.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return fmt.Errorf("%w: %d bytes", ErrShortRecord, len(b))
	}
	r.Counter = int32(binary.LittleEndian.Uint32(b[0:4]))
	r.Sample = math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
	return nil
}
