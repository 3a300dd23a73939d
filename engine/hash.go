package engine

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/fieldsim/engine/internal/field"
)

// FrameHash computes the spec's deterministic fingerprint of (step, grid):
// FNV-1a over the step's 8 bytes followed by the grid's IEEE-754 float32
// byte representation, rendered as lowercase hex, 8 characters wide
// (spec.md §6).
func FrameHash(step int64, f *field.Field) string {
	h := fnv.New32a()

	var stepBuf [8]byte
	binary.LittleEndian.PutUint64(stepBuf[:], uint64(step))
	h.Write(stepBuf[:])

	var cellBuf [4]byte
	for _, v := range f.Values() {
		binary.LittleEndian.PutUint32(cellBuf[:], math.Float32bits(v))
		h.Write(cellBuf[:])
	}

	sum := h.Sum32()
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = hexDigits[sum&0xf]
		sum >>= 4
	}
	return string(out)
}
