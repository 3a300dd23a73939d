package engine

import "github.com/fieldsim/engine/internal/params"

// BatchSpec is the spec.md §6 batch format: sufficient to reproduce a run
// bit-identically.
type BatchSpec struct {
	Params    params.Parameters `json:"params"`
	Steps     int               `json:"steps"`
	Seed      uint32            `json:"seed"`
	GridSize  int               `json:"gridSize"`
	Timestamp int64             `json:"timestamp"`
}

// FrameHashRecord pairs a step with its frame hash, the per-step record
// RunBatch returns.
type FrameHashRecord struct {
	Step int64
	Hash string
}

// RunBatch reproduces a run from a BatchSpec in memory (no disk-backed
// replay log — persistence is a Non-goal), returning the per-step frame
// hashes for comparison against a recorded run.
func RunBatch(spec BatchSpec) []FrameHashRecord {
	p := spec.Params
	if spec.GridSize > 0 {
		p.GridSize = spec.GridSize
	}
	e := New(spec.Seed, p)

	out := make([]FrameHashRecord, 0, spec.Steps)
	for i := 0; i < spec.Steps; i++ {
		res := e.StepOnce()
		out = append(out, FrameHashRecord{Step: res.Step, Hash: res.Hash})
	}
	return out
}
