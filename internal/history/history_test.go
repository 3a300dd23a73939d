package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/params"
)

func snap(step int64) FrameSnapshot {
	return FrameSnapshot{Step: step, Params: params.Default()}
}

func TestRecordAndLatest(t *testing.T) {
	h := New()
	h.Record(snap(0))
	h.Record(snap(1))

	latest, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, int64(1), latest.Step)
	require.Equal(t, 2, h.Len())
}

func TestRingBufferEvictsOldest(t *testing.T) {
	h := New()
	for i := 0; i < Capacity+10; i++ {
		h.Record(snap(int64(i)))
	}
	require.Equal(t, Capacity, h.Len())

	oldest, ok := h.SeekToFrame(0)
	require.True(t, ok)
	require.Equal(t, int64(10), oldest.Step)
}

func TestStepBackwardAndForward(t *testing.T) {
	h := New()
	for i := 0; i < 5; i++ {
		h.Record(snap(int64(i)))
	}

	s, ok := h.StepBackward()
	require.True(t, ok)
	require.Equal(t, int64(4), s.Step)
	require.True(t, h.Playing())

	s, _ = h.StepBackward()
	require.Equal(t, int64(3), s.Step)

	s, _ = h.StepForward()
	require.Equal(t, int64(4), s.Step)

	s, _ = h.StepForward()
	require.Equal(t, int64(4), s.Step)
	require.False(t, h.Playing())
}

func TestSeekClampsOutOfRange(t *testing.T) {
	h := New()
	for i := 0; i < 5; i++ {
		h.Record(snap(int64(i)))
	}

	s, ok := h.SeekToFrame(999)
	require.True(t, ok)
	require.Equal(t, int64(4), s.Step)

	s, ok = h.SeekToFrame(-5)
	require.True(t, ok)
	require.Equal(t, int64(0), s.Step)
}

func TestExitPlaybackSnapsToLiveHead(t *testing.T) {
	h := New()
	for i := 0; i < 5; i++ {
		h.Record(snap(int64(i)))
	}
	h.SeekToFrame(0)
	require.True(t, h.Playing())

	h.ExitPlayback()
	require.False(t, h.Playing())
}

func TestResetClearsHistory(t *testing.T) {
	h := New()
	h.Record(snap(0))
	h.Reset()
	require.Equal(t, 0, h.Len())
	_, ok := h.Latest()
	require.False(t, ok)
}
