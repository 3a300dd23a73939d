package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldsim/engine/internal/signature"
)

func TestLogBoundedEviction(t *testing.T) {
	l := NewLog()
	for i := 0; i < LogCapacity+5; i++ {
		l.Append(StructuralEvent{ID: "x", Step: int64(i), Kind: BasinMerge})
	}
	require.Equal(t, LogCapacity, l.Len())
	all := l.All()
	require.Equal(t, int64(5), all[0].Step)
}

func TestDetectorFirstCallNoEvents(t *testing.T) {
	d := NewDetector()
	out := d.Detect(0, signature.Signature{BasinCount: 3})
	require.Empty(t, out)
}

func TestDetectorBasinMergeAndSplit(t *testing.T) {
	d := NewDetector()
	d.Detect(0, signature.Signature{BasinCount: 5})
	merged := d.Detect(1, signature.Signature{BasinCount: 3})
	require.Len(t, merged, 1)
	require.Equal(t, BasinMerge, merged[0].Kind)

	split := d.Detect(2, signature.Signature{BasinCount: 6})
	require.Len(t, split, 1)
	require.Equal(t, BasinSplit, split[0].Kind)
}

func TestDetectorCurvatureSpike(t *testing.T) {
	d := NewDetector()
	for i := 0; i < 5; i++ {
		d.Detect(int64(i), signature.Signature{GlobalCurvature: 0.1})
	}
	spike := d.Detect(5, signature.Signature{GlobalCurvature: 1.0})

	var found bool
	for _, e := range spike {
		if e.Kind == CurvatureSpike {
			found = true
		}
	}
	require.True(t, found)
}

func TestDetectorPhaseTransition(t *testing.T) {
	d := NewDetector()
	d.Detect(0, signature.Signature{TensionVariance: 0.1})
	out := d.Detect(1, signature.Signature{TensionVariance: 0.3})

	var found bool
	for _, e := range out {
		if e.Kind == PhaseTransition {
			found = true
		}
	}
	require.True(t, found)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "basin_merge", BasinMerge.String())
	require.Equal(t, "phase_transition", PhaseTransition.String())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteText(&buf, []StructuralEvent{{Step: 7, Description: "basin count dropped"}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(buf.String(), "t=7 | basin count dropped"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, []StructuralEvent{{ID: "a", Step: 1, Kind: BasinMerge, Description: "x"}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"kind":"basin_merge"`)
}
