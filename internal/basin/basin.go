// Package basin implements attractor basin segmentation (spec.md §4.3).
package basin

import "github.com/fieldsim/engine/internal/field"

// DepthThreshold is the minimum |v| an attractor must have for cells
// converging on it to be labelled, per spec.md §4.3 step 3.
const DepthThreshold = 0.3

// Map is the basin labelling of a field: labels[i] is a dense basin id in
// [0, Count), or -1 if the cell's attractor is too shallow.
type Map struct {
	Width, Height int
	Labels        []int32
	Count         int
}

const (
	unvisited = -1
	// flatTerminal marks a cell whose entire 8-neighbourhood is exactly
	// equal to its own value: a degenerate ascent termination, not a
	// genuine local maximum, so it never seeds a basin (spec.md §4.3's
	// "a constant field yields zero basins" case, and any flat patch
	// bounded only by equal neighbours).
	flatTerminal = -2
)

// Label segments f into attractor basins, per the algorithm contract in
// spec.md §4.3: greedy ascent to a local extremum (8-neighbourhood,
// toroidal, lowest row-major index breaking ties), union by shared
// terminus, dense id reassignment, shallow attractors labelled -1.
func Label(f *field.Field) *Map {
	n := f.N()
	total := n * n
	attractorOf := make([]int32, total)
	for i := range attractorOf {
		attractorOf[i] = unvisited
	}

	for i := 0; i < total; i++ {
		resolveAttractor(f, i, attractorOf)
	}

	idToLabel := make(map[int32]int32)
	nextLabel := int32(0)
	labels := make([]int32, total)
	for i := 0; i < total; i++ {
		attr := attractorOf[i]
		if attr == flatTerminal || abs32(f.AtIndex(attr)) < DepthThreshold {
			labels[i] = -1
			continue
		}
		lbl, ok := idToLabel[attr]
		if !ok {
			lbl = nextLabel
			idToLabel[attr] = lbl
			nextLabel++
		}
		labels[i] = lbl
	}

	return &Map{Width: n, Height: n, Labels: labels, Count: int(nextLabel)}
}

// resolveAttractor walks from cell i to its terminating local extremum,
// memoising every cell on the path (path compression) into attractorOf.
func resolveAttractor(f *field.Field, i int, attractorOf []int32) int32 {
	n := f.N()
	var path []int
	cur := i
	for {
		if attractorOf[cur] != unvisited {
			term := attractorOf[cur]
			for _, p := range path {
				attractorOf[p] = term
			}
			return term
		}
		path = append(path, cur)
		next, found := bestNeighbor(f, cur, n)
		if !found {
			term := int32(cur)
			if isFlatNeighborhood(f, cur, n) {
				term = flatTerminal
			}
			for _, p := range path {
				attractorOf[p] = term
			}
			return term
		}
		cur = next
	}
}

// isFlatNeighborhood reports whether every one of idx's 8 toroidal
// neighbours holds exactly idx's own value.
func isFlatNeighborhood(f *field.Field, idx, n int) bool {
	x, y := idx%n, idx/n
	v := f.AtIndex(idx)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := wrap(x+dx, n), wrap(y+dy, n)
			if f.AtIndex(ny*n+nx) != v {
				return false
			}
		}
	}
	return true
}

// bestNeighbor returns the 8-neighbour (toroidal) with the strictly
// greatest value, breaking ties by lowest row-major index, or
// found=false if no neighbour is strictly greater than the centre.
func bestNeighbor(f *field.Field, idx, n int) (best int, found bool) {
	x, y := idx%n, idx/n
	v := f.AtIndex(idx)
	bestVal := v
	best = -1
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := wrap(x+dx, n), wrap(y+dy, n)
			ni := ny*n + nx
			nv := f.AtIndex(ni)
			if nv > v && (best == -1 || nv > bestVal || (nv == bestVal && ni < best)) {
				best, bestVal = ni, nv
			}
		}
	}
	return best, best != -1
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Depths returns, for each basin id in [0, Count), the mean |v| of its
// member cells — the "avgBasinDepth" input to Signature (spec.md §4.4).
func (m *Map) Depths(f *field.Field) []float64 {
	sums := make([]float64, m.Count)
	counts := make([]int, m.Count)
	for i, lbl := range m.Labels {
		if lbl < 0 {
			continue
		}
		sums[lbl] += float64(abs32(f.AtIndex(i)))
		counts[lbl]++
	}
	depths := make([]float64, m.Count)
	for i := range depths {
		if counts[i] > 0 {
			depths[i] = sums[i] / float64(counts[i])
		}
	}
	return depths
}

// MeanDepth returns the mean of Depths, or 0 if there are no basins.
func (m *Map) MeanDepth(f *field.Field) float64 {
	depths := m.Depths(f)
	if len(depths) == 0 {
		return 0
	}
	var sum float64
	for _, d := range depths {
		sum += d
	}
	return sum / float64(len(depths))
}
