package sync

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-trajeval/trajectory"
)

// Associate matches the poses of two trajectories by their timestamps.
// For every timestamp of the shorter trajectory the closest not yet consumed
// timestamp of the other trajectory is selected; the pair is accepted only if
// their absolute difference is at most maxDiff seconds. Each timestamp of
// either trajectory is consumed at most once and the original time ordering
// is preserved.
//
// Greedy nearest neighbor matching is sufficient here since benchmark
// timestamp grids are monotonic and sparse; no global assignment is needed.
//
// It returns two new, equal-length, index-aligned trajectories in the
// (ref, est) argument order. It returns error if no pair satisfies maxDiff.
func Associate(ref, est *trajectory.Trajectory, maxDiff float64) (*trajectory.Trajectory, *trajectory.Trajectory, error) {
	if ref == nil || est == nil {
		return nil, nil, fmt.Errorf("invalid trajectory: %v, %v", ref, est)
	}

	if maxDiff < 0 {
		return nil, nil, fmt.Errorf("invalid max. time diff: %f", maxDiff)
	}

	// match from the shorter trajectory into the longer one
	base, other := ref, est
	swapped := false
	if est.Len() < ref.Len() {
		base, other = est, ref
		swapped = true
	}

	baseStamps := base.Timestamps()
	otherStamps := other.Timestamps()

	var baseIDs, otherIDs []int
	j := 0
	for i, stamp := range baseStamps {
		// advance while the next candidate is at least as close;
		// timestamps are strictly increasing so this never backtracks
		for j+1 < len(otherStamps) &&
			math.Abs(otherStamps[j+1]-stamp) <= math.Abs(otherStamps[j]-stamp) {
			j++
		}
		if math.Abs(otherStamps[j]-stamp) > maxDiff {
			continue
		}
		baseIDs = append(baseIDs, i)
		otherIDs = append(otherIDs, j)
		j++
		if j >= len(otherStamps) {
			break
		}
	}

	if len(baseIDs) == 0 {
		return nil, nil, fmt.Errorf("found no matching timestamps with max. time diff %f (s)", maxDiff)
	}

	baseOut, err := base.ReduceToIDs(baseIDs)
	if err != nil {
		return nil, nil, err
	}
	otherOut, err := other.ReduceToIDs(otherIDs)
	if err != nil {
		return nil, nil, err
	}

	if swapped {
		return otherOut, baseOut, nil
	}
	return baseOut, otherOut, nil
}
