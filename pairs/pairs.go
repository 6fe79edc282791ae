package pairs

import (
	"fmt"
	"math"

	trajeval "github.com/milosgajdos/go-trajeval"
	"github.com/milosgajdos/go-trajeval/lie"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// DefaultRelTol is the conventional relative matching tolerance for
// all-pairs selection with continuous delta units: the accepted deviation
// from the requested delta is DefaultRelTol * delta.
const DefaultRelTol = 0.1

// ID is a pair of trajectory indices i < j used as the basis of an RPE sample
type ID struct {
	// I is the first pose index
	I int
	// J is the second pose index
	J int
}

// ByIndex selects index pairs separated by delta frames from a trajectory of
// n poses. In consecutive mode the pairs form a non-overlapping chain
// (0, d), (d, 2d), ...; with allPairs every pair (i, i+d) is selected.
// It returns error if no pair fits into the trajectory.
func ByIndex(n, delta int, allPairs bool) ([]ID, error) {
	if n < 2 {
		return nil, fmt.Errorf("at least 2 poses required, got %d", n)
	}
	if delta < 1 {
		return nil, fmt.Errorf("invalid frame delta: %d", delta)
	}

	var ids []ID
	if allPairs {
		for i := 0; i+delta < n; i++ {
			ids = append(ids, ID{I: i, J: i + delta})
		}
	} else {
		for i := 0; i+delta < n; i += delta {
			ids = append(ids, ID{I: i, J: i + delta})
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("delta %d frames exceeds trajectory length %d", delta, n)
	}
	return ids, nil
}

// ByPath selects index pairs separated by delta meters of accumulated path
// distance. tol is the accepted absolute deviation in all-pairs mode.
// It returns error if the delta exceeds the trajectory path length.
func ByPath(tr *trajectory.Trajectory, delta, tol float64, allPairs bool) ([]ID, error) {
	if err := checkTraj(tr, delta); err != nil {
		return nil, err
	}
	ids := fromAccumulated(tr.Distances(), delta, tol, allPairs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("delta %f m exceeds trajectory path length %f m", delta, tr.PathLength())
	}
	return ids, nil
}

// ByTime selects index pairs separated by delta seconds of elapsed time.
// tol is the accepted absolute deviation in all-pairs mode.
// It returns error if the delta exceeds the trajectory duration.
func ByTime(tr *trajectory.Trajectory, delta, tol float64, allPairs bool) ([]ID, error) {
	if err := checkTraj(tr, delta); err != nil {
		return nil, err
	}

	stamps := tr.Timestamps()
	elapsed := make([]float64, len(stamps))
	for i := range stamps {
		elapsed[i] = stamps[i] - stamps[0]
	}

	ids := fromAccumulated(elapsed, delta, tol, allPairs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("delta %f s exceeds trajectory duration %f s", delta, tr.Duration())
	}
	return ids, nil
}

// ByAngle selects index pairs separated by delta accumulated rotation,
// in radians or degrees. tol is the accepted absolute deviation in
// all-pairs mode. It returns error if the delta exceeds the accumulated
// trajectory rotation.
func ByAngle(tr *trajectory.Trajectory, delta, tol float64, allPairs, degrees bool) ([]ID, error) {
	if err := checkTraj(tr, delta); err != nil {
		return nil, err
	}

	angles := tr.RotationAngles(degrees)
	ids := fromAccumulated(angles, delta, tol, allPairs)
	if len(ids) == 0 {
		unit := "rad"
		if degrees {
			unit = "deg"
		}
		return nil, fmt.Errorf("delta %f %s exceeds accumulated trajectory rotation %f %s", delta, unit, angles[len(angles)-1], unit)
	}
	return ids, nil
}

// ForUnit selects index pairs for the given delta and unit. relTol is the
// relative matching tolerance for all-pairs mode with continuous units;
// a non-positive relTol falls back to DefaultRelTol. Frame deltas must be
// integer valued.
func ForUnit(tr *trajectory.Trajectory, delta float64, unit trajeval.Unit, relTol float64, allPairs bool) ([]ID, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("invalid delta unit: %v", unit)
	}

	if unit == trajeval.Frames {
		if delta != math.Trunc(delta) {
			return nil, fmt.Errorf("delta must be integer valued for unit %v: %f", unit, delta)
		}
		if tr == nil {
			return nil, fmt.Errorf("invalid trajectory: %v", tr)
		}
		return ByIndex(tr.Len(), int(delta), allPairs)
	}

	if relTol <= 0 {
		relTol = DefaultRelTol
	}
	tol := relTol * delta

	switch unit {
	case trajeval.Meters:
		return ByPath(tr, delta, tol, allPairs)
	case trajeval.Seconds:
		return ByTime(tr, delta, tol, allPairs)
	case trajeval.Radians:
		return ByAngle(tr, delta, tol, allPairs, false)
	case trajeval.Degrees:
		return ByAngle(tr, delta, tol, allPairs, true)
	}

	return nil, fmt.Errorf("invalid delta unit: %v", unit)
}

// ByMotion returns the indices of the poses that moved at least distThresh
// meters or rotated at least angleThresh (radians, or degrees if degrees is
// set) since the previously kept pose. The first pose is always kept.
func ByMotion(tr *trajectory.Trajectory, distThresh, angleThresh float64, degrees bool) ([]int, error) {
	if tr == nil {
		return nil, fmt.Errorf("invalid trajectory: %v", tr)
	}
	if distThresh < 0 || angleThresh < 0 {
		return nil, fmt.Errorf("invalid motion thresholds: %f m, %f", distThresh, angleThresh)
	}

	ids := []int{0}
	prev := tr.Pose(0)
	for i := 1; i < tr.Len(); i++ {
		cur := tr.Pose(i)
		rel := lie.Relative(prev, cur)

		var angle float64
		if degrees {
			angle, _ = lie.RotationAngleDeg(lie.SO3FromSE3(rel))
		} else {
			angle, _ = lie.RotationAngle(lie.SO3FromSE3(rel))
		}

		if lie.TranslationNorm(rel) >= distThresh || angle >= angleThresh {
			ids = append(ids, i)
			prev = cur
		}
	}

	return ids, nil
}

// fromAccumulated selects pairs over a monotonically non-decreasing
// accumulated value series. In consecutive mode a chain of non-overlapping
// pairs is built greedily, each advancing until the accumulated value since
// the last selected index reaches the delta. In all-pairs mode every index is
// paired with its nearest candidate within tol of the delta.
func fromAccumulated(acc []float64, delta, tol float64, allPairs bool) []ID {
	var ids []ID

	if allPairs {
		for i := 0; i < len(acc)-1; i++ {
			best, bestDiff := -1, math.Inf(1)
			for j := i + 1; j < len(acc); j++ {
				diff := math.Abs(acc[j] - acc[i] - delta)
				if diff < bestDiff {
					best, bestDiff = j, diff
				}
			}
			if best >= 0 && bestDiff <= tol {
				ids = append(ids, ID{I: i, J: best})
			}
		}
		return ids
	}

	last := 0
	for i := 1; i < len(acc); i++ {
		if acc[i]-acc[last] >= delta {
			ids = append(ids, ID{I: last, J: i})
			last = i
		}
	}
	return ids
}

func checkTraj(tr *trajectory.Trajectory, delta float64) error {
	if tr == nil {
		return fmt.Errorf("invalid trajectory: %v", tr)
	}
	if tr.Len() < 2 {
		return fmt.Errorf("at least 2 poses required, got %d", tr.Len())
	}
	if delta <= 0 {
		return fmt.Errorf("invalid delta: %f", delta)
	}
	return nil
}
