package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	trajeval "github.com/milosgajdos/go-trajeval"
	"github.com/milosgajdos/go-trajeval/lie"
	"github.com/milosgajdos/go-trajeval/matrix"
	"github.com/milosgajdos/go-trajeval/stats"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// APE is the absolute pose error metric: a global consistency measure
// comparing matched poses of two trajectories in the shared inertial frame.
type APE struct {
	// relation selects the measured component of the pose error
	relation trajeval.PoseRelation
	// errors is the computed error series, one entry per pose
	errors []float64
	// stats caches all summary statistics of the error series
	stats map[trajeval.StatisticsType]float64
	// clamped counts rotation angles recovered by clamping
	clamped int
}

// NewAPE creates a new APE metric for the given pose relation.
// It returns error if the relation is not a known pose relation.
func NewAPE(relation trajeval.PoseRelation) (*APE, error) {
	if !relation.Valid() {
		return nil, fmt.Errorf("invalid pose relation: %v", relation)
	}

	return &APE{relation: relation}, nil
}

// Relation returns the configured pose relation.
func (a *APE) Relation() trajeval.PoseRelation {
	return a.relation
}

// ProcessData computes the APE error series from a reference and an
// estimated trajectory. The trajectories must be equal length and index
// aligned (see the sync package); align them beforehand if desired.
// Prior results are overwritten on success and left intact on failure.
func (a *APE) ProcessData(ref, est *trajectory.Trajectory) error {
	if ref == nil || est == nil {
		return fmt.Errorf("invalid trajectory: %v, %v", ref, est)
	}

	if ref.Len() != est.Len() {
		return fmt.Errorf("mismatched trajectory lengths: %d != %d, synchronize the trajectories first", ref.Len(), est.Len())
	}

	var errs []float64
	clamped := 0
	if a.relation == trajeval.PointDistance {
		// point distances need no orientation data: reduce the position
		// difference rows directly
		diff := new(mat.Dense)
		diff.Sub(est.Positions(), ref.Positions())
		errs = matrix.RowNorms(diff)
	} else {
		errs = make([]float64, ref.Len())
		for i := 0; i < ref.Len(); i++ {
			e := lie.Relative(est.Pose(i), ref.Pose(i))
			val, cl := reduce(a.relation, e)
			errs[i] = val
			if cl {
				clamped++
			}
		}
	}

	st, err := stats.All(errs)
	if err != nil {
		return err
	}

	a.errors = errs
	a.stats = st
	a.clamped = clamped

	return nil
}

// Statistic returns one summary statistic of the computed error series.
// It returns error if ProcessData has not been called successfully yet.
func (a *APE) Statistic(t trajeval.StatisticsType) (float64, error) {
	return statistic(a.stats, t)
}

// Statistics returns all summary statistics of the computed error series.
// It returns error if ProcessData has not been called successfully yet.
func (a *APE) Statistics() (map[trajeval.StatisticsType]float64, error) {
	return statistics(a.stats)
}

// Errors returns the computed error series. It returns nil if ProcessData
// has not been called successfully yet.
func (a *APE) Errors() []float64 {
	if a.errors == nil {
		return nil
	}
	out := make([]float64, len(a.errors))
	copy(out, a.errors)
	return out
}

// Clamped returns the number of rotation angles that were recovered by
// clamping during the last ProcessData call. A non-zero count indicates
// marginal numerical quality of the input poses.
func (a *APE) Clamped() int {
	return a.clamped
}

// String implements the Stringer interface.
func (a *APE) String() string {
	return fmt.Sprintf("APE{relation: %v}", a.relation)
}
