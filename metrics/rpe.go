package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	trajeval "github.com/milosgajdos/go-trajeval"
	"github.com/milosgajdos/go-trajeval/lie"
	"github.com/milosgajdos/go-trajeval/pairs"
	"github.com/milosgajdos/go-trajeval/stats"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// RPE is the relative pose error metric: a local consistency measure
// comparing the relative motion between pose pairs separated by a delta.
type RPE struct {
	// relation selects the measured component of the pose error
	relation trajeval.PoseRelation
	// delta is the pairing distance
	delta float64
	// unit is the unit of the pairing distance
	unit trajeval.Unit
	// relTol is the relative matching tolerance for all-pairs mode
	relTol float64
	// allPairs selects all-pairs instead of consecutive pairing
	allPairs bool
	// ids are the index pairs used by the last computation
	ids []pairs.ID
	// errors is the computed error series, one entry per pose pair
	errors []float64
	// stats caches all summary statistics of the error series
	stats map[trajeval.StatisticsType]float64
	// clamped counts rotation angles recovered by clamping
	clamped int
}

// NewRPE creates a new RPE metric. delta and unit define the pairing
// distance between the compared pose pairs; allPairs selects the O(n^2)
// all-pairs mode instead of a consecutive chain of pairs. relTol is the
// relative delta matching tolerance used by all-pairs mode with continuous
// units; a non-positive relTol falls back to pairs.DefaultRelTol.
// It returns error if either of the following conditions is met:
//   - relation or unit is invalid
//   - delta is not positive, or not integer valued for the frames unit
func NewRPE(relation trajeval.PoseRelation, delta float64, unit trajeval.Unit, relTol float64, allPairs bool) (*RPE, error) {
	if !relation.Valid() {
		return nil, fmt.Errorf("invalid pose relation: %v", relation)
	}

	if !unit.Valid() {
		return nil, fmt.Errorf("invalid delta unit: %v", unit)
	}

	if delta <= 0 {
		return nil, fmt.Errorf("invalid delta: %f", delta)
	}

	if unit == trajeval.Frames && delta != math.Trunc(delta) {
		return nil, fmt.Errorf("delta must be integer valued for unit %v: %f", unit, delta)
	}

	if relTol <= 0 {
		relTol = pairs.DefaultRelTol
	}

	return &RPE{
		relation: relation,
		delta:    delta,
		unit:     unit,
		relTol:   relTol,
		allPairs: allPairs,
	}, nil
}

// Relation returns the configured pose relation.
func (r *RPE) Relation() trajeval.PoseRelation {
	return r.relation
}

// ProcessData computes the RPE error series from a reference and an
// estimated trajectory. Pose pairs are selected on the reference per the
// configured delta. The trajectories must be equal length and index aligned.
// Prior results are overwritten on success and left intact on failure.
func (r *RPE) ProcessData(ref, est *trajectory.Trajectory) error {
	if ref == nil || est == nil {
		return fmt.Errorf("invalid trajectory: %v, %v", ref, est)
	}

	if ref.Len() != est.Len() {
		return fmt.Errorf("mismatched trajectory lengths: %d != %d, synchronize the trajectories first", ref.Len(), est.Len())
	}

	ids, err := pairs.ForUnit(ref, r.delta, r.unit, r.relTol, r.allPairs)
	if err != nil {
		return err
	}

	errs := make([]float64, len(ids))
	clamped := 0
	for k, id := range ids {
		if r.relation == trajeval.PointDistance {
			// compare the delta translation norms directly: meaningful
			// even for unoriented data such as GPS tracks
			dRef := new(mat.VecDense)
			dRef.SubVec(ref.Position(id.J), ref.Position(id.I))
			dEst := new(mat.VecDense)
			dEst.SubVec(est.Position(id.J), est.Position(id.I))
			errs[k] = math.Abs(mat.Norm(dEst, 2) - mat.Norm(dRef, 2))
			continue
		}

		deltaRef := lie.Relative(ref.Pose(id.I), ref.Pose(id.J))
		deltaEst := lie.Relative(est.Pose(id.I), est.Pose(id.J))
		e := lie.Relative(deltaEst, deltaRef)

		val, cl := reduce(r.relation, e)
		errs[k] = val
		if cl {
			clamped++
		}
	}

	st, err := stats.All(errs)
	if err != nil {
		return err
	}

	r.ids = ids
	r.errors = errs
	r.stats = st
	r.clamped = clamped

	return nil
}

// Statistic returns one summary statistic of the computed error series.
// It returns error if ProcessData has not been called successfully yet.
func (r *RPE) Statistic(t trajeval.StatisticsType) (float64, error) {
	return statistic(r.stats, t)
}

// Statistics returns all summary statistics of the computed error series.
// It returns error if ProcessData has not been called successfully yet.
func (r *RPE) Statistics() (map[trajeval.StatisticsType]float64, error) {
	return statistics(r.stats)
}

// Errors returns the computed error series. It returns nil if ProcessData
// has not been called successfully yet.
func (r *RPE) Errors() []float64 {
	if r.errors == nil {
		return nil
	}
	out := make([]float64, len(r.errors))
	copy(out, r.errors)
	return out
}

// DeltaIDs returns the index pairs used by the last computation, parallel to
// the error series. It returns nil if ProcessData has not been called
// successfully yet.
func (r *RPE) DeltaIDs() []pairs.ID {
	if r.ids == nil {
		return nil
	}
	out := make([]pairs.ID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Clamped returns the number of rotation angles that were recovered by
// clamping during the last ProcessData call.
func (r *RPE) Clamped() int {
	return r.clamped
}

// String implements the Stringer interface.
func (r *RPE) String() string {
	mode := "consecutive"
	if r.allPairs {
		mode = "all pairs"
	}
	return fmt.Sprintf("RPE{relation: %v, delta: %g %v, mode: %s}", r.relation, r.delta, r.unit, mode)
}
