// Package metrics implements the absolute (APE) and relative (RPE) pose
// error metrics over a pair of matched trajectories.
//
// Both metrics are stateful one-shot computation units: construct, call
// ProcessData with a reference and an estimated trajectory, then query
// statistics. ProcessData may be called again to recompute; a failed call
// leaves the previously computed state intact.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	trajeval "github.com/milosgajdos/go-trajeval"
	"github.com/milosgajdos/go-trajeval/lie"
)

// reduce maps the relative pose error e to a scalar per the pose relation.
// clamped reports a rotation angle clamp (marginal input quality).
func reduce(rel trajeval.PoseRelation, e *mat.Dense) (val float64, clamped bool) {
	switch rel {
	case trajeval.TranslationPart, trajeval.PointDistance:
		return lie.TranslationNorm(e), false
	case trajeval.RotationPart:
		return lie.DeltaFrobenius(lie.SO3FromSE3(e)), false
	case trajeval.FullTransformation:
		return lie.DeltaFrobenius(e), false
	case trajeval.RotationAngleRad:
		return lie.RotationAngle(lie.SO3FromSE3(e))
	case trajeval.RotationAngleDeg:
		return lie.RotationAngleDeg(lie.SO3FromSE3(e))
	}
	// relations are validated at construction
	panic(fmt.Sprintf("metrics: unknown pose relation: %v", rel))
}

// errNotProcessed is the usage error returned by statistics queries on a
// metric that has no processed data yet.
func errNotProcessed() error {
	return fmt.Errorf("metric has no processed data, call ProcessData first")
}

func statistic(stats map[trajeval.StatisticsType]float64, t trajeval.StatisticsType) (float64, error) {
	if stats == nil {
		return 0, errNotProcessed()
	}
	s, ok := stats[t]
	if !ok {
		return 0, fmt.Errorf("invalid statistic: %v", t)
	}
	return s, nil
}

func statistics(stats map[trajeval.StatisticsType]float64) (map[trajeval.StatisticsType]float64, error) {
	if stats == nil {
		return nil, errNotProcessed()
	}
	out := make(map[trajeval.StatisticsType]float64, len(stats))
	for k, v := range stats {
		out[k] = v
	}
	return out, nil
}
