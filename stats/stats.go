package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	trajeval "github.com/milosgajdos/go-trajeval"
)

// Compute reduces the error series errs to the summary statistic t.
// It returns error if errs is empty or t is not a known statistic.
func Compute(t trajeval.StatisticsType, errs []float64) (float64, error) {
	if len(errs) == 0 {
		return 0, fmt.Errorf("no errors to compute statistics on")
	}

	switch t {
	case trajeval.RMSE:
		return math.Sqrt(floats.Dot(errs, errs) / float64(len(errs))), nil
	case trajeval.Mean:
		return stat.Mean(errs, nil), nil
	case trajeval.Median:
		return median(errs), nil
	case trajeval.Std:
		return stat.PopStdDev(errs, nil), nil
	case trajeval.Min:
		return floats.Min(errs), nil
	case trajeval.Max:
		return floats.Max(errs), nil
	case trajeval.SSE:
		return floats.Dot(errs, errs), nil
	}

	return 0, fmt.Errorf("invalid statistic: %v", t)
}

// All reduces the error series errs to every summary statistic.
// It returns error if errs is empty.
func All(errs []float64) (map[trajeval.StatisticsType]float64, error) {
	if len(errs) == 0 {
		return nil, fmt.Errorf("no errors to compute statistics on")
	}

	all := make(map[trajeval.StatisticsType]float64)
	for _, t := range []trajeval.StatisticsType{
		trajeval.RMSE,
		trajeval.Mean,
		trajeval.Median,
		trajeval.Std,
		trajeval.Min,
		trajeval.Max,
		trajeval.SSE,
	} {
		s, err := Compute(t, errs)
		if err != nil {
			return nil, err
		}
		all[t] = s
	}

	return all, nil
}

// median returns the middle order statistic of errs, averaging the two
// middle elements when the length is even.
func median(errs []float64) float64 {
	sorted := make([]float64, len(errs))
	copy(sorted, errs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
