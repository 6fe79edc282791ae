package trajeval

import (
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// PoseRelation selects which component of a relative pose difference is measured
type PoseRelation int

const (
	// TranslationPart measures the Euclidean norm of the translation component
	TranslationPart PoseRelation = iota
	// RotationPart measures the Frobenius norm of the rotation difference to identity
	RotationPart
	// RotationAngleRad measures the rotation angle in radians
	RotationAngleRad
	// RotationAngleDeg measures the rotation angle in degrees
	RotationAngleDeg
	// FullTransformation measures the Frobenius norm of the full transform difference to identity
	FullTransformation
	// PointDistance measures the Euclidean distance between points, independent of orientation data
	PointDistance
)

// String implements the Stringer interface.
func (r PoseRelation) String() string {
	switch r {
	case TranslationPart:
		return "translation part"
	case RotationPart:
		return "rotation part"
	case RotationAngleRad:
		return "rotation angle in radians"
	case RotationAngleDeg:
		return "rotation angle in degrees"
	case FullTransformation:
		return "full transformation"
	case PointDistance:
		return "point distance"
	}
	return "unknown pose relation"
}

// Valid returns true if r is a known pose relation.
func (r PoseRelation) Valid() bool {
	return r >= TranslationPart && r <= PointDistance
}

// Unit is a unit of the relative delta between two trajectory poses
type Unit int

const (
	// Frames is a delta expressed as a pose index count
	Frames Unit = iota
	// Meters is a delta expressed as accumulated path distance
	Meters
	// Seconds is a delta expressed as elapsed timestamp difference
	Seconds
	// Radians is a delta expressed as accumulated rotation in radians
	Radians
	// Degrees is a delta expressed as accumulated rotation in degrees
	Degrees
)

// String implements the Stringer interface.
func (u Unit) String() string {
	switch u {
	case Frames:
		return "frames"
	case Meters:
		return "m"
	case Seconds:
		return "s"
	case Radians:
		return "rad"
	case Degrees:
		return "deg"
	}
	return "unknown unit"
}

// Valid returns true if u is a known delta unit.
func (u Unit) Valid() bool {
	return u >= Frames && u <= Degrees
}

// StatisticsType is a summary statistic over an error series
type StatisticsType int

const (
	// RMSE is the root mean squared error
	RMSE StatisticsType = iota
	// Mean is the arithmetic mean
	Mean
	// Median is the middle order statistic
	Median
	// Std is the population standard deviation
	Std
	// Min is the smallest error
	Min
	// Max is the largest error
	Max
	// SSE is the sum of squared errors
	SSE
)

// String implements the Stringer interface.
func (s StatisticsType) String() string {
	switch s {
	case RMSE:
		return "rmse"
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Std:
		return "std"
	case Min:
		return "min"
	case Max:
		return "max"
	case SSE:
		return "sse"
	}
	return "unknown statistic"
}

// Valid returns true if s is a known statistic.
func (s StatisticsType) Valid() bool {
	return s >= RMSE && s <= SSE
}

// Metric is a pose error metric over a pair of matched trajectories
type Metric interface {
	// ProcessData computes the metric error series from a reference and an estimated trajectory
	ProcessData(ref, est *trajectory.Trajectory) error
	// Statistic returns one summary statistic of the computed error series
	Statistic(t StatisticsType) (float64, error)
	// Statistics returns all summary statistics of the computed error series
	Statistics() (map[StatisticsType]float64, error)
	// Errors returns the computed error series
	Errors() []float64
}
