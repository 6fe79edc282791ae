package trajectory

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
)

// Trajectory is an ordered sequence of timestamped SE(3) poses.
// Timestamps are float seconds and strictly increasing.
// A Trajectory is an immutable value: transforms return new trajectories
// and never mutate the receiver.
type Trajectory struct {
	// stamps are pose timestamps in seconds
	stamps []float64
	// poses are 4x4 homogeneous rigid transforms
	poses []*mat.Dense
}

// New creates a new Trajectory from timestamps and SE(3) poses.
// Both slices are deep-copied, so the caller retains ownership of its data.
// It returns error if either of the following conditions is met:
//   - stamps and poses are empty or their lengths differ
//   - stamps are not strictly increasing
//   - any pose is not a valid SE(3) transform
func New(stamps []float64, poses []*mat.Dense) (*Trajectory, error) {
	if len(stamps) == 0 || len(poses) == 0 {
		return nil, fmt.Errorf("empty trajectory data")
	}

	if len(stamps) != len(poses) {
		return nil, fmt.Errorf("mismatched trajectory data lengths: %d stamps, %d poses", len(stamps), len(poses))
	}

	for i := 1; i < len(stamps); i++ {
		if stamps[i] <= stamps[i-1] {
			return nil, fmt.Errorf("timestamps not strictly increasing at index %d: %f <= %f", i, stamps[i], stamps[i-1])
		}
	}

	s := make([]float64, len(stamps))
	copy(s, stamps)

	p := make([]*mat.Dense, len(poses))
	for i, pose := range poses {
		if pose == nil || !lie.IsSE3(pose) {
			return nil, fmt.Errorf("pose at index %d is not a valid SE(3) transform", i)
		}
		p[i] = mat.DenseCopyOf(pose)
	}

	return &Trajectory{stamps: s, poses: p}, nil
}

// Len returns the number of poses.
func (tr *Trajectory) Len() int {
	return len(tr.poses)
}

// Timestamp returns the timestamp of the pose at index i.
func (tr *Trajectory) Timestamp(i int) float64 {
	return tr.stamps[i]
}

// Timestamps returns a copy of all pose timestamps.
func (tr *Trajectory) Timestamps() []float64 {
	s := make([]float64, len(tr.stamps))
	copy(s, tr.stamps)
	return s
}

// Pose returns a copy of the pose at index i.
func (tr *Trajectory) Pose(i int) *mat.Dense {
	return mat.DenseCopyOf(tr.poses[i])
}

// Position returns a copy of the translation component of the pose at index i.
func (tr *Trajectory) Position(i int) *mat.VecDense {
	return lie.TranslationFromSE3(tr.poses[i])
}

// Positions returns an n x 3 matrix whose rows are the pose translations.
func (tr *Trajectory) Positions() *mat.Dense {
	pos := mat.NewDense(len(tr.poses), 3, nil)
	for i, p := range tr.poses {
		pos.Set(i, 0, p.At(0, 3))
		pos.Set(i, 1, p.At(1, 3))
		pos.Set(i, 2, p.At(2, 3))
	}
	return pos
}

// Duration returns the elapsed time between the first and the last pose.
func (tr *Trajectory) Duration() float64 {
	return tr.stamps[len(tr.stamps)-1] - tr.stamps[0]
}

// Distances returns the accumulated path distance up to each pose.
// The first element is always 0.
func (tr *Trajectory) Distances() []float64 {
	dist := make([]float64, len(tr.poses))
	for i := 1; i < len(tr.poses); i++ {
		d := new(mat.VecDense)
		d.SubVec(tr.Position(i), tr.Position(i-1))
		dist[i] = dist[i-1] + mat.Norm(d, 2)
	}
	return dist
}

// PathLength returns the arc length of the trajectory.
func (tr *Trajectory) PathLength() float64 {
	dist := tr.Distances()
	return dist[len(dist)-1]
}

// RotationAngles returns the accumulated rotation between consecutive poses
// up to each pose, in radians or degrees. The first element is always 0.
func (tr *Trajectory) RotationAngles(degrees bool) []float64 {
	angles := make([]float64, len(tr.poses))
	for i := 1; i < len(tr.poses); i++ {
		rel := lie.Relative(tr.poses[i-1], tr.poses[i])
		var a float64
		if degrees {
			a, _ = lie.RotationAngleDeg(lie.SO3FromSE3(rel))
		} else {
			a, _ = lie.RotationAngle(lie.SO3FromSE3(rel))
		}
		angles[i] = angles[i-1] + a
	}
	return angles
}

// Speeds returns the speed of motion between consecutive poses in m/s.
// The result has Len()-1 elements; it is empty for a single pose.
func (tr *Trajectory) Speeds() []float64 {
	if len(tr.poses) < 2 {
		return nil
	}

	speeds := make([]float64, len(tr.poses)-1)
	for i := 1; i < len(tr.poses); i++ {
		d := new(mat.VecDense)
		d.SubVec(tr.Position(i), tr.Position(i-1))
		speeds[i-1] = mat.Norm(d, 2) / (tr.stamps[i] - tr.stamps[i-1])
	}
	return speeds
}

// Transform returns a new trajectory with every pose left-multiplied by t.
// It returns error if t is not a valid SE(3) transform.
func (tr *Trajectory) Transform(t mat.Matrix) (*Trajectory, error) {
	if t == nil || !lie.IsSE3(t) {
		return nil, fmt.Errorf("transform is not a valid SE(3) transform")
	}

	poses := make([]*mat.Dense, len(tr.poses))
	for i, p := range tr.poses {
		out := new(mat.Dense)
		out.Mul(t, p)
		poses[i] = out
	}

	return &Trajectory{stamps: tr.Timestamps(), poses: poses}, nil
}

// TransformRight returns a new trajectory with every pose right-multiplied by t.
// It returns error if t is not a valid SE(3) transform.
func (tr *Trajectory) TransformRight(t mat.Matrix) (*Trajectory, error) {
	if t == nil || !lie.IsSE3(t) {
		return nil, fmt.Errorf("transform is not a valid SE(3) transform")
	}

	poses := make([]*mat.Dense, len(tr.poses))
	for i, p := range tr.poses {
		out := new(mat.Dense)
		out.Mul(p, t)
		poses[i] = out
	}

	return &Trajectory{stamps: tr.Timestamps(), poses: poses}, nil
}

// Scale returns a new trajectory with every pose translation scaled by s.
// Rotations are left untouched. It returns error if s is not positive.
func (tr *Trajectory) Scale(s float64) (*Trajectory, error) {
	if s <= 0 {
		return nil, fmt.Errorf("invalid scale factor: %f", s)
	}

	poses := make([]*mat.Dense, len(tr.poses))
	for i, p := range tr.poses {
		out := mat.DenseCopyOf(p)
		for j := 0; j < 3; j++ {
			out.Set(j, 3, s*p.At(j, 3))
		}
		poses[i] = out
	}

	return &Trajectory{stamps: tr.Timestamps(), poses: poses}, nil
}

// ReduceToIDs returns a new trajectory containing only the poses at the given
// indices. The indices must be strictly increasing and within range.
func (tr *Trajectory) ReduceToIDs(ids []int) (*Trajectory, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no indices to reduce to")
	}

	stamps := make([]float64, len(ids))
	poses := make([]*mat.Dense, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(tr.poses) {
			return nil, fmt.Errorf("index out of range: %d", id)
		}
		if i > 0 && id <= ids[i-1] {
			return nil, fmt.Errorf("indices not strictly increasing at position %d", i)
		}
		stamps[i] = tr.stamps[id]
		poses[i] = mat.DenseCopyOf(tr.poses[id])
	}

	return &Trajectory{stamps: stamps, poses: poses}, nil
}

// Downsample returns a new trajectory reduced to at most n evenly spaced poses.
// If the trajectory already has n or fewer poses a copy of it is returned.
func (tr *Trajectory) Downsample(n int) (*Trajectory, error) {
	if n < 2 {
		return nil, fmt.Errorf("can't downsample to less than 2 poses")
	}

	if len(tr.poses) <= n {
		return tr.ReduceToIDs(allIDs(len(tr.poses)))
	}

	ids := make([]int, n)
	step := float64(len(tr.poses)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		ids[i] = int(math.Round(float64(i) * step))
	}
	return tr.ReduceToIDs(ids)
}

// ReduceToTimeRange returns a new trajectory containing only the poses with
// timestamps in [start, end]. It returns error if the range is reversed or
// if no pose falls inside it.
func (tr *Trajectory) ReduceToTimeRange(start, end float64) (*Trajectory, error) {
	if start > end {
		return nil, fmt.Errorf("start timestamp is greater than end timestamp (%f > %f)", start, end)
	}

	var ids []int
	for i, s := range tr.stamps {
		if s >= start && s <= end {
			ids = append(ids, i)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no poses in time range [%f, %f]", start, end)
	}

	return tr.ReduceToIDs(ids)
}

// Merge merges multiple trajectories into a single timestamp-sorted one.
// It returns error if the merged timestamps contain duplicates.
func Merge(trajectories []*Trajectory) (*Trajectory, error) {
	if len(trajectories) == 0 {
		return nil, fmt.Errorf("no trajectories to merge")
	}

	type sample struct {
		stamp float64
		pose  *mat.Dense
	}

	var samples []sample
	for _, tr := range trajectories {
		for i := range tr.poses {
			samples = append(samples, sample{stamp: tr.stamps[i], pose: tr.poses[i]})
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].stamp < samples[j].stamp })

	stamps := make([]float64, len(samples))
	poses := make([]*mat.Dense, len(samples))
	for i, s := range samples {
		stamps[i] = s.stamp
		poses[i] = s.pose
	}

	return New(stamps, poses)
}

// Check validates the trajectory data and returns a detailed report.
// It exists for diagnosing externally supplied data; New already rejects
// invalid input.
func (tr *Trajectory) Check() (bool, map[string]string) {
	details := make(map[string]string)
	valid := true

	se3Valid := true
	for _, p := range tr.poses {
		if !lie.IsSE3(p) {
			se3Valid = false
			break
		}
	}
	if se3Valid {
		details["SE(3) conform"] = "yes"
	} else {
		details["SE(3) conform"] = "no (poses are not valid SE(3) matrices)"
		valid = false
	}

	ascending := true
	for i := 1; i < len(tr.stamps); i++ {
		if tr.stamps[i] <= tr.stamps[i-1] {
			ascending = false
			break
		}
	}
	if ascending {
		details["timestamps"] = "ok"
	} else {
		details["timestamps"] = "wrong, not strictly ascending"
		valid = false
	}

	return valid, details
}

// String implements the Stringer interface.
func (tr *Trajectory) String() string {
	return fmt.Sprintf("%d poses, %.3fm path length, %.3fs duration", tr.Len(), tr.PathLength(), tr.Duration())
}

func allIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
