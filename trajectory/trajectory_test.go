package trajectory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
)

func poseAt(x, y, z float64) *mat.Dense {
	p := lie.Identity()
	p.Set(0, 3, x)
	p.Set(1, 3, y)
	p.Set(2, 3, z)
	return p
}

func poseRotZ(angle, x float64) *mat.Dense {
	r := lie.SO3Exp(mat.NewVecDense(3, []float64{0, 0, angle}))
	p, _ := lie.NewSE3(r, mat.NewVecDense(3, []float64{x, 0, 0}))
	return p
}

func line(n int) *Trajectory {
	stamps := make([]float64, n)
	poses := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		stamps[i] = float64(i)
		poses[i] = poseAt(float64(i), 0, 0)
	}
	tr, _ := New(stamps, poses)
	return tr
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	tr, err := New([]float64{0, 1}, []*mat.Dense{poseAt(0, 0, 0), poseAt(1, 0, 0)})
	assert.NotNil(tr)
	assert.NoError(err)
	assert.Equal(2, tr.Len())

	// empty data
	tr, err = New(nil, nil)
	assert.Nil(tr)
	assert.Error(err)

	// mismatched lengths
	tr, err = New([]float64{0, 1}, []*mat.Dense{poseAt(0, 0, 0)})
	assert.Nil(tr)
	assert.Error(err)

	// non-increasing timestamps
	tr, err = New([]float64{0, 0}, []*mat.Dense{poseAt(0, 0, 0), poseAt(1, 0, 0)})
	assert.Nil(tr)
	assert.Error(err)

	// non-orthonormal rotation block
	bad := poseAt(0, 0, 0)
	bad.Set(0, 0, 2.0)
	tr, err = New([]float64{0, 1}, []*mat.Dense{poseAt(0, 0, 0), bad})
	assert.Nil(tr)
	assert.Error(err)
}

func TestOwnership(t *testing.T) {
	assert := assert.New(t)

	stamps := []float64{0, 1}
	poses := []*mat.Dense{poseAt(0, 0, 0), poseAt(1, 0, 0)}
	tr, err := New(stamps, poses)
	assert.NoError(err)

	// mutating caller data must not leak into the trajectory
	poses[0].Set(0, 3, 100.0)
	stamps[0] = -5.0
	assert.Equal(0.0, tr.Pose(0).At(0, 3))
	assert.Equal(0.0, tr.Timestamp(0))

	// mutating returned copies must not leak back
	tr.Pose(0).Set(0, 3, 42.0)
	assert.Equal(0.0, tr.Pose(0).At(0, 3))
}

func TestGeometry(t *testing.T) {
	assert := assert.New(t)

	tr := line(4)
	assert.InDelta(3.0, tr.PathLength(), 1e-12)
	assert.InDelta(3.0, tr.Duration(), 1e-12)

	dist := tr.Distances()
	assert.Equal([]float64{0, 1, 2, 3}, dist)

	speeds := tr.Speeds()
	assert.Len(speeds, 3)
	for _, s := range speeds {
		assert.InDelta(1.0, s, 1e-12)
	}

	pos := tr.Positions()
	rows, cols := pos.Dims()
	assert.Equal(4, rows)
	assert.Equal(3, cols)
	assert.Equal(2.0, pos.At(2, 0))
}

func TestRotationAngles(t *testing.T) {
	assert := assert.New(t)

	stamps := []float64{0, 1, 2}
	poses := []*mat.Dense{poseRotZ(0, 0), poseRotZ(0.5, 1), poseRotZ(1.0, 2)}
	tr, err := New(stamps, poses)
	assert.NoError(err)

	angles := tr.RotationAngles(false)
	assert.InDelta(0.0, angles[0], 1e-12)
	assert.InDelta(0.5, angles[1], 1e-9)
	assert.InDelta(1.0, angles[2], 1e-9)

	deg := tr.RotationAngles(true)
	assert.InDelta(0.5*180/math.Pi, deg[1], 1e-9)
}

func TestTransform(t *testing.T) {
	assert := assert.New(t)

	tr := line(3)
	shift := poseAt(0, 2, 0)

	out, err := tr.Transform(shift)
	assert.NotNil(out)
	assert.NoError(err)
	assert.Equal(2.0, out.Pose(0).At(1, 3))

	// the original is left untouched
	assert.Equal(0.0, tr.Pose(0).At(1, 3))

	// invalid transform
	out, err = tr.Transform(mat.NewDense(3, 3, nil))
	assert.Nil(out)
	assert.Error(err)

	// right multiplication of a pure translation by a pure translation commutes
	rout, err := tr.TransformRight(shift)
	assert.NoError(err)
	assert.Equal(2.0, rout.Pose(0).At(1, 3))
}

func TestScale(t *testing.T) {
	assert := assert.New(t)

	tr := line(3)
	out, err := tr.Scale(2.0)
	assert.NoError(err)
	assert.InDelta(4.0, out.PathLength(), 1e-12)
	assert.InDelta(2.0, tr.PathLength(), 1e-12)

	out, err = tr.Scale(0)
	assert.Nil(out)
	assert.Error(err)
}

func TestReduceToIDs(t *testing.T) {
	assert := assert.New(t)

	tr := line(5)
	out, err := tr.ReduceToIDs([]int{0, 2, 4})
	assert.NoError(err)
	assert.Equal(3, out.Len())
	assert.Equal(2.0, out.Timestamp(1))

	out, err = tr.ReduceToIDs([]int{2, 1})
	assert.Nil(out)
	assert.Error(err)

	out, err = tr.ReduceToIDs([]int{7})
	assert.Nil(out)
	assert.Error(err)

	out, err = tr.ReduceToIDs(nil)
	assert.Nil(out)
	assert.Error(err)
}

func TestDownsample(t *testing.T) {
	assert := assert.New(t)

	tr := line(10)
	out, err := tr.Downsample(5)
	assert.NoError(err)
	assert.Equal(5, out.Len())
	assert.Equal(0.0, out.Timestamp(0))
	assert.Equal(9.0, out.Timestamp(4))

	// already small enough
	out, err = tr.Downsample(20)
	assert.NoError(err)
	assert.Equal(10, out.Len())

	out, err = tr.Downsample(1)
	assert.Nil(out)
	assert.Error(err)
}

func TestReduceToTimeRange(t *testing.T) {
	assert := assert.New(t)

	tr := line(5)
	out, err := tr.ReduceToTimeRange(1, 3)
	assert.NoError(err)
	assert.Equal(3, out.Len())

	out, err = tr.ReduceToTimeRange(3, 1)
	assert.Nil(out)
	assert.Error(err)

	out, err = tr.ReduceToTimeRange(10, 20)
	assert.Nil(out)
	assert.Error(err)
}

func TestMerge(t *testing.T) {
	assert := assert.New(t)

	a, _ := New([]float64{0, 2}, []*mat.Dense{poseAt(0, 0, 0), poseAt(2, 0, 0)})
	b, _ := New([]float64{1, 3}, []*mat.Dense{poseAt(1, 0, 0), poseAt(3, 0, 0)})

	out, err := Merge([]*Trajectory{a, b})
	assert.NoError(err)
	assert.Equal(4, out.Len())
	assert.Equal([]float64{0, 1, 2, 3}, out.Timestamps())

	// duplicate timestamps across trajectories
	c, _ := New([]float64{0, 1}, []*mat.Dense{poseAt(0, 0, 0), poseAt(1, 0, 0)})
	out, err = Merge([]*Trajectory{a, c})
	assert.Nil(out)
	assert.Error(err)

	out, err = Merge(nil)
	assert.Nil(out)
	assert.Error(err)
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)

	tr := line(3)
	valid, details := tr.Check()
	assert.True(valid)
	assert.Equal("ok", details["timestamps"])
	assert.Equal("yes", details["SE(3) conform"])
}

func TestString(t *testing.T) {
	assert := assert.New(t)
	assert.Contains(line(3).String(), "3 poses")
}
