package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// spiral builds a generic non-degenerate trajectory
func spiral(t *testing.T, n int) *trajectory.Trajectory {
	t.Helper()

	stamps := make([]float64, n)
	poses := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		stamps[i] = float64(i) * 0.1
		angle := float64(i) * 0.3
		r := lie.SO3Exp(mat.NewVecDense(3, []float64{0, 0, angle}))
		tv := mat.NewVecDense(3, []float64{math.Cos(angle), math.Sin(angle), 0.05 * float64(i)})
		p, err := lie.NewSE3(r, tv)
		assert.NoError(t, err)
		poses[i] = p
	}

	tr, err := trajectory.New(stamps, poses)
	assert.NoError(t, err)
	return tr
}

func transRMSE(a, b *trajectory.Trajectory) float64 {
	var sse float64
	for i := 0; i < a.Len(); i++ {
		d := new(mat.VecDense)
		d.SubVec(a.Position(i), b.Position(i))
		n := mat.Norm(d, 2)
		sse += n * n
	}
	return math.Sqrt(sse / float64(a.Len()))
}

func TestUmeyama(t *testing.T) {
	assert := assert.New(t)

	ref := spiral(t, 20)

	// disturb the reference by a known similarity transform
	r := lie.SO3Exp(mat.NewVecDense(3, []float64{0.2, -0.1, 0.7}))
	tv := mat.NewVecDense(3, []float64{1, -2, 0.5})
	disturb, err := lie.NewSE3(r, tv)
	assert.NoError(err)

	scaled, err := ref.Scale(1.5)
	assert.NoError(err)
	est, err := scaled.Transform(disturb)
	assert.NoError(err)

	res, err := Umeyama(est.Positions(), ref.Positions(), true)
	assert.NotNil(res)
	assert.NoError(err)
	assert.False(res.Degenerate)

	// recovered scale inverts the 1.5 disturbance
	assert.InDelta(1.0/1.5, res.Scale, 1e-9)

	// applying the result maps est positions back onto ref
	for i := 0; i < ref.Len(); i++ {
		p := new(mat.VecDense)
		p.MulVec(res.R, est.Position(i))
		p.ScaleVec(res.Scale, p)
		p.AddVec(p, res.T)
		d := new(mat.VecDense)
		d.SubVec(p, ref.Position(i))
		assert.InDelta(0.0, mat.Norm(d, 2), 1e-9)
	}

	// recovered rotation is proper
	assert.True(lie.IsSO3(res.R))
}

func TestUmeyamaInvalidInput(t *testing.T) {
	assert := assert.New(t)

	res, err := Umeyama(nil, nil, false)
	assert.Nil(res)
	assert.Error(err)

	res, err = Umeyama(mat.NewDense(5, 2, nil), mat.NewDense(5, 3, nil), false)
	assert.Nil(res)
	assert.Error(err)

	res, err = Umeyama(mat.NewDense(5, 3, nil), mat.NewDense(4, 3, nil), false)
	assert.Nil(res)
	assert.Error(err)

	res, err = Umeyama(mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil), false)
	assert.Nil(res)
	assert.Error(err)
}

func TestUmeyamaDegenerate(t *testing.T) {
	assert := assert.New(t)

	// collinear points: the cross covariance has rank 1
	src := mat.NewDense(4, 3, []float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0})
	res, err := Umeyama(src, src, false)
	assert.Nil(res)
	assert.Error(err)

	// planar points: full alignment is possible but flagged as marginal
	planar := mat.NewDense(4, 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0})
	res, err = Umeyama(planar, planar, false)
	assert.NotNil(res)
	assert.NoError(err)
	assert.True(res.Degenerate)
}

func TestAlign(t *testing.T) {
	assert := assert.New(t)

	ref := spiral(t, 20)

	r := lie.SO3Exp(mat.NewVecDense(3, []float64{0, 0.3, -0.4}))
	disturb, err := lie.NewSE3(r, mat.NewVecDense(3, []float64{2, 1, -1}))
	assert.NoError(err)
	est, err := ref.Transform(disturb)
	assert.NoError(err)

	before := transRMSE(est, ref)
	res, aligned, err := Align(est, ref, false, false)
	assert.NotNil(res)
	assert.NoError(err)
	assert.Equal(1.0, res.Scale)

	after := transRMSE(aligned, ref)
	assert.LessOrEqual(after, before)
	assert.InDelta(0.0, after, 1e-9)

	// the input estimate is left untouched
	assert.InDelta(before, transRMSE(est, ref), 1e-12)
}

func TestAlignWithScale(t *testing.T) {
	assert := assert.New(t)

	ref := spiral(t, 20)
	est, err := ref.Scale(2.0)
	assert.NoError(err)

	res, aligned, err := Align(est, ref, true, false)
	assert.NoError(err)
	assert.InDelta(0.5, res.Scale, 1e-9)
	assert.InDelta(0.0, transRMSE(aligned, ref), 1e-9)

	// scale only correction
	res, aligned, err = Align(est, ref, false, true)
	assert.NoError(err)
	assert.InDelta(0.5, res.Scale, 1e-9)
	assert.InDelta(0.0, transRMSE(aligned, ref), 1e-9)
}

func TestAlignInvalidInput(t *testing.T) {
	assert := assert.New(t)

	ref := spiral(t, 20)
	short := spiral(t, 10)

	_, _, err := Align(nil, ref, false, false)
	assert.Error(err)

	_, _, err = Align(short, ref, false, false)
	assert.Error(err)
}

func TestAlignOrigin(t *testing.T) {
	assert := assert.New(t)

	ref := spiral(t, 10)

	disturb, err := lie.NewSE3(lie.SO3Exp(mat.NewVecDense(3, []float64{0, 0, 1.0})), mat.NewVecDense(3, []float64{5, 5, 5}))
	assert.NoError(err)
	est, err := ref.Transform(disturb)
	assert.NoError(err)

	tm, aligned, err := AlignOrigin(est, ref)
	assert.NotNil(tm)
	assert.NoError(err)

	// first poses coincide after origin alignment
	diff := new(mat.Dense)
	diff.Sub(aligned.Pose(0), ref.Pose(0))
	assert.InDelta(0.0, mat.Norm(diff, 2), 1e-9)
}
