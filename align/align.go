package align

import (
	"fmt"
	"math"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
	trmatrix "github.com/milosgajdos/go-trajeval/matrix"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// degenTol is the relative singular value threshold below which the
// alignment covariance is flagged as near-singular
const degenTol = 1e-9

// Result is the similarity transform mapping an estimated trajectory
// onto a reference, as recovered by Umeyama's method.
type Result struct {
	// R is the 3x3 alignment rotation
	R *mat.Dense
	// T is the alignment translation
	T *mat.VecDense
	// Scale is the alignment scale; 1.0 when scale is not corrected
	Scale float64
	// MinSingular is the smallest singular value of the cross covariance
	MinSingular float64
	// Degenerate reports a near-singular cross covariance: the rotation
	// is ill conditioned and the result should be treated with suspicion
	Degenerate bool
}

// Umeyama recovers the least squares similarity transform mapping the source
// points onto the destination points using Umeyama's closed form method.
// src and dst are n x 3 matrices of corresponding points, n >= 3; applying
// the result maps a source point p to Scale*R*p + T.
//
// Degenerate point configurations (coincident or collinear points) leave the
// rotation unconstrained: a cross covariance of rank < 2 is an error, and a
// barely full-rank one is flagged via Result.Degenerate.
func Umeyama(src, dst *mat.Dense, withScale bool) (*Result, error) {
	if src == nil || dst == nil {
		return nil, fmt.Errorf("invalid point data: %v, %v", src, dst)
	}

	n, cols := src.Dims()
	dn, dcols := dst.Dims()
	if cols != 3 || dcols != 3 {
		return nil, fmt.Errorf("points must be n x 3 matrices")
	}
	if n != dn {
		return nil, fmt.Errorf("mismatched point counts: %d != %d", n, dn)
	}
	if n < 3 {
		return nil, fmt.Errorf("at least 3 point correspondences required, got %d", n)
	}

	srcMean := trmatrix.ColMeans(src)
	dstMean := trmatrix.ColMeans(dst)

	// variance of the centered source points and the
	// dst-src cross covariance, both normalized by n
	var srcVar float64
	cov := mat.NewDense(3, 3, nil)
	for i := 0; i < n; i++ {
		var sc, dc [3]float64
		for j := 0; j < 3; j++ {
			sc[j] = src.At(i, j) - srcMean[j]
			dc[j] = dst.At(i, j) - dstMean[j]
			srcVar += sc[j] * sc[j]
		}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov.Set(r, c, cov.At(r, c)+dc[r]*sc[c])
			}
		}
	}
	srcVar /= float64(n)
	cov.Scale(1.0/float64(n), cov)

	var svd mat.SVD
	if ok := svd.Factorize(cov, mat.SVDFull); !ok {
		return nil, fmt.Errorf("SVD factorization of cross covariance failed")
	}

	d := svd.Values(nil)
	if d[1] <= degenTol*math.Max(d[0], 1.0) {
		return nil, fmt.Errorf("degenerate cross covariance rank, alignment is not possible")
	}

	u := new(mat.Dense)
	svd.UTo(u)
	v := new(mat.Dense)
	svd.VTo(v)

	// reflection correction guaranteeing a proper rotation
	s, err := matrix.NewDenseValIdentity(3, 1.0)
	if err != nil {
		return nil, err
	}
	if mat.Det(u)*mat.Det(v) < 0 {
		s.Set(2, 2, -1.0)
	}

	r := new(mat.Dense)
	r.Mul(u, s)
	r.Mul(r, v.T())

	scale := 1.0
	if withScale {
		var trace float64
		for i := 0; i < 3; i++ {
			trace += d[i] * s.At(i, i)
		}
		scale = trace / srcVar
	}

	t := mat.NewVecDense(3, nil)
	rm := new(mat.VecDense)
	rm.MulVec(r, mat.NewVecDense(3, srcMean))
	for i := 0; i < 3; i++ {
		t.SetVec(i, dstMean[i]-scale*rm.AtVec(i))
	}

	return &Result{
		R:           r,
		T:           t,
		Scale:       scale,
		MinSingular: d[2],
		Degenerate:  d[2] <= degenTol*math.Max(d[0], 1.0),
	}, nil
}

// Align aligns the estimated trajectory to the reference using Umeyama's
// method and returns both the recovered transform and a new, transformed
// copy of the estimate. The input trajectories must be equal length and
// index aligned (see the sync package) and contain at least 3 poses in a
// non-degenerate configuration.
//
// With correctScale the translations are additionally scaled; with
// correctOnlyScale the scale alone is applied and rotation and translation
// are left untouched.
func Align(est, ref *trajectory.Trajectory, correctScale, correctOnlyScale bool) (*Result, *trajectory.Trajectory, error) {
	if est == nil || ref == nil {
		return nil, nil, fmt.Errorf("invalid trajectory: %v, %v", est, ref)
	}

	if est.Len() != ref.Len() {
		return nil, nil, fmt.Errorf("mismatched trajectory lengths: %d != %d", est.Len(), ref.Len())
	}

	withScale := correctScale || correctOnlyScale
	res, err := Umeyama(est.Positions(), ref.Positions(), withScale)
	if err != nil {
		return nil, nil, err
	}

	if correctOnlyScale {
		out, err := est.Scale(res.Scale)
		if err != nil {
			return nil, nil, err
		}
		return res, out, nil
	}

	out := est
	if correctScale {
		if out, err = out.Scale(res.Scale); err != nil {
			return nil, nil, err
		}
	}

	t, err := lie.NewSE3(res.R, res.T)
	if err != nil {
		return nil, nil, err
	}
	if out, err = out.Transform(t); err != nil {
		return nil, nil, err
	}

	return res, out, nil
}

// AlignOrigin moves the estimated trajectory so that its first pose coincides
// with the first pose of the reference. It returns the used transform and a
// new, transformed copy of the estimate.
func AlignOrigin(est, ref *trajectory.Trajectory) (*mat.Dense, *trajectory.Trajectory, error) {
	if est == nil || ref == nil {
		return nil, nil, fmt.Errorf("invalid trajectory: %v, %v", est, ref)
	}

	t := new(mat.Dense)
	t.Mul(ref.Pose(0), lie.Inverse(est.Pose(0)))

	out, err := est.Transform(t)
	if err != nil {
		return nil, nil, err
	}

	return t, out, nil
}
