package lie

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// tol is the tolerance used when checking orthonormality of rotations
const tol = 1e-6

// Identity returns a new SE(3) identity transform.
func Identity() *mat.Dense {
	p := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		p.Set(i, i, 1.0)
	}
	return p
}

// NewSE3 builds a 4x4 homogeneous SE(3) transform from a 3x3 rotation r
// and a 3-vector translation t. A nil t is treated as a zero translation.
// It returns error if r is not a proper rotation or if the dimensions do not match.
func NewSE3(r mat.Matrix, t mat.Vector) (*mat.Dense, error) {
	if r == nil {
		return nil, fmt.Errorf("invalid rotation: %v", r)
	}

	if !IsSO3(r) {
		return nil, fmt.Errorf("rotation is not a proper SO(3) matrix")
	}

	if t != nil && t.Len() != 3 {
		return nil, fmt.Errorf("invalid translation dimension: %d", t.Len())
	}

	p := Identity()
	p.Slice(0, 3, 0, 3).(*mat.Dense).Copy(r)
	if t != nil {
		for i := 0; i < 3; i++ {
			p.Set(i, 3, t.AtVec(i))
		}
	}

	return p, nil
}

// IsSO3 returns true if r is a 3x3 orthonormal matrix with determinant +1
// within floating point tolerance.
func IsSO3(r mat.Matrix) bool {
	rows, cols := r.Dims()
	if rows != 3 || cols != 3 {
		return false
	}

	rtr := new(mat.Dense)
	rtr.Mul(r.T(), r)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(rtr.At(i, j)-want) > tol {
				return false
			}
		}
	}

	return math.Abs(mat.Det(r)-1.0) <= tol
}

// IsSE3 returns true if p is a valid 4x4 homogeneous rigid transform:
// a proper rotation block, and a [0 0 0 1] bottom row.
func IsSE3(p mat.Matrix) bool {
	rows, cols := p.Dims()
	if rows != 4 || cols != 4 {
		return false
	}

	for j := 0; j < 3; j++ {
		if math.Abs(p.At(3, j)) > tol {
			return false
		}
	}
	if math.Abs(p.At(3, 3)-1.0) > tol {
		return false
	}

	return IsSO3(SO3FromSE3(p))
}

// SO3FromSE3 returns a copy of the rotation block of p.
func SO3FromSE3(p mat.Matrix) *mat.Dense {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, p.At(i, j))
		}
	}
	return r
}

// TranslationFromSE3 returns a copy of the translation component of p.
func TranslationFromSE3(p mat.Matrix) *mat.VecDense {
	return mat.NewVecDense(3, []float64{p.At(0, 3), p.At(1, 3), p.At(2, 3)})
}

// TranslationNorm returns the Euclidean norm of the translation component of p.
func TranslationNorm(p mat.Matrix) float64 {
	return mat.Norm(TranslationFromSE3(p), 2)
}

// Inverse returns the inverse of the SE(3) transform p.
// It exploits the rigid transform structure instead of a general matrix
// inversion: the rotation is transposed and the translation negated and rotated.
func Inverse(p mat.Matrix) *mat.Dense {
	r := SO3FromSE3(p)
	t := TranslationFromSE3(p)

	inv := Identity()
	rt := inv.Slice(0, 3, 0, 3).(*mat.Dense)
	rt.Copy(r.T())

	ti := new(mat.VecDense)
	ti.MulVec(rt, t)
	for i := 0; i < 3; i++ {
		inv.Set(i, 3, -ti.AtVec(i))
	}

	return inv
}

// Relative returns the relative transform between a and b: Inverse(a) * b.
func Relative(a, b mat.Matrix) *mat.Dense {
	rel := new(mat.Dense)
	rel.Mul(Inverse(a), b)
	return rel
}

// RotationAngle returns the rotation angle of r in radians, extracted from
// the SO(3) logarithm as arccos((trace(r)-1)/2).
// The arccos argument is clamped to [-1, 1]; clamped reports whether the
// trace fell outside that interval, which indicates marginal input quality.
func RotationAngle(r mat.Matrix) (angle float64, clamped bool) {
	c := (mat.Trace(r) - 1.0) / 2.0
	if c < -1.0 {
		return math.Pi, true
	}
	if c > 1.0 {
		return 0.0, true
	}
	return math.Acos(c), false
}

// RotationAngleDeg returns the rotation angle of r in degrees.
// See RotationAngle for the meaning of clamped.
func RotationAngleDeg(r mat.Matrix) (angle float64, clamped bool) {
	rad, clamped := RotationAngle(r)
	return rad * 180.0 / math.Pi, clamped
}

// SO3Exp returns the rotation matrix for the rotation vector v via the
// Rodrigues formula. The angle is the norm of v and the axis its direction;
// a (near) zero vector yields the identity rotation.
func SO3Exp(v mat.Vector) *mat.Dense {
	angle := mat.Norm(v, 2)

	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		r.Set(i, i, 1.0)
	}

	if angle < 1e-12 {
		return r
	}

	x, y, z := v.AtVec(0)/angle, v.AtVec(1)/angle, v.AtVec(2)/angle
	k := mat.NewDense(3, 3, []float64{
		0, -z, y,
		z, 0, -x,
		-y, x, 0,
	})

	k2 := new(mat.Dense)
	k2.Mul(k, k)

	ks := new(mat.Dense)
	ks.Scale(math.Sin(angle), k)

	k2s := new(mat.Dense)
	k2s.Scale(1.0-math.Cos(angle), k2)

	r.Add(r, ks)
	r.Add(r, k2s)

	return r
}

// DeltaFrobenius returns the Frobenius norm of the difference between m
// and the identity matrix of the same size. It panics if m is not square.
func DeltaFrobenius(m mat.Matrix) float64 {
	rows, cols := m.Dims()
	if rows != cols {
		panic(fmt.Sprintf("lie: non-square matrix: [%d x %d]", rows, cols))
	}

	d := mat.DenseCopyOf(m)
	for i := 0; i < rows; i++ {
		d.Set(i, i, d.At(i, i)-1.0)
	}

	return mat.Norm(d, 2)
}
