package noise

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/milosgajdos/go-trajeval/lie"
)

// Pose is Gaussian SE(3) pose noise
type Pose struct {
	// transDist draws per-axis translation jitter
	transDist distuv.Normal
	// angleDist draws rotation angle jitter around a random axis
	angleDist distuv.Normal
	// axisDist draws the components of the rotation axis
	axisDist distuv.Normal
	// sigmaTrans is the translation standard deviation in meters
	sigmaTrans float64
	// sigmaRot is the rotation angle standard deviation in radians
	sigmaRot float64
}

// NewPose creates new Gaussian pose noise with the given translation (meters)
// and rotation angle (radians) standard deviations.
// It returns error if either standard deviation is negative.
func NewPose(sigmaTrans, sigmaRot float64) (*Pose, error) {
	if sigmaTrans < 0 || sigmaRot < 0 {
		return nil, fmt.Errorf("invalid noise standard deviations: %f m, %f rad", sigmaTrans, sigmaRot)
	}

	return NewPoseWithSeed(sigmaTrans, sigmaRot, uint64(time.Now().UnixNano())), nil
}

// NewPoseWithSeed creates new Gaussian pose noise with a fixed seed,
// for reproducible perturbations.
func NewPoseWithSeed(sigmaTrans, sigmaRot float64, seed uint64) *Pose {
	src := rand.New(rand.NewSource(seed))

	return &Pose{
		transDist:  distuv.Normal{Mu: 0, Sigma: sigmaTrans, Src: src},
		angleDist:  distuv.Normal{Mu: 0, Sigma: sigmaRot, Src: src},
		axisDist:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		sigmaTrans: sigmaTrans,
		sigmaRot:   sigmaRot,
	}
}

// Perturb returns a copy of the SE(3) pose p right-multiplied by a random
// rigid perturbation: per-axis Gaussian translation jitter and a Gaussian
// rotation angle around a uniformly random axis.
// It returns error if p is not a valid SE(3) transform.
func (n *Pose) Perturb(p *mat.Dense) (*mat.Dense, error) {
	if p == nil || !lie.IsSE3(p) {
		return nil, fmt.Errorf("pose is not a valid SE(3) transform")
	}

	angle := 0.0
	if n.sigmaRot > 0 {
		angle = n.angleDist.Rand()
	}

	axis := mat.NewVecDense(3, []float64{n.axisDist.Rand(), n.axisDist.Rand(), n.axisDist.Rand()})
	norm := mat.Norm(axis, 2)
	if norm < 1e-12 {
		axis = mat.NewVecDense(3, []float64{0, 0, 1})
		norm = 1.0
	}
	axis.ScaleVec(angle/norm, axis)

	var jitter mat.Vector
	if n.sigmaTrans > 0 {
		jitter = mat.NewVecDense(3, []float64{n.transDist.Rand(), n.transDist.Rand(), n.transDist.Rand()})
	}

	d, err := lie.NewSE3(lie.SO3Exp(axis), jitter)
	if err != nil {
		return nil, err
	}

	out := new(mat.Dense)
	out.Mul(p, d)

	return out, nil
}

// String implements the Stringer interface.
func (n *Pose) String() string {
	return fmt.Sprintf("PoseNoise{sigmaTrans: %g m, sigmaRot: %g rad}", n.sigmaTrans, n.sigmaRot)
}
