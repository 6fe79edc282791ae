package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
)

// None is noise that does not perturb poses
type None struct{}

// NewNone creates new None noise and returns it.
func NewNone() (*None, error) {
	return &None{}, nil
}

// Perturb returns an unmodified copy of the SE(3) pose p.
// It returns error if p is not a valid SE(3) transform.
func (n *None) Perturb(p *mat.Dense) (*mat.Dense, error) {
	if p == nil || !lie.IsSE3(p) {
		return nil, fmt.Errorf("pose is not a valid SE(3) transform")
	}
	return mat.DenseCopyOf(p), nil
}

// String implements the Stringer interface.
func (n *None) String() string {
	return "None"
}
