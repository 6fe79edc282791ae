// Package sim provides synthetic trajectories and plotting helpers for
// exercising the pose error metrics without real benchmark data.
package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/milosgajdos/go-trajeval/lie"
	"github.com/milosgajdos/go-trajeval/noise"
	"github.com/milosgajdos/go-trajeval/trajectory"
)

// Circle generates a trajectory of n poses moving along a circle of the
// given radius in the XY plane, one pose every dt seconds, with the pose
// orientation following the direction of travel. omega is the angular rate
// in rad/s.
// It returns error if the parameters do not describe a valid trajectory.
func Circle(n int, radius, omega, dt float64) (*trajectory.Trajectory, error) {
	if n < 2 {
		return nil, fmt.Errorf("at least 2 poses required, got %d", n)
	}
	if radius <= 0 || dt <= 0 {
		return nil, fmt.Errorf("invalid circle parameters: radius %f, dt %f", radius, dt)
	}

	stamps := make([]float64, n)
	poses := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		stamps[i] = float64(i) * dt
		angle := omega * stamps[i]

		r := lie.SO3Exp(mat.NewVecDense(3, []float64{0, 0, angle}))
		t := mat.NewVecDense(3, []float64{radius * math.Cos(angle), radius * math.Sin(angle), 0})

		p, err := lie.NewSE3(r, t)
		if err != nil {
			return nil, err
		}
		poses[i] = p
	}

	return trajectory.New(stamps, poses)
}

// Line generates a trajectory of n poses moving with the constant velocity
// v (m/s per axis), one pose every dt seconds, with identity orientation.
// It returns error if the parameters do not describe a valid trajectory.
func Line(n int, v [3]float64, dt float64) (*trajectory.Trajectory, error) {
	if n < 2 {
		return nil, fmt.Errorf("at least 2 poses required, got %d", n)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("invalid timestep: %f", dt)
	}

	stamps := make([]float64, n)
	poses := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		stamps[i] = float64(i) * dt
		p := lie.Identity()
		for j := 0; j < 3; j++ {
			p.Set(j, 3, v[j]*stamps[i])
		}
		poses[i] = p
	}

	return trajectory.New(stamps, poses)
}

// Perturbed returns a copy of the trajectory with every pose perturbed by n.
// It models an odometry estimate of tr whose error does not accumulate.
func Perturbed(tr *trajectory.Trajectory, n *noise.Pose) (*trajectory.Trajectory, error) {
	if tr == nil {
		return nil, fmt.Errorf("invalid trajectory: %v", tr)
	}
	if n == nil {
		return nil, fmt.Errorf("invalid noise: %v", n)
	}

	poses := make([]*mat.Dense, tr.Len())
	for i := 0; i < tr.Len(); i++ {
		p, err := n.Perturb(tr.Pose(i))
		if err != nil {
			return nil, err
		}
		poses[i] = p
	}

	return trajectory.New(tr.Timestamps(), poses)
}
