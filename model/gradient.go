package model

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Gradient estimates the partial derivatives of the joint negative
// log-likelihood with respect to the four hyperparameters by central
// finite differences, running the probes concurrently. Evaluate is pure,
// so the probes share the model and fields without synchronisation. The
// returned Params holds the partial derivative with respect to each
// field at the same position.
//
// This is a convenience for optimizers without their own differentiation
// machinery; it is not a substitute for exact gradients.
func (m *Model) Gradient(p Params, f Fields, step float64) (Params, error) {
	if !(step > 0) {
		return Params{}, fmt.Errorf("%w: non-positive difference step %g", ErrMalformed, step)
	}
	bump := []func(Params, float64) Params{
		func(q Params, h float64) Params { q.Beta0 += h; return q },
		func(q Params, h float64) Params { q.LogTauSpatial += h; return q },
		func(q Params, h float64) Params { q.LogTauSpatioTemporal += h; return q },
		func(q Params, h float64) Params { q.LogKappa += h; return q },
	}
	partial := make([]float64, len(bump))
	var g errgroup.Group
	for k, b := range bump {
		k, b := k, b
		g.Go(func() error {
			hi, err := m.Evaluate(b(p, step), f)
			if err != nil {
				return err
			}
			lo, err := m.Evaluate(b(p, -step), f)
			if err != nil {
				return err
			}
			partial[k] = (hi.JointNegLogLik - lo.JointNegLogLik) / (2 * step)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Params{}, err
	}
	return Params{
		Beta0:                partial[0],
		LogTauSpatial:        partial[1],
		LogTauSpatioTemporal: partial[2],
		LogKappa:             partial[3],
	}, nil
}
