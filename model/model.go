// Package model fits counts binned on a site/time grid with a
// hierarchical Poisson model: a log-density that is the sum of an
// intercept, a spatial random field and an independent-in-time
// spatiotemporal random field, both fields Gaussian Markov random fields
// sharing one SPDE precision structure. The package evaluates the joint
// negative log-likelihood; gradients and the integration of the random
// effects belong to the calling optimizer.
package model

import (
	"errors"
	"fmt"

	"github.com/meganwinton/Loggerhead-densities/gmrf"
)

var (
	ErrMalformed  = errors.New("model: malformed input")
	ErrIndexRange = errors.New("model: index out of range")
)

// Params are the four hyperparameters, set by the calling optimizer
// between evaluations and read-only within one.
type Params struct {
	Beta0                float64 // intercept of the log-density
	LogTauSpatial        float64 // log precision scale of the spatial field
	LogTauSpatioTemporal float64 // log precision scale of the spatiotemporal field
	LogKappa             float64 // log decay rate, shared by both fields
}

// Observations are counts binned to mesh nodes and time steps. Counts is
// a float vector so that a NaN entry can mark a count as not available;
// NaN is skipped by the data term and cannot be confused with a
// legitimate zero count.
type Observations struct {
	Counts []float64
	Sites  []int
	Times  []int
}

// Model binds a mesh basis to a set of observations and per-site areas.
// It is immutable after New and safe to share across concurrent
// evaluations.
type Model struct {
	basis *gmrf.Basis
	nT    int
	obs   Observations
	areas []float64
}

// New validates the observation sequences against the mesh and time
// grid. Sequence-length and index problems are caught here, before any
// numerical work can run on them. The per-site areas are part of the
// input contract but are not consumed by the likelihood; pass nil to
// omit them.
func New(basis *gmrf.Basis, nT int, obs Observations, areas []float64) (*Model, error) {
	if nT < 0 {
		return nil, fmt.Errorf("%w: negative time-step count %d", ErrMalformed, nT)
	}
	nS := basis.Dim()
	if len(obs.Sites) != len(obs.Counts) {
		return nil, fmt.Errorf("%w: %d site indices for %d counts",
			ErrMalformed, len(obs.Sites), len(obs.Counts))
	}
	if len(obs.Times) != len(obs.Counts) {
		return nil, fmt.Errorf("%w: %d time indices for %d counts",
			ErrMalformed, len(obs.Times), len(obs.Counts))
	}
	if areas != nil && len(areas) != nS {
		return nil, fmt.Errorf("%w: %d site areas for %d mesh nodes",
			ErrMalformed, len(areas), nS)
	}
	for i, s := range obs.Sites {
		if s < 0 || s >= nS {
			return nil, fmt.Errorf("%w: observation %d has site index %d, want [0, %d)",
				ErrIndexRange, i, s, nS)
		}
		if t := obs.Times[i]; t < 0 || t >= nT {
			return nil, fmt.Errorf("%w: observation %d has time index %d, want [0, %d)",
				ErrIndexRange, i, t, nT)
		}
	}
	m := &Model{
		basis: basis,
		nT:    nT,
		obs: Observations{
			Counts: append([]float64(nil), obs.Counts...),
			Sites:  append([]int(nil), obs.Sites...),
			Times:  append([]int(nil), obs.Times...),
		},
	}
	if areas != nil {
		m.areas = append([]float64(nil), areas...)
	}
	return m, nil
}

// Dims returns the number of mesh nodes and time steps.
func (m *Model) Dims() (nS, nT int) { return m.basis.Dim(), m.nT }

// NumObs returns the number of observations, missing ones included.
func (m *Model) NumObs() int { return len(m.obs.Counts) }

// Areas returns the per-site areas as supplied to New, or nil. The slice
// is owned by the model; callers must not modify it.
func (m *Model) Areas() []float64 { return m.areas }
