// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import "math"

// adam applies dense Adam updates to a set of parameter tables. Every table
// is updated on every step, so moments of rows absent from a batch still
// decay, which matches how gathered embedding gradients are densified.
type adam struct {
	lr, beta1, beta2, eps float64

	step     int
	accBeta1 float64
	accBeta2 float64

	first  [][]float64
	second [][]float64
}

func newAdam(cfg TrainingConfig, sizes ...int) *adam {
	a := &adam{
		lr:       cfg.LearningRate,
		beta1:    cfg.Beta1,
		beta2:    cfg.Beta2,
		eps:      cfg.Epsilon,
		accBeta1: 1,
		accBeta2: 1,
		first:    make([][]float64, len(sizes)),
		second:   make([][]float64, len(sizes)),
	}
	for i, n := range sizes {
		a.first[i] = make([]float64, n)
		a.second[i] = make([]float64, n)
	}
	return a
}

// update advances the step counter and applies grads[i] to params[i].
// params and grads must be ordered like the sizes passed to newAdam.
func (a *adam) update(params, grads [][]float64) {
	a.step++
	a.accBeta1 *= a.beta1
	a.accBeta2 *= a.beta2
	c1 := 1 - a.accBeta1
	c2 := 1 - a.accBeta2

	for t := range params {
		p, g := params[t], grads[t]
		m, v := a.first[t], a.second[t]
		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			p[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}
	}
}
