// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package simplex solves pure-continuous optkit models with gonum's LP solver.
//
// The package only translates models: the general form is assembled from the
// model's constraints and variable bounds, converted to standard form with
// lp.Convert and handed to lp.Simplex. Values are surfaced exactly as the
// engine reports them; callers wanting integers use Solution.IntValue.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrNotContinuous is returned for models carrying integer variables or
	// congruences; those route to the cpsat backend.
	ErrNotContinuous = errors.New("simplex: model is not pure-continuous")

	// ErrNoObjective is returned for models without an objective.
	ErrNoObjective = errors.New("simplex: model has no objective")

	// ErrNoConstraints is returned when the model yields no inequality rows at
	// all (no constraints and only free variables).
	ErrNoConstraints = errors.New("simplex: model has no constraints or bounds")
)

// Solve translates m into general LP form and delegates to gonum's simplex.
//
// Infeasible and unbounded models are reported in the Solution status with a
// nil error.
func Solve(ctx context.Context, m *model.Model, opts ...backend.Option) (backend.Solution, error) {
	cfg, err := backend.NewConfig(opts...)
	if err != nil {
		return backend.Solution{}, err
	}
	if err := m.Validate(); err != nil {
		return backend.Solution{}, err
	}
	if !m.IsContinuous() {
		return backend.Solution{}, ErrNotContinuous
	}
	if !m.HasObjective {
		return backend.Solution{}, ErrNoObjective
	}
	if err := ctx.Err(); err != nil {
		return backend.Solution{}, err
	}

	n := m.NbVariables()

	// general form: G·x <= h. Constraints first, then finite variable bounds;
	// equalities contribute a row pair.
	var g []float64
	var h []float64
	addRow := func(row []float64, bound float64) {
		g = append(g, row...)
		h = append(h, bound)
	}
	for _, c := range m.LinearConstraints {
		row := make([]float64, n)
		for _, t := range c.Terms {
			row[t.VID] = t.Coeff
		}
		switch c.Sense {
		case model.LessOrEqual:
			addRow(row, c.RHS)
		case model.GreaterOrEqual:
			addRow(negated(row), -c.RHS)
		case model.Equal:
			addRow(row, c.RHS)
			addRow(negated(row), -c.RHS)
		}
	}
	for vid, v := range m.Variables {
		if v.BoundedBelow() {
			row := make([]float64, n)
			row[vid] = -1
			addRow(row, -v.Low)
		}
		if v.BoundedAbove() {
			row := make([]float64, n)
			row[vid] = 1
			addRow(row, v.High)
		}
	}
	nbRows := len(h)
	if nbRows == 0 {
		return backend.Solution{}, ErrNoConstraints
	}

	// cost vector; lp.Simplex minimizes, so a maximization negates.
	c := make([]float64, n)
	for _, t := range m.Objective.Terms {
		c[t.VID] = t.Coeff
	}
	maximize := m.Objective.Direction == model.Maximize
	if maximize {
		c = negated(c)
	}

	log := cfg.Logger
	log.Debug().Str("backend", backend.SIMPLEX.String()).Str("model", m.Name).
		Int("nbVariables", n).Int("nbRows", nbRows).Msg("solving")
	start := time.Now()

	cStd, aStd, bStd := lp.Convert(c, mat.NewDense(nbRows, n, g), h, nil, nil)
	optF, optX, err := lp.Simplex(cStd, aStd, bStd, 1e-10, nil)

	took := time.Since(start)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		log.Info().Str("model", m.Name).Dur("took", took).Str("status", backend.StatusInfeasible.String()).Msg("solve done")
		return backend.NewSolution(backend.StatusInfeasible, 0, nil), nil
	case errors.Is(err, lp.ErrUnbounded):
		log.Info().Str("model", m.Name).Dur("took", took).Str("status", backend.StatusUnbounded.String()).Msg("solve done")
		return backend.NewSolution(backend.StatusUnbounded, 0, nil), nil
	case err != nil:
		return backend.Solution{}, fmt.Errorf("simplex: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return backend.Solution{}, err
	}

	// lp.Convert splits each free variable into a positive and a negative
	// part; recover x from the first 2n standard-form columns.
	values := make(map[string]float64, n)
	for vid, v := range m.Variables {
		values[v.Name] = optX[vid] - optX[n+vid]
	}
	objective := optF
	if maximize {
		objective = -objective
	}
	objective += m.Objective.Offset

	log.Info().Str("model", m.Name).Dur("took", took).
		Str("status", backend.StatusOptimal.String()).Float64("objective", objective).Msg("solve done")
	return backend.NewSolution(backend.StatusOptimal, objective, values), nil
}

func negated(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = -v
	}
	return out
}
