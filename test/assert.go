// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package test provides testing helpers for optkit models.
package test

import (
	"context"
	"testing"

	"github.com/consensys/optkit"
	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// engines report floats; objective and value comparisons use this tolerance.
const tolerance = 1e-6

// Assert is a helper to test optkit models. It embeds testify's require and
// adds solve-and-check methods.
type Assert struct {
	t *testing.T
	*require.Assertions
}

// NewAssert returns an Assert helper embedding require.Assertions.
func NewAssert(t *testing.T) *Assert {
	t.Helper()
	return &Assert{t, require.New(t)}
}

// SolvesTo solves m and requires an optimal outcome with the given objective
// value. When values is non-nil the assignment must match within tolerance.
func (a *Assert) SolvesTo(m *model.Model, objective float64, values map[string]float64, opts ...backend.Option) backend.Solution {
	a.t.Helper()
	sol, err := optkit.Solve(context.Background(), m, opts...)
	a.NoError(err, "solving %s", m.Name)
	a.Equal(backend.StatusOptimal, sol.Status(), "status of %s", m.Name)
	a.InDelta(objective, sol.Objective(), tolerance, "objective of %s", m.Name)
	if values != nil {
		diff := cmp.Diff(values, sol.Values(), cmpopts.EquateApprox(0, tolerance))
		a.Empty(diff, "assignment of %s", m.Name)
	}
	return sol
}

// Infeasible solves m and requires the engine to report infeasibility, with
// no error: infeasibility is an expected outcome.
func (a *Assert) Infeasible(m *model.Model, opts ...backend.Option) {
	a.t.Helper()
	sol, err := optkit.Solve(context.Background(), m, opts...)
	a.NoError(err, "solving %s", m.Name)
	a.Equal(backend.StatusInfeasible, sol.Status(), "status of %s", m.Name)
}

// Idempotent solves m twice and requires byte-identical outcomes: same
// status, same objective, same assignment.
func (a *Assert) Idempotent(m *model.Model, opts ...backend.Option) {
	a.t.Helper()
	first, err := optkit.Solve(context.Background(), m, opts...)
	a.NoError(err, "first solve of %s", m.Name)
	second, err := optkit.Solve(context.Background(), m, opts...)
	a.NoError(err, "second solve of %s", m.Name)

	a.Equal(first.Status(), second.Status())
	a.Equal(first.Objective(), second.Objective())
	a.Empty(cmp.Diff(first.Values(), second.Values()))
}
