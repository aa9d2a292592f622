// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package optkit

import (
	"context"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/backend/cpsat"
	"github.com/consensys/optkit/backend/simplex"
	"github.com/consensys/optkit/model"
)

// Solve routes the model to the appropriate backend: pure-continuous models go
// to SIMPLEX, anything carrying integer variables or congruences goes to
// CPSAT. Use WhichBackend to inspect the routing without solving.
func Solve(ctx context.Context, m *model.Model, opts ...backend.Option) (backend.Solution, error) {
	if m.IsContinuous() {
		return simplex.Solve(ctx, m, opts...)
	}
	return cpsat.Solve(ctx, m, opts...)
}

// WhichBackend returns the backend Solve picks for the given model.
func WhichBackend(m *model.Model) backend.ID {
	if m.IsContinuous() {
		return backend.SIMPLEX
	}
	return backend.CPSAT
}
