// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package optkit provides a high level API to build linear, mixed-integer and
// constraint optimization models from in-memory data, and to solve them with
// external engines.
//
// optkit supports the following solving backends:
//   - CPSAT (OR-Tools CP-SAT, for integer and congruence models)
//   - SIMPLEX (gonum, for continuous linear models)
//
// Models are built with the optkit/model package, or derived from tabular
// resource data with the optkit/tabular package. Solving, search and numeric
// computation are always delegated to the backend engines; optkit only builds
// models and translates results.
package optkit

import (
	"github.com/blang/semver/v4"

	"github.com/consensys/optkit/backend"
)

var Version = semver.MustParse("0.3.0")

// Backends returns the solving backends supported by optkit.
func Backends() []backend.ID {
	return []backend.ID{
		backend.CPSAT,
		backend.SIMPLEX,
	}
}
