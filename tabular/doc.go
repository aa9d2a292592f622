// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package tabular derives optimization models from resource tables.
//
// A Table lists named resources with capacities, and units that consume a
// fixed amount of each resource while contributing a value to the objective.
// Build turns the table into an optkit model with one variable per unit, one
// capacity constraint per resource dimension, and one objective summing the
// unit values; BuildAndSolve additionally routes the model to a backend.
//
// This is the canonical "parametrized model builder" pattern: the same
// function covers army composition, rations, knapsacks and any other
// consumption/capacity problem expressed as a table.
package tabular
