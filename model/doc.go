// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package model implements the optkit model builder API.
//
// A Model owns a set of bounded decision variables, a list of linear
// constraints, optional congruence constraints and at most one linear
// objective. Models are built once, validated, then handed to a solving
// backend; they hold no engine state and are independent from each other.
//
// Building a model never panics: malformed inputs (duplicate names, inverted
// bounds, foreign variables) are recorded and surfaced by Validate or by the
// backend, with a descriptive error.
package model
