// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

import "errors"

var (
	// ErrEmptyModel is returned when validating a model with no variables.
	ErrEmptyModel = errors.New("model has no variables")

	// ErrDuplicateVariable is recorded when two variables share a name.
	ErrDuplicateVariable = errors.New("duplicate variable name")

	// ErrInvalidBounds is recorded when a variable domain is empty or not a number.
	ErrInvalidBounds = errors.New("invalid variable bounds")

	// ErrInvalidExpr is recorded when an expression references a foreign or zero variable.
	ErrInvalidExpr = errors.New("invalid linear expression")

	// ErrDimensionMismatch is recorded when paired slices have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrObjectiveSet is recorded when SetObjective is called twice; a model
	// has exactly one objective.
	ErrObjectiveSet = errors.New("objective already set")

	// ErrInvalidCongruence is recorded when a congruence has a non-positive
	// modulus, an out of range residue, or targets a continuous variable.
	ErrInvalidCongruence = errors.New("invalid congruence")
)
