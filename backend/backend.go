// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package backend defines the solving backends that consume models built with
// optkit/model, and the Solution type they produce.
package backend

import (
	"math"
	"sort"
)

// ID represent a unique ID for a solving backend
type ID uint16

const (
	UNKNOWN ID = iota
	CPSAT
	SIMPLEX
)

// Implemented return the list of solving backends implemented in optkit
func Implemented() []ID {
	return []ID{CPSAT, SIMPLEX}
}

// String returns the string representation of a backend
func (id ID) String() string {
	switch id {
	case CPSAT:
		return "cpsat"
	case SIMPLEX:
		return "simplex"
	default:
		return "unknown"
	}
}

// Status is the outcome reported by an engine for one solve call.
//
// Infeasible and Unbounded are expected negative outcomes: Solve returns them
// in the Solution with a nil error, the caller decides how to report.
type Status uint8

const (
	StatusUnknown Status = iota
	// StatusOptimal: the assignment is feasible and achieves the best objective value.
	StatusOptimal
	// StatusFeasible: the assignment satisfies all constraints, optimality not proven.
	StatusFeasible
	// StatusInfeasible: no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded: the objective can be improved without limit.
	StatusUnbounded
	// StatusInvalid: the engine rejected the model.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Solution is the read-only result of one solve call.
type Solution struct {
	status    Status
	objective float64
	values    map[string]float64
}

// NewSolution is used by backend implementations to assemble their result.
// The values map is not copied; the backend must not retain it.
func NewSolution(status Status, objective float64, values map[string]float64) Solution {
	return Solution{status: status, objective: objective, values: values}
}

// Status returns the solver status.
func (s Solution) Status() Status { return s.status }

// Feasible reports whether the solution carries a usable assignment.
func (s Solution) Feasible() bool {
	return s.status == StatusOptimal || s.status == StatusFeasible
}

// Objective returns the objective value reached by the assignment.
func (s Solution) Objective() float64 { return s.objective }

// Value returns the assigned value of the named variable, exactly as reported
// by the engine. Continuous engines may report near-integer floats; no
// rounding is applied here (see IntValue).
func (s Solution) Value(name string) float64 {
	return s.values[name]
}

// IntValue returns the assigned value rounded to the nearest integer. This is
// the explicit opt-in for callers that want integral results out of a
// continuous engine; integral backends report integers already.
func (s Solution) IntValue(name string) int64 {
	return int64(math.Round(s.values[name]))
}

// VariableNames returns the assigned variable names, sorted.
func (s Solution) VariableNames() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns a copy of the assignment.
func (s Solution) Values() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
