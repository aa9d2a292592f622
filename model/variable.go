// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

import "math"

// Kind describes the domain of a variable.
type Kind uint8

const (
	// Continuous variables take any real value within their bounds.
	Continuous Kind = iota
	// Integer variables take integer values within their bounds.
	Integer
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	default:
		return "unknown"
	}
}

// Var is the serializable description of a decision variable.
type Var struct {
	Name string
	Low  float64
	High float64 // may be +Inf
	Kind Kind
}

// Variable is a reference to a variable in a Model.
//
// The zero Variable is not attached to any model and is rejected by all
// expression and constraint builders.
type Variable struct {
	vid int32
	m   *Model
}

// Name returns the variable name.
func (v Variable) Name() string {
	return v.m.Variables[v.vid].Name
}

// VID returns the index of the variable in its model.
func (v Variable) VID() int32 { return v.vid }

// Domain returns the variable bounds.
func (v Variable) Domain() (low, high float64) {
	d := v.m.Variables[v.vid]
	return d.Low, d.High
}

// Kind returns the variable kind.
func (v Variable) Kind() Kind {
	return v.m.Variables[v.vid].Kind
}

// BoundedBelow reports whether the variable has a finite lower bound.
func (d Var) BoundedBelow() bool { return !math.IsInf(d.Low, -1) }

// BoundedAbove reports whether the variable has a finite upper bound.
func (d Var) BoundedAbove() bool { return !math.IsInf(d.High, 1) }
