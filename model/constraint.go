// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

// Sense is the comparison operator of a linear constraint.
type Sense uint8

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "=="
	default:
		return "?"
	}
}

// LinearConstraint is the serializable form of sum(Terms) Sense RHS.
// Constraints are created once at model build time and immutable afterwards.
type LinearConstraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Congruence constrains an integer variable to a residue class:
// variable ≡ Residue (mod Mod). Only the CPSAT backend accepts congruences.
type Congruence struct {
	VID     int32
	Mod     int64
	Residue int64
}

// Constraint is a reference to a linear constraint in a Model.
type Constraint struct {
	ci int32
	m  *Model
}

// WithName sets the constraint name, typically the resource it guards.
func (c Constraint) WithName(name string) Constraint {
	c.m.LinearConstraints[c.ci].Name = name
	return c
}

// Name returns the constraint name.
func (c Constraint) Name() string {
	return c.m.LinearConstraints[c.ci].Name
}

// Index returns the index of the constraint in its model.
func (c Constraint) Index() int32 { return c.ci }
