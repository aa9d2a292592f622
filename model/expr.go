// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

import (
	"fmt"
	"sort"
	"strings"
)

// A Term is a coefficient applied to a model variable.
type Term struct {
	VID   int32
	Coeff float64
}

// LinearExpr is a linear combination of model variables plus a constant
// offset. The zero value is an empty expression, ready to use.
type LinearExpr struct {
	Terms  []Term
	Offset float64

	m   *Model // model of the first variable added, for cross-model checks
	err error  // first building error
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates a LinearExpr containing the constant c.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{Offset: c}
}

// Add appends the given variable with coefficient 1.
func (e *LinearExpr) Add(v Variable) *LinearExpr {
	return e.AddTerm(v, 1)
}

// AddTerm appends coeff·v to the expression.
func (e *LinearExpr) AddTerm(v Variable, coeff float64) *LinearExpr {
	if v.m == nil {
		e.setErr(fmt.Errorf("%w: zero Variable in expression", ErrInvalidExpr))
		return e
	}
	if e.m == nil {
		e.m = v.m
	} else if e.m != v.m {
		e.setErr(fmt.Errorf("%w: variable %q belongs to another model", ErrInvalidExpr, v.Name()))
		return e
	}
	e.Terms = append(e.Terms, Term{VID: v.vid, Coeff: coeff})
	return e
}

// AddConstant adds c to the expression offset.
func (e *LinearExpr) AddConstant(c float64) *LinearExpr {
	e.Offset += c
	return e
}

// AddSum appends all given variables with coefficient 1.
func (e *LinearExpr) AddSum(vs ...Variable) *LinearExpr {
	for _, v := range vs {
		e.AddTerm(v, 1)
	}
	return e
}

// AddWeightedSum appends coeffs[i]·vs[i] for each i. The two slices must have
// the same length.
func (e *LinearExpr) AddWeightedSum(vs []Variable, coeffs []float64) *LinearExpr {
	if len(vs) != len(coeffs) {
		e.setErr(fmt.Errorf("%w: %d variables but %d coefficients", ErrDimensionMismatch, len(vs), len(coeffs)))
		return e
	}
	for i, v := range vs {
		e.AddTerm(v, coeffs[i])
	}
	return e
}

func (e *LinearExpr) setErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// normalize returns the terms sorted by variable index, with duplicate
// variables merged and zero coefficients dropped.
func (e *LinearExpr) normalize() []Term {
	terms := make([]Term, len(e.Terms))
	copy(terms, e.Terms)
	sort.Slice(terms, func(i, j int) bool { return terms[i].VID < terms[j].VID })

	out := terms[:0]
	for _, t := range terms {
		if n := len(out); n > 0 && out[n-1].VID == t.VID {
			out[n-1].Coeff += t.Coeff
			continue
		}
		out = append(out, t)
	}
	n := 0
	for _, t := range out {
		if t.Coeff != 0 {
			out[n] = t
			n++
		}
	}
	return out[:n]
}

// String renders the expression against its model's variable names; it is
// meant for logs and error messages.
func (e *LinearExpr) String() string {
	var sbb strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			sbb.WriteString(" + ")
		}
		name := fmt.Sprintf("v%d", t.VID)
		if e.m != nil && int(t.VID) < len(e.m.Variables) {
			name = e.m.Variables[t.VID].Name
		}
		fmt.Fprintf(&sbb, "%v*%s", t.Coeff, name)
	}
	if e.Offset != 0 || len(e.Terms) == 0 {
		if len(e.Terms) > 0 {
			sbb.WriteString(" + ")
		}
		fmt.Fprintf(&sbb, "%v", e.Offset)
	}
	return sbb.String()
}
