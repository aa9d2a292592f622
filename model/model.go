// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/optkit/debug"
	"github.com/consensys/optkit/logger"
	"github.com/consensys/optkit/profile"
)

// Direction is the optimization direction of the objective.
type Direction uint8

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Objective is the serializable form of the model objective.
type Objective struct {
	Terms     []Term
	Offset    float64
	Direction Direction
}

// Model is a linear/integer optimization model. Exported fields form the
// serialized representation; use the builder methods to mutate.
type Model struct {
	Name              string
	Variables         []Var
	LinearConstraints []LinearConstraint
	ModConstraints    []Congruence
	HasObjective      bool
	Objective         Objective

	byName map[string]int32
	err    error // first building error, surfaced by Validate
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:   name,
		byName: make(map[string]int32),
	}
}

// NewVar creates a bounded variable and returns a reference to it.
//
// Name must be unique and non-empty; low <= high. Violations are recorded and
// reported by Validate, the returned reference stays usable so builders can
// chain without nil checks.
func (m *Model) NewVar(name string, low, high float64, kind Kind) Variable {
	if name == "" {
		m.recordErr(fmt.Errorf("%w: empty name", ErrInvalidBounds))
	} else if _, ok := m.byName[name]; ok {
		m.recordErr(fmt.Errorf("%w: %q", ErrDuplicateVariable, name))
	}
	if math.IsNaN(low) || math.IsNaN(high) || low > high {
		m.recordErr(fmt.Errorf("%w: %q has domain [%v, %v]", ErrInvalidBounds, name, low, high))
	}

	vid := int32(len(m.Variables))
	m.Variables = append(m.Variables, Var{Name: name, Low: low, High: high, Kind: kind})
	if m.byName == nil {
		m.byName = make(map[string]int32)
	}
	m.byName[name] = vid
	return Variable{vid: vid, m: m}
}

// NewIntVar creates an integer variable with domain [low, high].
func (m *Model) NewIntVar(name string, low, high int64) Variable {
	return m.NewVar(name, float64(low), float64(high), Integer)
}

// NewContinuousVar creates a continuous variable with domain [low, high).
// Use math.Inf(1) for an unbounded high.
func (m *Model) NewContinuousVar(name string, low, high float64) Variable {
	return m.NewVar(name, low, high, Continuous)
}

// Var returns a reference to the variable with the given name.
func (m *Model) Var(name string) (Variable, bool) {
	vid, ok := m.byName[name]
	if !ok {
		return Variable{}, false
	}
	return Variable{vid: vid, m: m}, true
}

// AddLessOrEqual adds the constraint e <= rhs.
func (m *Model) AddLessOrEqual(e *LinearExpr, rhs float64) Constraint {
	return m.addConstraint(e, LessOrEqual, rhs)
}

// AddGreaterOrEqual adds the constraint e >= rhs.
func (m *Model) AddGreaterOrEqual(e *LinearExpr, rhs float64) Constraint {
	return m.addConstraint(e, GreaterOrEqual, rhs)
}

// AddEquality adds the constraint e == rhs.
func (m *Model) AddEquality(e *LinearExpr, rhs float64) Constraint {
	return m.addConstraint(e, Equal, rhs)
}

func (m *Model) addConstraint(e *LinearExpr, sense Sense, rhs float64) Constraint {
	if err := m.checkExpr(e); err != nil {
		m.recordErr(err)
	}
	profile.RecordConstraint()

	ci := int32(len(m.LinearConstraints))
	m.LinearConstraints = append(m.LinearConstraints, LinearConstraint{
		Terms: e.normalize(),
		Sense: sense,
		// the expression offset folds into the right-hand side
		RHS: rhs - e.Offset,
	})
	return Constraint{ci: ci, m: m}
}

// AddModulo adds the congruence v ≡ residue (mod mod). Only integer variables
// may carry congruences, and only the CPSAT backend solves them.
func (m *Model) AddModulo(v Variable, mod, residue int64) {
	if v.m != m {
		m.recordErr(fmt.Errorf("%w: foreign variable", ErrInvalidCongruence))
		return
	}
	if mod <= 0 || residue < 0 || residue >= mod {
		m.recordErr(fmt.Errorf("%w: %q ≡ %d (mod %d)", ErrInvalidCongruence, v.Name(), residue, mod))
		return
	}
	if v.Kind() != Integer {
		m.recordErr(fmt.Errorf("%w: %q is continuous", ErrInvalidCongruence, v.Name()))
		return
	}
	profile.RecordConstraint()
	m.ModConstraints = append(m.ModConstraints, Congruence{VID: v.vid, Mod: mod, Residue: residue})
}

// SetObjective declares the model objective. A model has exactly one
// objective; a second call is recorded as an error.
func (m *Model) SetObjective(e *LinearExpr, dir Direction) {
	if m.HasObjective {
		m.recordErr(ErrObjectiveSet)
		return
	}
	if err := m.checkExpr(e); err != nil {
		m.recordErr(err)
	}
	m.HasObjective = true
	m.Objective = Objective{
		Terms:     e.normalize(),
		Offset:    e.Offset,
		Direction: dir,
	}
}

// Minimize sets the objective to minimize e.
func (m *Model) Minimize(e *LinearExpr) { m.SetObjective(e, Minimize) }

// Maximize sets the objective to maximize e.
func (m *Model) Maximize(e *LinearExpr) { m.SetObjective(e, Maximize) }

// IsContinuous reports whether every variable is continuous and the model has
// no congruence; such models route to the SIMPLEX backend.
func (m *Model) IsContinuous() bool {
	for _, v := range m.Variables {
		if v.Kind != Continuous {
			return false
		}
	}
	return len(m.ModConstraints) == 0
}

// IsIntegral reports whether every variable is integer.
func (m *Model) IsIntegral() bool {
	for _, v := range m.Variables {
		if v.Kind != Integer {
			return false
		}
	}
	return true
}

// NbVariables returns the number of variables in the model.
func (m *Model) NbVariables() int { return len(m.Variables) }

// NbConstraints returns the number of constraints (linear + congruence).
func (m *Model) NbConstraints() int {
	return len(m.LinearConstraints) + len(m.ModConstraints)
}

// Validate returns the first error recorded while building, or an error if the
// model is structurally unusable. Variables referenced by no constraint and
// not in the objective are only logged.
func (m *Model) Validate() error {
	if m.err != nil {
		return m.err
	}
	if len(m.Variables) == 0 {
		return ErrEmptyModel
	}

	referenced := bitset.New(uint(len(m.Variables)))
	for _, c := range m.LinearConstraints {
		for _, t := range c.Terms {
			if int(t.VID) >= len(m.Variables) {
				return fmt.Errorf("%w: constraint references variable %d of %d", ErrInvalidExpr, t.VID, len(m.Variables))
			}
			referenced.Set(uint(t.VID))
		}
	}
	for _, c := range m.ModConstraints {
		if int(c.VID) >= len(m.Variables) {
			return fmt.Errorf("%w: congruence references variable %d of %d", ErrInvalidCongruence, c.VID, len(m.Variables))
		}
		referenced.Set(uint(c.VID))
	}
	if m.HasObjective {
		for _, t := range m.Objective.Terms {
			if int(t.VID) >= len(m.Variables) {
				return fmt.Errorf("%w: objective references variable %d of %d", ErrInvalidExpr, t.VID, len(m.Variables))
			}
			referenced.Set(uint(t.VID))
		}
	}

	if referenced.Count() != uint(len(m.Variables)) {
		log := logger.Logger()
		for vid, v := range m.Variables {
			if !referenced.Test(uint(vid)) {
				log.Warn().Str("model", m.Name).Str("variable", v.Name).Msg("variable not referenced by any constraint or objective")
			}
		}
	}
	return nil
}

func (m *Model) checkExpr(e *LinearExpr) error {
	if e.err != nil {
		return e.err
	}
	if e.m != nil && e.m != m {
		return fmt.Errorf("%w: expression built on another model", ErrInvalidExpr)
	}
	for _, t := range e.Terms {
		if int(t.VID) >= len(m.Variables) {
			return fmt.Errorf("%w: unknown variable index %d", ErrInvalidExpr, t.VID)
		}
	}
	return nil
}

func (m *Model) recordErr(err error) {
	if m.err != nil {
		return
	}
	if debug.Debug {
		// in debug builds, the error carries the stack of the offending call
		err = fmt.Errorf("%w\n%s", err, debug.Stack())
	}
	m.err = err
}
