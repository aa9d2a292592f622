// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package tabular

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/consensys/optkit"
	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
)

var (
	// ErrNoUnits is returned for a table without unit rows.
	ErrNoUnits = errors.New("tabular: table has no units")

	// ErrDuplicateUnit is returned when two unit rows share a name.
	ErrDuplicateUnit = errors.New("tabular: duplicate unit name")

	// ErrNegativeCost is returned for a negative consumption coefficient.
	ErrNegativeCost = errors.New("tabular: negative consumption coefficient")

	// ErrNoUpperBound is returned when integer units are requested but a unit
	// consumes no resource, so no finite bound can be derived for it.
	ErrNoUpperBound = errors.New("tabular: cannot derive an upper bound for unit")
)

// Unit is one row of the coefficient table: the consumption of each resource
// plus the contribution to the objective.
type Unit struct {
	Name  string    `yaml:"name"`
	Costs []float64 `yaml:"costs"`
	Value float64   `yaml:"value"`
}

// Table is tabular resource/unit data: one column per resource (with its
// capacity), one row per unit. Resources may be left empty; resource names are
// then generated.
type Table struct {
	Name       string    `yaml:"name"`
	Resources  []string  `yaml:"resources"`
	Capacities []float64 `yaml:"capacities"`
	Units      []Unit    `yaml:"units"`
}

// Validate checks the table dimensions; it fails fast with a descriptive
// error rather than silently truncating rows.
func (t Table) Validate() error {
	if len(t.Units) == 0 {
		return ErrNoUnits
	}
	if len(t.Resources) > 0 && len(t.Resources) != len(t.Capacities) {
		return fmt.Errorf("%w: %d resource names but %d capacities", model.ErrDimensionMismatch, len(t.Resources), len(t.Capacities))
	}
	seen := make(map[string]struct{}, len(t.Units))
	for _, u := range t.Units {
		if u.Name == "" {
			return fmt.Errorf("%w: empty unit name", ErrNoUnits)
		}
		if _, ok := seen[u.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateUnit, u.Name)
		}
		seen[u.Name] = struct{}{}
		if len(u.Costs) != len(t.Capacities) {
			return fmt.Errorf("%w: unit %q has %d costs for %d capacities", model.ErrDimensionMismatch, u.Name, len(u.Costs), len(t.Capacities))
		}
		for j, c := range u.Costs {
			if c < 0 || math.IsNaN(c) {
				return fmt.Errorf("%w: unit %q consumes %v of %s", ErrNegativeCost, u.Name, c, t.resourceName(j))
			}
		}
	}
	return nil
}

func (t Table) resourceName(j int) string {
	if j < len(t.Resources) {
		return t.Resources[j]
	}
	return fmt.Sprintf("resource_%d", j)
}

// Option defines option for altering how Build derives a model from a table.
type Option func(*config) error

type config struct {
	kind       model.Kind
	low        float64
	high       float64 // NaN means "default": +Inf for continuous, derived for integer
	solverOpts []backend.Option
}

// WithIntegerUnits makes the unit variables integer. Unless WithUnitBounds is
// also given, each unit's upper bound is derived from the capacities (the
// tightest capacity/cost ratio), so the model stays finite for CP-SAT.
func WithIntegerUnits() Option {
	return func(c *config) error {
		c.kind = model.Integer
		return nil
	}
}

// WithUnitBounds overrides the default [0, +inf) domain of unit variables.
func WithUnitBounds(low, high float64) Option {
	return func(c *config) error {
		if math.IsNaN(low) || math.IsNaN(high) || low > high {
			return fmt.Errorf("%w: [%v, %v]", model.ErrInvalidBounds, low, high)
		}
		c.low, c.high = low, high
		return nil
	}
}

// WithSolverOptions specifies the backend options used by BuildAndSolve.
func WithSolverOptions(solverOpts ...backend.Option) Option {
	return func(c *config) error {
		c.solverOpts = solverOpts
		return nil
	}
}

// Build derives a model from the table: one variable per unit, one <=
// constraint per resource dimension, one objective summing unit values with
// the given direction.
func Build(t Table, dir model.Direction, opts ...Option) (*model.Model, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cfg := config{kind: model.Continuous, low: 0, high: math.NaN()}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	name := t.Name
	if name == "" {
		name = "tabular"
	}
	m := model.NewModel(name)

	vars := make([]model.Variable, len(t.Units))
	for i, u := range t.Units {
		high := cfg.high
		if math.IsNaN(high) {
			if cfg.kind == model.Integer {
				derived, err := deriveUpperBound(t, u)
				if err != nil {
					return nil, err
				}
				high = derived
			} else {
				high = math.Inf(1)
			}
		}
		vars[i] = m.NewVar(u.Name, cfg.low, high, cfg.kind)
	}

	for j, capacity := range t.Capacities {
		expr := model.NewLinearExpr()
		for i, u := range t.Units {
			expr.AddTerm(vars[i], u.Costs[j])
		}
		m.AddLessOrEqual(expr, capacity).WithName(t.resourceName(j))
	}

	obj := model.NewLinearExpr()
	for i, u := range t.Units {
		obj.AddTerm(vars[i], u.Value)
	}
	m.SetObjective(obj, dir)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// BuildAndSolve builds the model and routes it to a backend. Each call builds
// an independent model: no state is shared between calls. Infeasible and
// unbounded outcomes are reported in the Solution status, not as errors.
func BuildAndSolve(ctx context.Context, t Table, dir model.Direction, opts ...Option) (backend.Solution, error) {
	cfg := config{}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return backend.Solution{}, err
		}
	}
	m, err := Build(t, dir, opts...)
	if err != nil {
		return backend.Solution{}, err
	}
	return optkit.Solve(ctx, m, cfg.solverOpts...)
}

// deriveUpperBound returns the tightest floor(capacity/cost) over the
// resources the unit consumes. An integer unit consuming nothing has no
// derivable bound and needs WithUnitBounds.
func deriveUpperBound(t Table, u Unit) (float64, error) {
	bound := math.Inf(1)
	for j, c := range u.Costs {
		if c > 0 {
			if b := math.Floor(math.Max(t.Capacities[j], 0) / c); b < bound {
				bound = b
			}
		}
	}
	if math.IsInf(bound, 1) {
		return 0, fmt.Errorf("%w %q", ErrNoUpperBound, u.Name)
	}
	return bound, nil
}
