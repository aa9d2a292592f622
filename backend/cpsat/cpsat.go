// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package cpsat solves integer optkit models with the OR-Tools CP-SAT engine.
//
// The package only translates models into the cpmodel proto builder and maps
// engine statuses back; all propagation and search belongs to OR-Tools.
// CP-SAT works on finite integer domains: every variable must be integer with
// finite bounds, and every coefficient, bound and right-hand side must be an
// integral value.
package cpsat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"
)

var (
	// ErrNotIntegral is returned when the model has continuous variables, or a
	// coefficient, bound or right-hand side with a fractional part. CP-SAT has
	// no continuous relaxation; route those models to the simplex backend.
	ErrNotIntegral = errors.New("cpsat: model is not integral")

	// ErrUnboundedDomain is returned when a variable has an infinite bound;
	// CP-SAT requires finite domains.
	ErrUnboundedDomain = errors.New("cpsat: variable domain must be finite")
)

// Solve translates m into a CP-SAT model and delegates solving to OR-Tools.
//
// Infeasible models are reported in the Solution status with a nil error. A
// context deadline or the WithTimeLimit option caps the engine's search time;
// when the search is cut short the engine may report Feasible or Unknown.
func Solve(ctx context.Context, m *model.Model, opts ...backend.Option) (backend.Solution, error) {
	cfg, err := backend.NewConfig(opts...)
	if err != nil {
		return backend.Solution{}, err
	}
	if err := m.Validate(); err != nil {
		return backend.Solution{}, err
	}
	if err := ctx.Err(); err != nil {
		return backend.Solution{}, err
	}

	b, ivs, err := translate(m)
	if err != nil {
		return backend.Solution{}, err
	}
	if m.HasObjective {
		obj := cpmodel.NewLinearExpr()
		for _, t := range m.Objective.Terms {
			coeff, err := asInt64(t.Coeff, "objective coefficient")
			if err != nil {
				return backend.Solution{}, err
			}
			obj.AddTerm(ivs[t.VID], coeff)
		}
		offset, err := asInt64(m.Objective.Offset, "objective offset")
		if err != nil {
			return backend.Solution{}, err
		}
		obj.AddConstant(offset)
		if m.Objective.Direction == model.Maximize {
			b.Maximize(obj)
		} else {
			b.Minimize(obj)
		}
	}

	mdl, err := b.Model()
	if err != nil {
		return backend.Solution{}, fmt.Errorf("cpsat: instantiating model: %w", err)
	}

	log := cfg.Logger
	log.Debug().Str("backend", backend.CPSAT.String()).Str("model", m.Name).
		Int("nbVariables", m.NbVariables()).Int("nbConstraints", m.NbConstraints()).Msg("solving")
	start := time.Now()

	resp, err := cpmodel.SolveCpModelWithParameters(mdl, solveParameters(ctx, cfg))
	if err != nil {
		return backend.Solution{}, fmt.Errorf("cpsat: %w", err)
	}

	status := mapStatus(resp.GetStatus())
	sol := backend.NewSolution(status, resp.GetObjectiveValue(), nil)
	if status == backend.StatusOptimal || status == backend.StatusFeasible {
		values := make(map[string]float64, len(ivs))
		for vid, v := range m.Variables {
			values[v.Name] = float64(cpmodel.SolutionIntegerValue(resp, ivs[vid]))
		}
		sol = backend.NewSolution(status, resp.GetObjectiveValue(), values)
	}

	log.Info().Str("model", m.Name).Dur("took", time.Since(start)).
		Str("status", status.String()).Float64("objective", sol.Objective()).Msg("solve done")
	return sol, nil
}

// translate builds the cpmodel variables and constraints for m.
func translate(m *model.Model) (*cpmodel.Builder, []cpmodel.IntVar, error) {
	b := cpmodel.NewCpModelBuilder()

	ivs := make([]cpmodel.IntVar, len(m.Variables))
	for vid, v := range m.Variables {
		if v.Kind != model.Integer {
			return nil, nil, fmt.Errorf("%w: variable %q is %s", ErrNotIntegral, v.Name, v.Kind)
		}
		if !v.BoundedBelow() || !v.BoundedAbove() {
			return nil, nil, fmt.Errorf("%w: variable %q has domain [%v, %v]", ErrUnboundedDomain, v.Name, v.Low, v.High)
		}
		low, err := asInt64(v.Low, "lower bound of "+v.Name)
		if err != nil {
			return nil, nil, err
		}
		high, err := asInt64(v.High, "upper bound of "+v.Name)
		if err != nil {
			return nil, nil, err
		}
		ivs[vid] = b.NewIntVar(low, high).WithName(v.Name)
	}

	for _, c := range m.LinearConstraints {
		expr := cpmodel.NewLinearExpr()
		for _, t := range c.Terms {
			coeff, err := asInt64(t.Coeff, "coefficient in constraint "+c.Name)
			if err != nil {
				return nil, nil, err
			}
			expr.AddTerm(ivs[t.VID], coeff)
		}
		rhs, err := asInt64(c.RHS, "right-hand side of constraint "+c.Name)
		if err != nil {
			return nil, nil, err
		}
		var ct cpmodel.Constraint
		switch c.Sense {
		case model.LessOrEqual:
			ct = b.AddLessOrEqual(expr, cpmodel.NewConstant(rhs))
		case model.GreaterOrEqual:
			ct = b.AddGreaterOrEqual(expr, cpmodel.NewConstant(rhs))
		case model.Equal:
			ct = b.AddEquality(expr, cpmodel.NewConstant(rhs))
		}
		if c.Name != "" {
			ct.WithName(c.Name)
		}
	}

	for _, c := range m.ModConstraints {
		b.AddModuloEquality(cpmodel.NewConstant(c.Residue), ivs[c.VID], cpmodel.NewConstant(c.Mod))
	}

	return b, ivs, nil
}

func solveParameters(ctx context.Context, cfg backend.Config) *sppb.SatParameters {
	params := &sppb.SatParameters{}
	limit := cfg.TimeLimit
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		if d <= 0 {
			// deadline expired since the entry check; the engine must return
			// immediately rather than search unbounded
			d = time.Nanosecond
		}
		if limit == 0 || d < limit {
			limit = d
		}
	}
	if limit > 0 {
		params.MaxTimeInSeconds = proto.Float64(limit.Seconds())
	}
	return params
}

func mapStatus(s cmpb.CpSolverStatus) backend.Status {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return backend.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return backend.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return backend.StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return backend.StatusInvalid
	default:
		return backend.StatusUnknown
	}
}

func asInt64(f float64, what string) (int64, error) {
	if math.Trunc(f) != f || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s is %v", ErrNotIntegral, what, f)
	}
	return int64(f), nil
}
