// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package simplex_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/backend/simplex"
	"github.com/consensys/optkit/model"
	"github.com/consensys/optkit/test"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// knapsack returns the continuous relaxation of the ration model with the
// given carrying capacity.
func knapsack(capacity float64) *model.Model {
	m := model.NewModel("ration-lp")
	bread := m.NewContinuousVar("bread", 0, math.Inf(1))
	meat := m.NewContinuousVar("meat", 0, math.Inf(1))
	beer := m.NewContinuousVar("beer", 0, math.Inf(1))
	m.AddLessOrEqual(model.NewLinearExpr().Add(bread).AddTerm(meat, 3).AddTerm(beer, 7), capacity)
	m.SetObjective(model.NewLinearExpr().AddTerm(bread, 3).AddTerm(meat, 10).AddTerm(beer, 26), model.Maximize)
	return m
}

func TestBoxOptimum(t *testing.T) {
	assert := test.NewAssert(t)

	m := model.NewModel("box")
	x := m.NewContinuousVar("x", 0, 2)
	y := m.NewContinuousVar("y", 0, 3)
	m.AddLessOrEqual(model.NewLinearExpr().AddSum(x, y), 10)
	m.SetObjective(model.NewLinearExpr().AddSum(x, y), model.Maximize)

	assert.SolvesTo(m, 5, map[string]float64{"x": 2, "y": 3})
}

func TestRationRelaxation(t *testing.T) {
	assert := require.New(t)

	// best value density is beer (26/7); the relaxation packs 19/7 of it
	sol, err := simplex.Solve(context.Background(), knapsack(19))
	assert.NoError(err)
	assert.Equal(backend.StatusOptimal, sol.Status())
	assert.InDelta(494.0/7.0, sol.Objective(), 1e-6)
	assert.InDelta(19.0/7.0, sol.Value("beer"), 1e-6)
	assert.InDelta(0, sol.Value("bread"), 1e-6)
}

func TestZeroCapacity(t *testing.T) {
	assert := test.NewAssert(t)
	assert.SolvesTo(knapsack(0), 0, map[string]float64{"bread": 0, "meat": 0, "beer": 0})
}

func TestEqualityAndGreaterOrEqual(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("senses")
	x := m.NewContinuousVar("x", 0, 3)
	y := m.NewContinuousVar("y", 0, 3)
	m.AddEquality(model.NewLinearExpr().AddSum(x, y), 4)
	m.AddGreaterOrEqual(model.NewLinearExpr().Add(y), 1)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	sol, err := simplex.Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(backend.StatusOptimal, sol.Status())
	assert.InDelta(3, sol.Objective(), 1e-6)
	assert.InDelta(1, sol.Value("y"), 1e-6)
}

func TestInfeasible(t *testing.T) {
	assert := test.NewAssert(t)

	m := model.NewModel("infeasible")
	x := m.NewContinuousVar("x", 0, 2)
	m.AddGreaterOrEqual(model.NewLinearExpr().Add(x), 5)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	assert.Infeasible(m)
}

func TestUnbounded(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("unbounded")
	x := m.NewContinuousVar("x", 0, math.Inf(1))
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	sol, err := simplex.Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(backend.StatusUnbounded, sol.Status())
}

func TestMinimization(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("diet")
	x := m.NewContinuousVar("x", 0, math.Inf(1))
	y := m.NewContinuousVar("y", 0, math.Inf(1))
	m.AddGreaterOrEqual(model.NewLinearExpr().AddTerm(x, 2).Add(y), 4)
	m.SetObjective(model.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 2), model.Minimize)

	sol, err := simplex.Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(backend.StatusOptimal, sol.Status())
	// x covers the requirement at 1.5 per unit, cheaper than y's 2 per unit
	assert.InDelta(6, sol.Objective(), 1e-6)
	assert.InDelta(2, sol.Value("x"), 1e-6)
}

func TestIdempotence(t *testing.T) {
	assert := test.NewAssert(t)
	assert.Idempotent(knapsack(19))
}

func TestRejectsIntegerModels(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("mip")
	x := m.NewIntVar("x", 0, 10)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	_, err := simplex.Solve(context.Background(), m)
	assert.ErrorIs(err, simplex.ErrNotContinuous)
}

func TestRequiresObjective(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("sat")
	x := m.NewContinuousVar("x", 0, 1)
	m.AddLessOrEqual(model.NewLinearExpr().Add(x), 1)

	_, err := simplex.Solve(context.Background(), m)
	assert.ErrorIs(err, simplex.ErrNoObjective)
}

func TestExpiredContext(t *testing.T) {
	assert := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := simplex.Solve(ctx, knapsack(19))
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func TestMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40

	properties := gopter.NewProperties(parameters)
	properties.Property("relaxing the capacity cannot decrease the optimum", prop.ForAll(
		func(a, b float64) bool {
			tight, loose := math.Min(a, b), math.Max(a, b)

			solTight, err := simplex.Solve(context.Background(), knapsack(tight))
			if err != nil || solTight.Status() != backend.StatusOptimal {
				return false
			}
			solLoose, err := simplex.Solve(context.Background(), knapsack(loose))
			if err != nil || solLoose.Status() != backend.StatusOptimal {
				return false
			}
			return solLoose.Objective() >= solTight.Objective()-1e-9
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
