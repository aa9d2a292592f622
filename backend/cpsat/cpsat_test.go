// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cpsat_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/backend/cpsat"
	"github.com/consensys/optkit/model"
	"github.com/consensys/optkit/tabular"
	"github.com/consensys/optkit/test"
	"github.com/stretchr/testify/require"
)

func rationTable() tabular.Table {
	return tabular.Table{
		Name:       "ration",
		Resources:  []string{"capacity"},
		Capacities: []float64{19},
		Units: []tabular.Unit{
			{Name: "bread", Costs: []float64{1}, Value: 3},
			{Name: "meat", Costs: []float64{3}, Value: 10},
			{Name: "beer", Costs: []float64{7}, Value: 26},
		},
	}
}

// rationFeasibility is the ration model stripped of its objective, for
// enumeration.
func rationFeasibility() *model.Model {
	m := model.NewModel("ration-feasibility")
	bread := m.NewIntVar("bread", 0, 19)
	meat := m.NewIntVar("meat", 0, 6)
	beer := m.NewIntVar("beer", 0, 2)
	m.AddLessOrEqual(model.NewLinearExpr().Add(bread).AddTerm(meat, 3).AddTerm(beer, 7), 19)
	return m
}

func TestCongruence(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("congruence")
	army := m.NewIntVar("army", 1, 10000)
	m.AddModulo(army, 13, 0)
	m.AddModulo(army, 19, 0)
	m.AddModulo(army, 37, 0)

	sol, err := cpsat.Solve(context.Background(), m)
	assert.NoError(err)
	assert.True(sol.Feasible())
	// 13·19·37 is the only multiple of all three below 10000
	assert.Equal(int64(9139), sol.IntValue("army"))
}

func TestRationOptimum(t *testing.T) {
	assert := require.New(t)

	m, err := tabular.Build(rationTable(), model.Maximize, tabular.WithIntegerUnits())
	assert.NoError(err)

	sol, err := cpsat.Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(backend.StatusOptimal, sol.Status())
	assert.InDelta(68, sol.Objective(), 1e-9)

	// the optimum must spend the capacity within budget
	spent := sol.IntValue("bread") + 3*sol.IntValue("meat") + 7*sol.IntValue("beer")
	assert.LessOrEqual(spent, int64(19))
}

func TestEnumerateRation(t *testing.T) {
	assert := require.New(t)

	solutions, err := cpsat.EnumerateAll(context.Background(), rationFeasibility())
	assert.NoError(err)
	assert.Len(solutions, 121)

	for _, sol := range solutions {
		spent := sol.IntValue("bread") + 3*sol.IntValue("meat") + 7*sol.IntValue("beer")
		assert.LessOrEqual(spent, int64(19))
	}
}

func TestEnumerateInfeasible(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("no-points")
	x := m.NewIntVar("x", 2, 3)
	m.AddLessOrEqual(model.NewLinearExpr().Add(x), 1)

	solutions, err := cpsat.EnumerateAll(context.Background(), m)
	assert.NoError(err)
	assert.Empty(solutions)
}

func TestEnumerateRejectsObjective(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("objective")
	x := m.NewIntVar("x", 0, 1)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	_, err := cpsat.EnumerateAll(context.Background(), m)
	assert.ErrorIs(err, cpsat.ErrHasObjective)
}

func TestZeroCapacity(t *testing.T) {
	assert := require.New(t)

	table := rationTable()
	table.Capacities = []float64{0}

	m, err := tabular.Build(table, model.Maximize, tabular.WithIntegerUnits())
	assert.NoError(err)

	sol, err := cpsat.Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(backend.StatusOptimal, sol.Status())
	assert.Zero(sol.Objective())
	for _, name := range sol.VariableNames() {
		assert.Zero(sol.IntValue(name))
	}
}

func TestInfeasible(t *testing.T) {
	assert := test.NewAssert(t)

	m := model.NewModel("infeasible")
	x := m.NewIntVar("x", 2, 3)
	m.AddLessOrEqual(model.NewLinearExpr().Add(x), 1)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	assert.Infeasible(m)
}

func TestIdempotence(t *testing.T) {
	assert := test.NewAssert(t)

	m, err := tabular.Build(rationTable(), model.Maximize, tabular.WithIntegerUnits())
	assert.NoError(err)
	assert.Idempotent(m)
}

func TestExpiredContext(t *testing.T) {
	assert := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	m := rationFeasibility()
	_, err := cpsat.Solve(ctx, m)
	assert.ErrorIs(err, context.DeadlineExceeded)

	_, err = cpsat.EnumerateAll(ctx, m)
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func TestRejectsContinuous(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("lp")
	x := m.NewContinuousVar("x", 0, 10)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	_, err := cpsat.Solve(context.Background(), m)
	assert.ErrorIs(err, cpsat.ErrNotIntegral)
}

func TestRejectsUnboundedDomain(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("open")
	x := m.NewVar("x", 0, math.Inf(1), model.Integer)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Minimize)

	_, err := cpsat.Solve(context.Background(), m)
	assert.ErrorIs(err, cpsat.ErrUnboundedDomain)
}

func TestRejectsFractionalCoefficient(t *testing.T) {
	assert := require.New(t)

	m := model.NewModel("fractional")
	x := m.NewIntVar("x", 0, 10)
	m.AddLessOrEqual(model.NewLinearExpr().AddTerm(x, 0.5), 3)
	m.SetObjective(model.NewLinearExpr().Add(x), model.Maximize)

	_, err := cpsat.Solve(context.Background(), m)
	assert.ErrorIs(err, cpsat.ErrNotIntegral)
}
