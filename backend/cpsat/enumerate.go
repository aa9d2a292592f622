// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cpsat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	"google.golang.org/protobuf/proto"
)

// ErrHasObjective is returned by EnumerateAll for models with an objective:
// CP-SAT enumerates the feasible set only on satisfaction models.
var ErrHasObjective = errors.New("cpsat: cannot enumerate a model with an objective")

// EnumerateAll returns every feasible assignment of a satisfaction model, up
// to the configured solution limit (see backend.WithSolutionLimit).
//
// The Go CP-SAT API has no solution callbacks, so enumeration relies on the
// engine filling its solution pool in the response; the pool size is the
// solution limit. An infeasible model yields an empty slice and a nil error.
func EnumerateAll(ctx context.Context, m *model.Model, opts ...backend.Option) ([]backend.Solution, error) {
	cfg, err := backend.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.HasObjective {
		return nil, ErrHasObjective
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, ivs, err := translate(m)
	if err != nil {
		return nil, err
	}
	mdl, err := b.Model()
	if err != nil {
		return nil, fmt.Errorf("cpsat: instantiating model: %w", err)
	}

	params := solveParameters(ctx, cfg)
	params.EnumerateAllSolutions = proto.Bool(true)
	params.FillAdditionalSolutionsInResponse = proto.Bool(true)
	params.SolutionPoolSize = proto.Int32(int32(cfg.SolutionLimit))

	log := cfg.Logger
	log.Debug().Str("backend", backend.CPSAT.String()).Str("model", m.Name).
		Int("limit", cfg.SolutionLimit).Msg("enumerating")
	start := time.Now()

	resp, err := cpmodel.SolveCpModelWithParameters(mdl, params)
	if err != nil {
		return nil, fmt.Errorf("cpsat: %w", err)
	}

	switch resp.GetStatus() {
	case cmpb.CpSolverStatus_INFEASIBLE:
		log.Info().Str("model", m.Name).Dur("took", time.Since(start)).Int("solutions", 0).Msg("enumeration done")
		return nil, nil
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
	default:
		return nil, fmt.Errorf("cpsat: enumeration ended with status %s", resp.GetStatus())
	}

	pool := resp.GetAdditionalSolutions()
	solutions := make([]backend.Solution, 0, len(pool))
	for _, entry := range pool {
		assigned := entry.GetValues()
		values := make(map[string]float64, len(ivs))
		for vid, v := range m.Variables {
			values[v.Name] = float64(assigned[ivs[vid].Index()])
		}
		solutions = append(solutions, backend.NewSolution(backend.StatusFeasible, 0, values))
	}

	log.Info().Str("model", m.Name).Dur("took", time.Since(start)).
		Int("solutions", len(solutions)).Msg("enumeration done")
	return solutions, nil
}
