// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package optkit

import (
	"math"
	"testing"

	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/model"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert := require.New(t)
	assert.NotEmpty(Version.String())
	assert.Equal([]backend.ID{backend.CPSAT, backend.SIMPLEX}, Backends())
}

func TestRouting(t *testing.T) {
	assert := require.New(t)

	lp := model.NewModel("lp")
	lp.NewContinuousVar("x", 0, math.Inf(1))
	assert.Equal(backend.SIMPLEX, WhichBackend(lp))

	mip := model.NewModel("mip")
	mip.NewIntVar("x", 0, 10)
	assert.Equal(backend.CPSAT, WhichBackend(mip))

	// mixed models route to cpsat
	mixed := model.NewModel("mixed")
	x := mixed.NewIntVar("x", 0, 10)
	mixed.NewContinuousVar("y", 0, 10)
	mixed.AddModulo(x, 3, 0)
	assert.Equal(backend.CPSAT, WhichBackend(mixed))
}
