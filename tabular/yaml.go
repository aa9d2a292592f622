// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/consensys/optkit/model"
	"gopkg.in/yaml.v3"
)

// ErrBadDirection is returned for a direction that is neither "minimize" nor "maximize".
var ErrBadDirection = errors.New("tabular: direction must be minimize or maximize")

// Problem is the on-disk (yaml) form of a tabular model.
type Problem struct {
	Table     `yaml:",inline"`
	Direction string `yaml:"direction"`
	Integer   bool   `yaml:"integer"`
}

// BuildOptions returns the Build options implied by the problem flags.
func (p Problem) BuildOptions() []Option {
	if p.Integer {
		return []Option{WithIntegerUnits()}
	}
	return nil
}

// ParseDirection maps "minimize"/"maximize" to a model.Direction.
func ParseDirection(s string) (model.Direction, error) {
	switch s {
	case "minimize", "min":
		return model.Minimize, nil
	case "maximize", "max":
		return model.Maximize, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadDirection, s)
	}
}

// FromYAML decodes a Problem from r and validates its table.
func FromYAML(r io.Reader) (Problem, error) {
	var p Problem
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Problem{}, fmt.Errorf("tabular: decoding problem: %w", err)
	}
	if p.Direction == "" {
		p.Direction = "maximize"
	}
	if _, err := ParseDirection(p.Direction); err != nil {
		return Problem{}, err
	}
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// LoadFile reads a Problem from a yaml file.
func LoadFile(path string) (Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return Problem{}, err
	}
	defer f.Close()
	return FromYAML(f)
}
