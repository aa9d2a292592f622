// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package backend

import (
	"fmt"
	"time"

	"github.com/consensys/optkit/logger"
	"github.com/rs/zerolog"
)

// Option defines option for altering the behavior of a solving backend. See
// the descriptions of functions returning instances of this type for
// implemented options.
type Option func(*Config) error

// Config is the configuration for a solve call with the options applied.
type Config struct {
	Logger        zerolog.Logger // defaults to optkit logger
	TimeLimit     time.Duration  // unlimited when 0
	SolutionLimit int            // cap on enumerated solutions, defaults to 1000
}

// NewConfig returns a default Config with given options applied.
func NewConfig(opts ...Option) (Config, error) {
	opt := Config{
		Logger:        logger.Logger(),
		SolutionLimit: 1000,
	}
	for _, option := range opts {
		if err := option(&opt); err != nil {
			return Config{}, err
		}
	}
	return opt, nil
}

// WithLogger specifies a zerolog.Logger as a destination for the logs printed
// by the backend. By default, uses the optkit logger. zerolog.Nop() will
// disable logging.
func WithLogger(l zerolog.Logger) Option {
	return func(opt *Config) error {
		opt.Logger = l
		return nil
	}
}

// WithTimeLimit bounds the wall time of the engine's search. A solve hitting
// the limit reports the best status the engine reached (possibly Feasible or
// Unknown).
func WithTimeLimit(d time.Duration) Option {
	return func(opt *Config) error {
		if d <= 0 {
			return fmt.Errorf("invalid time limit: %v", d)
		}
		opt.TimeLimit = d
		return nil
	}
}

// WithSolutionLimit caps the number of solutions collected by enumeration.
func WithSolutionLimit(n int) Option {
	return func(opt *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid solution limit: %d", n)
		}
		opt.SolutionLimit = n
		return nil
	}
}
