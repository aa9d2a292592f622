// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// The optkit command solves tabular optimization problems described in yaml files.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/consensys/optkit"
	"github.com/consensys/optkit/backend"
	"github.com/consensys/optkit/tabular"
	"github.com/spf13/cobra"
)

var (
	fTimeLimit time.Duration
	fStrict    bool
)

var rootCmd = &cobra.Command{
	Use:   "optkit",
	Short: "optkit builds and solves linear/integer optimization models",
}

var solveCmd = &cobra.Command{
	Use:   "solve [problem.yaml]",
	Short: "solve a tabular problem file",
	Args:  cobra.ExactArgs(1),
	RunE:  cmdSolve,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the optkit version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(optkit.Version.String())
	},
}

func cmdSolve(cmd *cobra.Command, args []string) error {
	p, err := tabular.LoadFile(args[0])
	if err != nil {
		return err
	}
	dir, err := tabular.ParseDirection(p.Direction)
	if err != nil {
		return err
	}

	opts := p.BuildOptions()
	if fTimeLimit > 0 {
		opts = append(opts, tabular.WithSolverOptions(backend.WithTimeLimit(fTimeLimit)))
	}

	sol, err := tabular.BuildAndSolve(context.Background(), p.Table, dir, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("status: %s\n", sol.Status())
	if !sol.Feasible() {
		if fStrict {
			os.Exit(1)
		}
		return nil
	}
	for _, name := range sol.VariableNames() {
		if p.Integer {
			fmt.Printf("  %s = %d\n", name, sol.IntValue(name))
		} else {
			fmt.Printf("  %s = %v\n", name, sol.Value(name))
		}
	}
	fmt.Printf("objective: %v\n", sol.Objective())
	return nil
}

func main() {
	solveCmd.Flags().DurationVar(&fTimeLimit, "time-limit", 0, "cap the engine search time, e.g. 30s")
	solveCmd.Flags().BoolVar(&fStrict, "strict", false, "exit non-zero when the problem is infeasible or unbounded")
	rootCmd.AddCommand(solveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
