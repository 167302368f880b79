/*
Copyright © 2026 the esom authors.
This file is part of esom.

esom is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

esom is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with esom.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package solve runs a formulated optimization problem through an
// external LP solver. The problem is written in CPLEX LP format, the
// solver binary is invoked as a subprocess, and its solution file is
// read back and mapped onto the model's variables.
package solve

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/enersys/esom"
	"github.com/sirupsen/logrus"
)

// A Solver invokes an external LP solver binary. The argument list
// may contain the placeholders {lp} and {sol}, replaced at run time
// with the problem and solution file paths.
type Solver struct {
	Command string
	Args    []string

	// KeepFiles leaves the exchange files on disk for inspection
	// instead of deleting them after the run.
	KeepFiles bool
}

// GLPK returns a solver configuration for the GNU Linear Programming
// Kit command line tool.
func GLPK() *Solver {
	return &Solver{
		Command: "glpsol",
		Args:    []string{"--lp", "{lp}", "--write", "{sol}"},
	}
}

// Solve writes m's problem to a temporary directory, runs the solver
// subprocess and reads the solution back. The subprocess is killed if
// ctx is canceled.
func (s *Solver) Solve(ctx context.Context, m *esom.Model) (*esom.Solution, error) {
	dir, err := os.MkdirTemp("", "esom")
	if err != nil {
		return nil, fmt.Errorf("esom: solving: %v", err)
	}
	if !s.KeepFiles {
		defer os.RemoveAll(dir)
	}
	lpPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")

	lpFile, err := os.Create(lpPath)
	if err != nil {
		return nil, fmt.Errorf("esom: solving: %v", err)
	}
	if err := WriteLP(lpFile, m); err != nil {
		lpFile.Close()
		return nil, err
	}
	if err := lpFile.Close(); err != nil {
		return nil, fmt.Errorf("esom: solving: %v", err)
	}

	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		a = strings.ReplaceAll(a, "{lp}", lpPath)
		a = strings.ReplaceAll(a, "{sol}", solPath)
		args[i] = a
	}
	logrus.WithFields(logrus.Fields{
		"command":     s.Command,
		"variables":   m.LP.NumVariables(),
		"constraints": m.LP.NumConstraints(),
	}).Info("running solver")

	cmd := exec.CommandContext(ctx, s.Command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("esom: running solver %s: %v; output: %s", s.Command, err, out)
	}

	solFile, err := os.Open(solPath)
	if err != nil {
		return nil, fmt.Errorf("esom: solving: solver wrote no solution file: %v", err)
	}
	defer solFile.Close()
	sol, err := ReadSolution(solFile, m)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"status":    sol.Status,
		"objective": sol.Objective,
	}).Info("solver finished")
	return sol, nil
}
