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

package solve

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/enersys/esom"
)

// ReadSolution parses a solution file written by glpsol --write
// (glp_write_sol). The file lists one 'j' line per column in the order
// the columns appeared in the LP file, which WriteLP guarantees is
// variable ID order.
//
// Line layout:
//
//	c comment
//	s bas <rows> <cols> <pstat> <dstat> <objective>
//	s ipt <rows> <cols> <sstat> <objective>
//	i <row ordinal> ...
//	j <col ordinal> [status] <primal> [dual]
//	e o f
func ReadSolution(r io.Reader, m *esom.Model) (*esom.Solution, error) {
	sol := &esom.Solution{
		Status: esom.StatusUndefined,
		Values: make([]float64, m.LP.NumVariables()),
	}
	seen := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c", "i", "e":
			continue

		case "s":
			if len(fields) < 5 {
				return nil, fmt.Errorf("esom: reading solution: malformed status line %q", scanner.Text())
			}
			cols, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("esom: reading solution: malformed status line %q", scanner.Text())
			}
			if cols != m.LP.NumVariables() {
				return nil, fmt.Errorf("esom: reading solution: file has %d columns, problem has %d", cols, m.LP.NumVariables())
			}
			switch fields[1] {
			case "bas":
				if len(fields) != 7 {
					return nil, fmt.Errorf("esom: reading solution: malformed status line %q", scanner.Text())
				}
				sol.Status = basicStatus(fields[4], fields[5])
				sol.Objective, err = strconv.ParseFloat(fields[6], 64)
			case "ipt":
				if len(fields) != 6 {
					return nil, fmt.Errorf("esom: reading solution: malformed status line %q", scanner.Text())
				}
				if fields[4] == "o" {
					sol.Status = esom.StatusOptimal
				}
				sol.Objective, err = strconv.ParseFloat(fields[5], 64)
			default:
				return nil, fmt.Errorf("esom: reading solution: unsupported solution kind %q", fields[1])
			}
			if err != nil {
				return nil, fmt.Errorf("esom: reading solution: malformed objective in %q", scanner.Text())
			}

		case "j":
			if len(fields) < 3 {
				return nil, fmt.Errorf("esom: reading solution: malformed column line %q", scanner.Text())
			}
			ord, err := strconv.Atoi(fields[1])
			if err != nil || ord < 1 || ord > m.LP.NumVariables() {
				return nil, fmt.Errorf("esom: reading solution: bad column ordinal in %q", scanner.Text())
			}
			// basic solutions carry a status letter before the
			// primal value, interior-point solutions do not
			val := fields[2]
			if _, err := strconv.ParseFloat(val, 64); err != nil && len(fields) > 3 {
				val = fields[3]
			}
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("esom: reading solution: bad primal value in %q", scanner.Text())
			}
			sol.Values[ord-1] = v
			seen++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("esom: reading solution: %v", err)
	}
	if seen != m.LP.NumVariables() {
		return nil, fmt.Errorf("esom: reading solution: got %d of %d column values", seen, m.LP.NumVariables())
	}
	return sol, nil
}

func basicStatus(pstat, dstat string) string {
	switch {
	case pstat == "f" && dstat == "f":
		return esom.StatusOptimal
	case pstat == "f" && dstat == "n":
		return esom.StatusUnbounded
	case pstat == "i" || pstat == "n":
		return esom.StatusInfeasible
	default:
		return esom.StatusUndefined
	}
}
