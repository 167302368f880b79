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
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/enersys/esom"
)

// WriteLP writes the formulated problem in CPLEX LP format, which
// glpsol, cbc, lp_solve and the commercial solvers all read.
//
// The objective row lists every variable, zero coefficients included.
// LP readers create columns in order of first appearance, so this pins
// the column set to exactly the problem's variables in ID order; the
// ordinals in a solution file written against this problem map back to
// variable IDs directly, and variables that occur in no restriction
// still get a column.
//
// Ranged restrictions become a _lo and a _up row; infinite or unset
// sides are omitted rather than written as infinities, which the LP
// format cannot express. All variables are nonnegative, matching the
// format's default lower bound, so no Bounds section is emitted.
func WriteLP(w io.Writer, m *esom.Model) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "\\* esom %s model built %s *\\\n\n", esom.Version, m.Created)

	b.WriteString("Minimize\n obj:")
	for id := range m.LP.Vars {
		writeTerm(b, m.LP.Obj[id], lpName(m.LP.Vars[id]))
	}
	b.WriteString("\n\nSubject To\n")

	for _, con := range m.LP.Cons {
		if con.Ranged {
			if finite(con.Lo) {
				writeRow(b, rowName(con)+"_lo", con.Row, m, ">=", con.Lo)
			}
			if finite(con.Up) {
				writeRow(b, rowName(con)+"_up", con.Row, m, "<=", con.Up)
			}
			continue
		}
		if !finite(con.RHS) {
			// a +-Inf right-hand side makes Le/Ge rows vacuous
			if con.Op != esom.Eq {
				continue
			}
			return fmt.Errorf("esom: writing LP: row %s has a non-finite right-hand side", con.Label())
		}
		writeRow(b, rowName(con), con.Row, m, con.Op.String(), con.RHS)
	}

	b.WriteString("\nEnd\n")
	return b.Flush()
}

func writeRow(b *bufio.Writer, name string, row *esom.Expr, m *esom.Model, op string, rhs float64) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(":")
	terms := row.Terms()
	ids := make([]int, 0, len(terms))
	for id := range terms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if terms[id] == 0 {
			continue
		}
		writeTerm(b, terms[id], lpName(m.LP.Vars[id]))
	}
	fmt.Fprintf(b, " %s %s\n", op, formatNum(rhs))
}

func writeTerm(b *bufio.Writer, c float64, name string) {
	if c >= 0 {
		fmt.Fprintf(b, " + %s %s", formatNum(c), name)
	} else {
		fmt.Fprintf(b, " - %s %s", formatNum(-c), name)
	}
}

// lpName renders a variable label with the (..) punctuation the LP
// format permits in symbolic names.
func lpName(v esom.Variable) string {
	return v.Name + "(" + strings.Join(indexParts(v.T, v.Timed, v.Index), ",") + ")"
}

func rowName(c esom.Constraint) string {
	if !c.Timed && len(c.Index) == 0 {
		return c.Name
	}
	return c.Name + "(" + strings.Join(indexParts(c.T, c.Timed, c.Index), ",") + ")"
}

func indexParts(t int, timed bool, index []string) []string {
	var parts []string
	if timed {
		parts = append(parts, strconv.Itoa(t))
	}
	return append(parts, index...)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
