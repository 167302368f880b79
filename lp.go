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

package esom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// VarID indexes a decision variable within a Problem.
type VarID int

// Variable is one decision variable. All variables in this formulation
// are non-negative reals; there are no integer or binary variables.
type Variable struct {
	Name  string   // family name, e.g. "cap_pro"
	T     int      // timestep; only meaningful if Timed
	Timed bool     // whether the variable is indexed by a timestep
	Index []string // entity key tuple, e.g. site, process, coin, cout
}

// Label formats the variable as "name[t,index...]" for diagnostics
// and LP file comments.
func (v Variable) Label() string {
	parts := make([]string, 0, len(v.Index)+1)
	if v.Timed {
		parts = append(parts, strconv.Itoa(v.T))
	}
	parts = append(parts, v.Index...)
	if len(parts) == 0 {
		return v.Name
	}
	return v.Name + "[" + strings.Join(parts, ",") + "]"
}

// Expr is a linear expression over the variables of a Problem, stored
// as a sparse coefficient row indexed by VarID.
type Expr struct {
	Coeffs *sparse.SparseArray
}

// Add adds c times variable v to the expression.
func (e *Expr) Add(v VarID, c float64) {
	e.Coeffs.AddVal(c, int(v))
}

// AddExpr adds another expression to this one.
func (e *Expr) AddExpr(o *Expr) {
	e.Coeffs.AddSparse(o.Coeffs)
}

// AddScaled adds f times another expression to this one.
func (e *Expr) AddScaled(o *Expr, f float64) {
	for i, c := range o.Coeffs.Elements {
		e.Coeffs.AddVal(c*f, i)
	}
}

// Coeff returns the coefficient of variable v, zero if absent.
func (e *Expr) Coeff(v VarID) float64 {
	return e.Coeffs.Get1d(int(v))
}

// Terms returns the nonzero coefficients by variable index. The map is
// the expression's backing store; callers must not modify it.
func (e *Expr) Terms() map[int]float64 {
	return e.Coeffs.Elements
}

// Value evaluates the expression at the given point, where x holds one
// value per variable.
func (e *Expr) Value(x []float64) float64 {
	var v float64
	for i, c := range e.Coeffs.Elements {
		v += c * x[i]
	}
	return v
}

// Op is a constraint relational operator.
type Op int

const (
	Eq Op = iota // equality
	Le           // less than or equal
	Ge           // greater than or equal
)

func (op Op) String() string {
	switch op {
	case Eq:
		return "="
	case Le:
		return "<="
	case Ge:
		return ">="
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Constraint is one linear constraint: either Row Op RHS, or, if
// Ranged, the two-sided form Lo ≤ Row ≤ Up.
type Constraint struct {
	Name  string   // family name, e.g. "def_process_capacity"
	T     int      // timestep; only meaningful if Timed
	Timed bool     // whether the constraint is indexed by a timestep
	Index []string // entity key tuple

	Row *Expr
	Op  Op
	RHS float64

	Ranged bool
	Lo, Up float64
}

// Label formats the constraint like Variable.Label.
func (c Constraint) Label() string {
	return Variable{Name: c.Name, T: c.T, Timed: c.Timed, Index: c.Index}.Label()
}

// Problem is an in-memory linear program: the full variable list, the
// constraint system and the objective coefficient vector (sense:
// minimize). Once frozen it is read-only and safe to hand to a solver
// adapter.
type Problem struct {
	Vars []Variable
	Cons []Constraint
	Obj  []float64 // one objective coefficient per variable

	frozen bool
}

// NewProblem returns an empty Problem.
func NewProblem() *Problem {
	return &Problem{}
}

// AddVariable appends a variable and returns its ID. It panics if the
// problem is frozen; that is a programming error, not a data error.
func (p *Problem) AddVariable(v Variable) VarID {
	if p.frozen {
		panic("esom: AddVariable on frozen problem")
	}
	p.Vars = append(p.Vars, v)
	return VarID(len(p.Vars) - 1)
}

// NewExpr returns a zero expression sized to the current variable
// count. All variables must be allocated before expressions are built.
func (p *Problem) NewExpr() *Expr {
	return &Expr{Coeffs: sparse.ZerosSparse(len(p.Vars))}
}

// AddConstraint appends a constraint. It panics if the problem is
// frozen.
func (p *Problem) AddConstraint(c Constraint) {
	if p.frozen {
		panic("esom: AddConstraint on frozen problem")
	}
	p.Cons = append(p.Cons, c)
}

// SetObjective records the objective coefficient vector from a linear
// expression.
func (p *Problem) SetObjective(e *Expr) {
	if p.frozen {
		panic("esom: SetObjective on frozen problem")
	}
	p.Obj = make([]float64, len(p.Vars))
	for i, c := range e.Coeffs.Elements {
		p.Obj[i] = c
	}
}

// freeze marks the problem read-only.
func (p *Problem) freeze() { p.frozen = true }

// Frozen reports whether the problem has been frozen.
func (p *Problem) Frozen() bool { return p.frozen }

// NumVariables returns the number of decision variables.
func (p *Problem) NumVariables() int { return len(p.Vars) }

// NumConstraints returns the number of constraints.
func (p *Problem) NumConstraints() int { return len(p.Cons) }

// fix re-initializes the sparse rows after gob decoding, which skips
// their unexported shape fields.
func (p *Problem) fix() {
	for _, c := range p.Cons {
		if c.Row != nil && c.Row.Coeffs != nil {
			c.Row.Coeffs.Fix()
		}
	}
	p.frozen = true
}
