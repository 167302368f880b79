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
	"math"
	"testing"
)

func TestVariableLabel(t *testing.T) {
	tests := []struct {
		v    Variable
		want string
	}{
		{Variable{Name: "cap_pro", Index: []string{"A", "pp", "Coal", "Elec"}}, "cap_pro[A,pp,Coal,Elec]"},
		{Variable{Name: "e_pro_in", T: 7, Timed: true, Index: []string{"A", "pp", "Coal", "Elec"}}, "e_pro_in[7,A,pp,Coal,Elec]"},
		{Variable{Name: "obj"}, "obj"},
	}
	for _, test := range tests {
		if got := test.v.Label(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestExpr(t *testing.T) {
	p := NewProblem()
	x := p.AddVariable(Variable{Name: "x"})
	y := p.AddVariable(Variable{Name: "y"})

	e := p.NewExpr()
	e.Add(x, 2)
	e.Add(y, -1)
	e.Add(x, 0.5) // accumulates

	if got := e.Coeff(x); got != 2.5 {
		t.Errorf("coefficient of x = %g, want 2.5", got)
	}
	if got := e.Coeff(y); got != -1 {
		t.Errorf("coefficient of y = %g, want -1", got)
	}

	o := p.NewExpr()
	o.Add(y, 3)
	e.AddScaled(o, -2)
	if got := e.Coeff(y); got != -7 {
		t.Errorf("coefficient of y after AddScaled = %g, want -7", got)
	}

	if got := e.Value([]float64{4, 1}); math.Abs(got-3) > testTolerance {
		t.Errorf("value = %g, want 3", got)
	}
}

func TestProblemFreeze(t *testing.T) {
	p := NewProblem()
	x := p.AddVariable(Variable{Name: "x"})
	e := p.NewExpr()
	e.Add(x, 1)
	p.SetObjective(e)
	p.freeze()

	defer func() {
		if recover() == nil {
			t.Error("AddVariable on a frozen problem should panic")
		}
	}()
	p.AddVariable(Variable{Name: "y"})
}

func TestSetObjective(t *testing.T) {
	p := NewProblem()
	x := p.AddVariable(Variable{Name: "x"})
	y := p.AddVariable(Variable{Name: "y"})
	e := p.NewExpr()
	e.Add(y, 4)
	p.SetObjective(e)

	if len(p.Obj) != 2 {
		t.Fatalf("objective has %d entries, want 2", len(p.Obj))
	}
	if p.Obj[x] != 0 || p.Obj[y] != 4 {
		t.Errorf("objective = %v, want [0 4]", p.Obj)
	}
}

func TestOpString(t *testing.T) {
	if Eq.String() != "=" || Le.String() != "<=" || Ge.String() != ">=" {
		t.Errorf("wrong operator strings: %q %q %q", Eq, Le, Ge)
	}
}
