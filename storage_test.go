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

func TestStorageStateTransition(t *testing.T) {
	in := storageInput()
	m, err := BuildModel(in, testHorizon(), 2)
	if err != nil {
		t.Fatal(err)
	}
	s := m.Sets.StoTuples[0]

	for _, tm := range m.TM {
		c := findCons(t, m, "def_storage_state", tm, true, "A", "bat", "Elec")
		if c.Op != Eq || c.RHS != 0 {
			t.Fatalf("t=%d: got %s %g, want = 0", tm, c.Op, c.RHS)
		}
		if got := c.Row.Coeff(m.EStoCon[TimedSto{tm - 1, s}]); got != 1 {
			t.Errorf("t=%d: previous content coefficient = %g, want 1", tm, got)
		}
		if got := c.Row.Coeff(m.EStoIn[TimedSto{tm, s}]); math.Abs(got-0.9*2) > testTolerance {
			t.Errorf("t=%d: input coefficient = %g, want %g", tm, got, 0.9*2)
		}
		if got := c.Row.Coeff(m.EStoOut[TimedSto{tm, s}]); math.Abs(got+2/0.8) > testTolerance {
			t.Errorf("t=%d: output coefficient = %g, want %g", tm, got, -2/0.8)
		}
		if got := c.Row.Coeff(m.EStoCon[TimedSto{tm, s}]); got != -1 {
			t.Errorf("t=%d: content coefficient = %g, want -1", tm, got)
		}
		if n := len(c.Row.Terms()); n != 4 {
			t.Errorf("t=%d: state transition has %d terms, want 4", tm, n)
		}
	}
}

func TestStorageCapacityIdentities(t *testing.T) {
	in := storageInput()
	in.Storage[0].InstCapP = 5
	in.Storage[0].InstCapC = 40
	m := buildTestModel(t, in)
	s := m.Sets.StoTuples[0]

	p := findCons(t, m, "def_storage_power", 0, false, "A", "bat", "Elec")
	if p.RHS != 5 || p.Row.Coeff(m.CapStoP[s]) != 1 || p.Row.Coeff(m.CapStoPNew[s]) != -1 {
		t.Error("power identity has wrong form")
	}
	c := findCons(t, m, "def_storage_capacity", 0, false, "A", "bat", "Elec")
	if c.RHS != 40 || c.Row.Coeff(m.CapStoC[s]) != 1 || c.Row.Coeff(m.CapStoCNew[s]) != -1 {
		t.Error("content identity has wrong form")
	}

	bp := findCons(t, m, "res_storage_power", 0, false, "A", "bat", "Elec")
	if !bp.Ranged || bp.Lo != 0 || !math.IsInf(bp.Up, 1) {
		t.Errorf("power bounds: got [%g, %g]", bp.Lo, bp.Up)
	}
	bc := findCons(t, m, "res_storage_capacity", 0, false, "A", "bat", "Elec")
	if !bc.Ranged {
		t.Error("content bounds should be ranged")
	}
}

func TestStorageOperationCeilings(t *testing.T) {
	m := buildTestModel(t, storageInput())
	s := m.Sets.StoTuples[0]

	in := findCons(t, m, "res_storage_input_by_power", 11, true, "A", "bat", "Elec")
	if in.Op != Le || in.Row.Coeff(m.CapStoP[s]) != -1 {
		t.Error("input ceiling has wrong form")
	}
	out := findCons(t, m, "res_storage_output_by_power", 11, true, "A", "bat", "Elec")
	if out.Op != Le || out.Row.Coeff(m.CapStoP[s]) != -1 {
		t.Error("output ceiling has wrong form")
	}

	// content is bounded on the full horizon including t=0
	if n := countCons(m, "res_storage_state_by_capacity"); n != 25 {
		t.Errorf("got %d content ceilings, want 25", n)
	}
	con := findCons(t, m, "res_storage_state_by_capacity", 0, true, "A", "bat", "Elec")
	if con.Row.Coeff(m.EStoCon[TimedSto{0, s}]) != 1 || con.Row.Coeff(m.CapStoC[s]) != -1 {
		t.Error("content ceiling has wrong coefficients")
	}
}

func TestStorageBoundaryStates(t *testing.T) {
	m := buildTestModel(t, storageInput())
	s := m.Sets.StoTuples[0]

	first := findCons(t, m, "res_initial_storage_state", 0, true, "A", "bat", "Elec")
	if first.Op != Eq {
		t.Errorf("initial state operator = %s, want =", first.Op)
	}
	if first.Row.Coeff(m.EStoCon[TimedSto{0, s}]) != 1 {
		t.Error("initial state: wrong content coefficient")
	}
	if got := first.Row.Coeff(m.CapStoC[s]); got != -0.5 {
		t.Errorf("initial state: capacity coefficient = %g, want -0.5", got)
	}

	last := findCons(t, m, "res_final_storage_state", 24, true, "A", "bat", "Elec")
	if last.Op != Ge {
		t.Errorf("final state operator = %s, want >=", last.Op)
	}
	if last.Row.Coeff(m.EStoCon[TimedSto{24, s}]) != 1 {
		t.Error("final state: wrong content coefficient")
	}
}

func TestStorageValidation(t *testing.T) {
	in := storageInput()
	in.Storage[0].EffIn = 1.2
	if _, err := BuildModel(in, testHorizon(), 1); err == nil {
		t.Error("charging efficiency above 1 should fail validation")
	}

	in = storageInput()
	in.Storage[0].Init = 1.5
	if _, err := BuildModel(in, testHorizon(), 1); err == nil {
		t.Error("initial fill fraction above 1 should fail validation")
	}

	in = storageInput()
	in.Storage[0].CapLoC = 10
	in.Storage[0].CapUpC = 5
	if _, err := BuildModel(in, testHorizon(), 1); err == nil {
		t.Error("crossed content bounds should fail validation")
	}
}
