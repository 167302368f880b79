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

func TestCostConstraints(t *testing.T) {
	m := buildTestModel(t, testInput())
	p := m.Sets.ProTuples[0]
	coal := m.Sets.ComTuples[0]

	af, err := AnnuityFactor(20, 0.07)
	if err != nil {
		t.Fatal(err)
	}

	inv := findCons(t, m, "def_costs", 0, false, "Inv")
	if got := inv.Row.Coeff(m.CapProNew[p]); math.Abs(got-1e6*af) > testTolerance {
		t.Errorf("investment coefficient = %g, want %g", got, 1e6*af)
	}
	if got := inv.Row.Coeff(m.Costs[CostInv]); got != -1 {
		t.Errorf("investment cost variable coefficient = %g, want -1", got)
	}

	fix := findCons(t, m, "def_costs", 0, false, "Fix")
	if got := fix.Row.Coeff(m.CapPro[p]); got != 3e4 {
		t.Errorf("fixed coefficient = %g, want 3e4", got)
	}

	vc := findCons(t, m, "def_costs", 0, false, "Var")
	want := 0.6 * m.DT * m.Weight
	for _, tm := range m.TM {
		if got := vc.Row.Coeff(m.EProOut[TimedPro{tm, p}]); math.Abs(got-want) > testTolerance {
			t.Fatalf("t=%d: variable coefficient = %g, want %g", tm, got, want)
		}
	}

	fuel := findCons(t, m, "def_costs", 0, false, "Fuel")
	want = 7 * m.DT * m.Weight
	for _, tm := range m.TM {
		if got := fuel.Row.Coeff(m.ECoStock[TimedCom{tm, coal}]); math.Abs(got-want) > testTolerance {
			t.Fatalf("t=%d: fuel coefficient = %g, want %g", tm, got, want)
		}
	}
	for id, c := range fuel.Row.Terms() {
		if c != 0 && VarID(id) != m.Costs[CostFuel] {
			if m.LP.Vars[id].Name != "e_co_stock" {
				t.Errorf("fuel row touches %s", m.LP.Vars[id].Label())
			}
		}
	}
}

func TestStorageCosts(t *testing.T) {
	m := buildTestModel(t, storageInput())
	s := m.Sets.StoTuples[0]

	vc := findCons(t, m, "def_costs", 0, false, "Var")
	// content is charged per level, throughput per flow
	if got, want := vc.Row.Coeff(m.EStoCon[TimedSto{12, s}]), 0.01*m.Weight; math.Abs(got-want) > testTolerance {
		t.Errorf("content coefficient = %g, want %g", got, want)
	}
	if got, want := vc.Row.Coeff(m.EStoIn[TimedSto{12, s}]), 0.1*m.DT*m.Weight; math.Abs(got-want) > testTolerance {
		t.Errorf("input coefficient = %g, want %g", got, want)
	}
	if got, want := vc.Row.Coeff(m.EStoOut[TimedSto{12, s}]), 0.1*m.DT*m.Weight; math.Abs(got-want) > testTolerance {
		t.Errorf("output coefficient = %g, want %g", got, want)
	}

	af10, err := AnnuityFactor(10, 0.07)
	if err != nil {
		t.Fatal(err)
	}
	inv := findCons(t, m, "def_costs", 0, false, "Inv")
	if got, want := inv.Row.Coeff(m.CapStoPNew[s]), 1e5*af10; math.Abs(got-want) > testTolerance {
		t.Errorf("power investment coefficient = %g, want %g", got, want)
	}
	if got, want := inv.Row.Coeff(m.CapStoCNew[s]), 1e4*af10; math.Abs(got-want) > testTolerance {
		t.Errorf("content investment coefficient = %g, want %g", got, want)
	}
}

func TestUnsupportedCostType(t *testing.T) {
	m := buildTestModel(t, testInput())
	n := m.LP.NumConstraints()

	m.Sets.CostTypes = append(m.Sets.CostTypes, CostType("Depreciation"))
	err := m.costConstraints()
	ucte, ok := err.(*UnsupportedCostTypeError)
	if !ok {
		t.Fatalf("got %T, want *UnsupportedCostTypeError", err)
	}
	if ucte.CostType != "Depreciation" {
		t.Errorf("got cost type %q", ucte.CostType)
	}
	if m.LP.NumConstraints() != n {
		t.Error("rejected cost type must not add constraints")
	}
}

func TestEmissionCap(t *testing.T) {
	in := testInput()
	in.Commodity = append(in.Commodity, &CommodityRow{
		Key: CO2Cap, Max: 150, Price: math.NaN(), MaxPerStep: math.NaN(),
	})
	m := buildTestModel(t, in)
	p := m.Sets.ProTuples[0]

	cap := findCons(t, m, "res_co2_emission", 0, false)
	if cap.Op != Le || cap.RHS != 150 {
		t.Fatalf("got %s %g, want <= 150", cap.Op, cap.RHS)
	}
	for _, tm := range m.TM {
		if got := cap.Row.Coeff(m.CO2ProOut[TimedPro{tm, p}]); math.Abs(got-m.Weight) > testTolerance {
			t.Fatalf("t=%d: emission coefficient = %g, want %g", tm, got, m.Weight)
		}
	}
}

func TestEmissionCapAbsent(t *testing.T) {
	m := buildTestModel(t, testInput())
	if n := countCons(m, "res_co2_emission"); n != 0 {
		t.Errorf("no cap row given, but %d emission caps generated", n)
	}

	in := testInput()
	in.Commodity = append(in.Commodity, &CommodityRow{
		Key: CO2Cap, Max: math.Inf(1), Price: math.NaN(), MaxPerStep: math.NaN(),
	})
	m = buildTestModel(t, in)
	if n := countCons(m, "res_co2_emission"); n != 0 {
		t.Errorf("infinite limit, but %d emission caps generated", n)
	}
}
