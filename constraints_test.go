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

// windInput extends testInput with an intermittent wind turbine.
func windInput() *Input {
	in := testInput()
	in.Commodity = append(in.Commodity, &CommodityRow{
		Key: CommodityKey{"A", "Wind", TypeSupIm},
	})
	in.Process = append(in.Process, &ProcessRow{
		Key: ProcessKey{"A", "wt", "Wind", "Elec"},
		Eff: 1, CO2: 0, CapLo: 0, CapUp: math.Inf(1), InstCap: 0,
		InvCost: 1.5e6, FixCost: 3e4, VarCost: 0,
		Depreciation: 25, WACC: 0.07,
	})
	for t := 1; t <= 24; t++ {
		in.SupIm.Set(t, "A", "Wind", float64(t)/48)
	}
	if err := in.DeriveAnnuityFactors(); err != nil {
		panic(err)
	}
	return in
}

// twoSiteInput is two sites connected by a bidirectional power line.
func twoSiteInput() *Input {
	in := &Input{
		Commodity: []*CommodityRow{
			{Key: CommodityKey{"A", "Elec", TypeDemand}},
			{Key: CommodityKey{"B", "Elec", TypeDemand}},
		},
		Transmission: []*TransmissionRow{
			{Key: TransmissionKey{"A", "B", "hvac", "Elec"},
				Eff: 0.9, CapLo: 0, CapUp: 200, InstCap: 50,
				InvCost: 1.6e6, FixCost: 1e3, VarCost: 0.2,
				Depreciation: 30, WACC: 0.07},
			{Key: TransmissionKey{"B", "A", "hvac", "Elec"},
				Eff: 0.9, CapLo: 0, CapUp: 200, InstCap: 50,
				InvCost: 1.6e6, FixCost: 1e3, VarCost: 0.2,
				Depreciation: 30, WACC: 0.07},
		},
		Demand: make(Series),
		SupIm:  make(Series),
	}
	for t := 1; t <= 24; t++ {
		in.Demand.Set(t, "A", "Elec", 10)
		in.Demand.Set(t, "B", "Elec", 20)
	}
	if err := in.DeriveAnnuityFactors(); err != nil {
		panic(err)
	}
	return in
}

func TestDemandConstraint(t *testing.T) {
	m := buildTestModel(t, testInput())
	p := m.Sets.ProTuples[0]

	c := findCons(t, m, "res_demand", 7, true, "A", "Elec", "Demand")
	if c.Op != Ge || c.RHS != 100 {
		t.Errorf("got %s %g, want >= 100", c.Op, c.RHS)
	}
	if got := c.Row.Coeff(m.EProOut[TimedPro{7, p}]); got != 1 {
		t.Errorf("process output coefficient = %g, want 1", got)
	}
	if n := countCons(m, "res_demand"); n != 24 {
		t.Errorf("got %d demand rows, want 24", n)
	}
}

func TestStockAccounting(t *testing.T) {
	m := buildTestModel(t, testInput())
	p := m.Sets.ProTuples[0]
	coal := CommodityKey{"A", "Coal", TypeStock}

	def := findCons(t, m, "def_e_co_stock", 3, true, "A", "Coal", "Stock")
	if def.Op != Eq || def.RHS != 0 {
		t.Errorf("got %s %g, want = 0", def.Op, def.RHS)
	}
	if got := def.Row.Coeff(m.ECoStock[TimedCom{3, coal}]); got != 1 {
		t.Errorf("stock purchase coefficient = %g, want 1", got)
	}
	if got := def.Row.Coeff(m.EProIn[TimedPro{3, p}]); got != -1 {
		t.Errorf("process input coefficient = %g, want -1", got)
	}

	step := findCons(t, m, "res_stock_step", 3, true, "A", "Coal", "Stock")
	if step.Op != Le || !math.IsInf(step.RHS, 1) {
		t.Errorf("per-step cap: got %s %g", step.Op, step.RHS)
	}

	total := findCons(t, m, "res_stock_total", 0, false, "A", "Coal", "Stock")
	if total.Op != Le {
		t.Errorf("total cap operator = %s, want <=", total.Op)
	}
	for _, tm := range m.TM {
		if got := total.Row.Coeff(m.ECoStock[TimedCom{tm, coal}]); math.Abs(got-m.DT*m.Weight) > testTolerance {
			t.Errorf("t=%d: annual cap coefficient = %g, want %g", tm, got, m.DT*m.Weight)
		}
	}
	// demand commodities get no stock rows
	for i := range m.LP.Cons {
		c := &m.LP.Cons[i]
		if c.Name == "def_e_co_stock" && c.Index[1] == "Elec" {
			t.Error("stock accounting generated for a demand commodity")
		}
	}
}

func TestStockMissingAttribute(t *testing.T) {
	in := testInput()
	in.Commodity[0].MaxPerStep = math.NaN()
	_, err := BuildModel(in, testHorizon(), 1)
	if err == nil {
		t.Fatal("missing maxperstep should fail the build")
	}
	mae, ok := err.(*MissingAttributeError)
	if !ok {
		t.Fatalf("got %T, want *MissingAttributeError", err)
	}
	if mae.Attribute != "maxperstep" {
		t.Errorf("got attribute %q, want maxperstep", mae.Attribute)
	}
}

func TestProcessConstraints(t *testing.T) {
	in := testInput()
	in.Process[0].InstCap = 15
	m := buildTestModel(t, in)
	p := m.Sets.ProTuples[0]

	cap := findCons(t, m, "def_process_capacity", 0, false, "A", "pp", "Coal", "Elec")
	if cap.Op != Eq || cap.RHS != 15 {
		t.Errorf("capacity identity: got %s %g, want = 15", cap.Op, cap.RHS)
	}
	if cap.Row.Coeff(m.CapPro[p]) != 1 || cap.Row.Coeff(m.CapProNew[p]) != -1 {
		t.Error("capacity identity has wrong coefficients")
	}

	out := findCons(t, m, "def_process_output", 9, true, "A", "pp", "Coal", "Elec")
	if out.Row.Coeff(m.EProOut[TimedPro{9, p}]) != 1 {
		t.Error("output identity: wrong output coefficient")
	}
	if got := out.Row.Coeff(m.EProIn[TimedPro{9, p}]); got != -0.5 {
		t.Errorf("output identity: input coefficient = %g, want -0.5", got)
	}

	em := findCons(t, m, "def_co2_emissions", 9, true, "A", "pp", "Coal", "Elec")
	if got := em.Row.Coeff(m.EProIn[TimedPro{9, p}]); math.Abs(got+0.3*m.DT) > testTolerance {
		t.Errorf("emission identity: input coefficient = %g, want %g", got, -0.3*m.DT)
	}

	ceil := findCons(t, m, "res_process_output_by_capacity", 9, true, "A", "pp", "Coal", "Elec")
	if ceil.Op != Le || ceil.RHS != 0 {
		t.Errorf("output ceiling: got %s %g, want <= 0", ceil.Op, ceil.RHS)
	}
	if ceil.Row.Coeff(m.CapPro[p]) != -1 {
		t.Error("output ceiling: wrong capacity coefficient")
	}

	bound := findCons(t, m, "res_process_capacity", 0, false, "A", "pp", "Coal", "Elec")
	if !bound.Ranged || bound.Lo != 0 || !math.IsInf(bound.Up, 1) {
		t.Errorf("capacity bounds: got [%g, %g]", bound.Lo, bound.Up)
	}
}

func TestIntermittentSupply(t *testing.T) {
	m := buildTestModel(t, windInput())
	var wt ProcessKey
	for _, p := range m.Sets.ProTuples {
		if p.Process == "wt" {
			wt = p
		}
	}

	sup := findCons(t, m, "def_intermittent_supply", 6, true, "A", "wt", "Wind", "Elec")
	if sup.Op != Eq || sup.RHS != 0 {
		t.Errorf("got %s %g, want = 0", sup.Op, sup.RHS)
	}
	if got := sup.Row.Coeff(m.EProIn[TimedPro{6, wt}]); got != 1 {
		t.Errorf("input coefficient = %g, want 1", got)
	}
	if got := sup.Row.Coeff(m.CapPro[wt]); math.Abs(got+6.0/48) > testTolerance {
		t.Errorf("capacity coefficient = %g, want %g", got, -6.0/48)
	}

	// the generic output ceiling stays even though input is pinned
	findCons(t, m, "res_process_output_by_capacity", 6, true, "A", "wt", "Wind", "Elec")

	// fuel-burning processes get no supply override
	if n := countCons(m, "def_intermittent_supply"); n != 24 {
		t.Errorf("got %d supply overrides, want 24", n)
	}
}

func TestIntermittentSupplyMissingSeries(t *testing.T) {
	in := windInput()
	delete(in.SupIm[SeriesKey{"A", "Wind"}], 13)
	_, err := BuildModel(in, testHorizon(), 1)
	if err == nil {
		t.Fatal("missing supim value should fail the build")
	}
	if _, ok := err.(*MissingAttributeError); !ok {
		t.Errorf("got %T, want *MissingAttributeError", err)
	}
}

func TestTransmissionConstraints(t *testing.T) {
	m := buildTestModel(t, twoSiteInput())
	ab := TransmissionKey{"A", "B", "hvac", "Elec"}
	ba := ab.mirror()

	cap := findCons(t, m, "def_transmission_capacity", 0, false, "A", "B", "hvac", "Elec")
	if cap.Op != Eq || cap.RHS != 50 {
		t.Errorf("capacity identity: got %s %g, want = 50", cap.Op, cap.RHS)
	}

	out := findCons(t, m, "def_transmission_output", 4, true, "A", "B", "hvac", "Elec")
	if out.Row.Coeff(m.ETraOut[TimedTra{4, ab}]) != 1 {
		t.Error("transfer identity: wrong output coefficient")
	}
	if got := out.Row.Coeff(m.ETraIn[TimedTra{4, ab}]); got != -0.9 {
		t.Errorf("transfer identity: input coefficient = %g, want -0.9", got)
	}

	ceil := findCons(t, m, "res_transmission_input_by_capacity", 4, true, "A", "B", "hvac", "Elec")
	if ceil.Op != Le || ceil.Row.Coeff(m.CapTra[ab]) != -1 {
		t.Error("input ceiling has wrong form")
	}

	sym := findCons(t, m, "res_transmission_symmetry", 0, false, "A", "B", "hvac", "Elec")
	if sym.Row.Coeff(m.CapTra[ab]) != 1 || sym.Row.Coeff(m.CapTra[ba]) != -1 {
		t.Error("symmetry row has wrong coefficients")
	}
	// the mirrored tuple generates its own symmetry row
	findCons(t, m, "res_transmission_symmetry", 0, false, "B", "A", "hvac", "Elec")

	bound := findCons(t, m, "res_transmission_capacity", 0, false, "A", "B", "hvac", "Elec")
	if !bound.Ranged || bound.Lo != 0 || bound.Up != 200 {
		t.Errorf("capacity bounds: got [%g, %g]", bound.Lo, bound.Up)
	}
}

func TestTransmissionMissingMirror(t *testing.T) {
	in := twoSiteInput()
	in.Transmission = in.Transmission[:1]
	_, err := BuildModel(in, testHorizon(), 1)
	if err == nil {
		t.Fatal("one-directional link should fail the build")
	}
	if _, ok := err.(*MalformedInputError); !ok {
		t.Errorf("got %T, want *MalformedInputError", err)
	}
}
