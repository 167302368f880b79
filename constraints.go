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

// Constraint generation is organized as a registry of families. Each
// family produces exactly one constraint per applicable index tuple;
// tuples outside a family's applicability are never materialized.
// Constraint names follow the def_/res_ convention: def_ constraints
// are equations defining variable values, res_ constraints are
// restrictions limiting them.

type constraintFamily struct {
	name     string
	generate func(*Model) error
}

// constraintFamilies returns the registry of constraint generators in
// generation order. Order only affects the readability of the emitted
// problem, not its semantics.
func constraintFamilies() []constraintFamily {
	return []constraintFamily{
		{"commodity", (*Model).commodityConstraints},
		{"process", (*Model).processConstraints},
		{"transmission", (*Model).transmissionConstraints},
		{"storage", (*Model).storageConstraints},
		{"emissions", (*Model).emissionConstraints},
		{"cost", (*Model).costConstraints},
	}
}

// commodityConstraints generates demand satisfaction for demand-type
// commodities and stock accounting plus purchase limits for stock-type
// commodities. Other commodity types produce no commodity constraints.
func (m *Model) commodityConstraints() error {
	for _, c := range m.Sets.ComTuples {
		switch {
		case m.Sets.ComDemand[c.Commodity]:
			// storage + transmission + process + source >= demand
			for _, t := range m.TM {
				d, ok := m.Input.Demand.Value(t, c.Site, c.Commodity)
				if !ok {
					return &MissingAttributeError{"Demand", c.String(), "value for timestep"}
				}
				row := m.LP.NewExpr()
				row.AddScaled(m.commodityBalance(t, c.Site, c.Commodity), -1)
				m.LP.AddConstraint(Constraint{
					Name: "res_demand", T: t, Timed: true, Index: comIndex(c),
					Row: row, Op: Ge, RHS: d,
				})
			}

		case m.Sets.ComStock[c.Commodity]:
			row, ok := m.Input.CommodityRow(c)
			if !ok {
				return &MissingAttributeError{"Commodity", c.String(), "row"}
			}
			maxPerStep, err := reqAttr(row.MaxPerStep, "Commodity", c.String(), "maxperstep")
			if err != nil {
				return err
			}
			max, err := reqAttr(row.Max, "Commodity", c.String(), "max")
			if err != nil {
				return err
			}

			// commodity source term = commodity consumption per timestep
			for _, t := range m.TM {
				def := m.LP.NewExpr()
				def.Add(m.ECoStock[TimedCom{t, c}], 1)
				def.AddScaled(m.commodityBalance(t, c.Site, c.Commodity), -1)
				m.LP.AddConstraint(Constraint{
					Name: "def_e_co_stock", T: t, Timed: true, Index: comIndex(c),
					Row: def, Op: Eq, RHS: 0,
				})
			}

			// commodity source term <= commodity.maxperstep
			for _, t := range m.TM {
				step := m.LP.NewExpr()
				step.Add(m.ECoStock[TimedCom{t, c}], 1)
				m.LP.AddConstraint(Constraint{
					Name: "res_stock_step", T: t, Timed: true, Index: comIndex(c),
					Row: step, Op: Le, RHS: maxPerStep,
				})
			}

			// total commodity source term <= commodity.max
			total := m.LP.NewExpr()
			for _, t := range m.TM {
				total.Add(m.ECoStock[TimedCom{t, c}], m.DT*m.Weight)
			}
			m.LP.AddConstraint(Constraint{
				Name: "res_stock_total", Index: comIndex(c),
				Row: total, Op: Le, RHS: max,
			})
		}
	}
	return nil
}

// processConstraints generates the capacity identity, the conversion
// identity, the intermittent-supply override, CO2 accounting and the
// capacity restrictions for every process tuple.
func (m *Model) processConstraints() error {
	for _, p := range m.Sets.ProTuples {
		pr, ok := m.Input.ProcessRow(p)
		if !ok {
			return &MissingAttributeError{"Process", p.String(), "row"}
		}
		eff, err := reqAttr(pr.Eff, "Process", p.String(), "eff")
		if err != nil {
			return err
		}
		co2, err := reqAttr(pr.CO2, "Process", p.String(), "co2")
		if err != nil {
			return err
		}
		instCap, err := reqAttr(pr.InstCap, "Process", p.String(), "inst-cap")
		if err != nil {
			return err
		}

		// total process capacity = inst-cap + new capacity
		capRow := m.LP.NewExpr()
		capRow.Add(m.CapPro[p], 1)
		capRow.Add(m.CapProNew[p], -1)
		m.LP.AddConstraint(Constraint{
			Name: "def_process_capacity", Index: proIndex(p),
			Row: capRow, Op: Eq, RHS: instCap,
		})

		// process.cap-lo <= total process capacity <= process.cap-up
		bound := m.LP.NewExpr()
		bound.Add(m.CapPro[p], 1)
		m.LP.AddConstraint(Constraint{
			Name: "res_process_capacity", Index: proIndex(p),
			Row: bound, Ranged: true, Lo: pr.CapLo, Up: pr.CapUp,
		})

		supim := m.Sets.ComSupIm[p.CommodityIn]

		for _, t := range m.TM {
			// process output = process input * efficiency
			out := m.LP.NewExpr()
			out.Add(m.EProOut[TimedPro{t, p}], 1)
			out.Add(m.EProIn[TimedPro{t, p}], -eff)
			m.LP.AddConstraint(Constraint{
				Name: "def_process_output", T: t, Timed: true, Index: proIndex(p),
				Row: out, Op: Eq, RHS: 0,
			})

			// process input = process capacity * supim timeseries.
			// Pins input to availability for intermittent sources;
			// the generic capacity ceiling below is kept regardless.
			if supim {
				s, ok := m.Input.SupIm.Value(t, p.Site, p.CommodityIn)
				if !ok {
					return &MissingAttributeError{"SupIm", p.Site + "." + p.CommodityIn, "value for timestep"}
				}
				sup := m.LP.NewExpr()
				sup.Add(m.EProIn[TimedPro{t, p}], 1)
				sup.Add(m.CapPro[p], -s)
				m.LP.AddConstraint(Constraint{
					Name: "def_intermittent_supply", T: t, Timed: true, Index: proIndex(p),
					Row: sup, Op: Eq, RHS: 0,
				})
			}

			// process co2 output = process input * process.co2 * dt
			em := m.LP.NewExpr()
			em.Add(m.CO2ProOut[TimedPro{t, p}], 1)
			em.Add(m.EProIn[TimedPro{t, p}], -co2*m.DT)
			m.LP.AddConstraint(Constraint{
				Name: "def_co2_emissions", T: t, Timed: true, Index: proIndex(p),
				Row: em, Op: Eq, RHS: 0,
			})

			// process output <= total process capacity
			ceil := m.LP.NewExpr()
			ceil.Add(m.EProOut[TimedPro{t, p}], 1)
			ceil.Add(m.CapPro[p], -1)
			m.LP.AddConstraint(Constraint{
				Name: "res_process_output_by_capacity", T: t, Timed: true, Index: proIndex(p),
				Row: ceil, Op: Le, RHS: 0,
			})
		}
	}
	return nil
}

// transmissionConstraints generates the capacity identity, the
// transfer identity, the input ceiling, the capacity bounds and the
// bidirectional symmetry restriction for every transmission tuple.
func (m *Model) transmissionConstraints() error {
	for _, k := range m.Sets.TraTuples {
		tr, ok := m.Input.TransmissionRow(k)
		if !ok {
			return &MissingAttributeError{"Transmission", k.String(), "row"}
		}
		eff, err := reqAttr(tr.Eff, "Transmission", k.String(), "eff")
		if err != nil {
			return err
		}
		instCap, err := reqAttr(tr.InstCap, "Transmission", k.String(), "inst-cap")
		if err != nil {
			return err
		}
		mirror, ok := m.CapTra[k.mirror()]
		if !ok {
			return &MalformedInputError{"Transmission", k.String(), "no mirror link for the opposite direction"}
		}

		// total transmission capacity = inst-cap + new capacity
		capRow := m.LP.NewExpr()
		capRow.Add(m.CapTra[k], 1)
		capRow.Add(m.CapTraNew[k], -1)
		m.LP.AddConstraint(Constraint{
			Name: "def_transmission_capacity", Index: traIndex(k),
			Row: capRow, Op: Eq, RHS: instCap,
		})

		// transmission.cap-lo <= total capacity <= transmission.cap-up
		bound := m.LP.NewExpr()
		bound.Add(m.CapTra[k], 1)
		m.LP.AddConstraint(Constraint{
			Name: "res_transmission_capacity", Index: traIndex(k),
			Row: bound, Ranged: true, Lo: tr.CapLo, Up: tr.CapUp,
		})

		// total capacity must be symmetric in both directions
		sym := m.LP.NewExpr()
		sym.Add(m.CapTra[k], 1)
		sym.Add(mirror, -1)
		m.LP.AddConstraint(Constraint{
			Name: "res_transmission_symmetry", Index: traIndex(k),
			Row: sym, Op: Eq, RHS: 0,
		})

		for _, t := range m.TM {
			// transmission output = transmission input * efficiency
			out := m.LP.NewExpr()
			out.Add(m.ETraOut[TimedTra{t, k}], 1)
			out.Add(m.ETraIn[TimedTra{t, k}], -eff)
			m.LP.AddConstraint(Constraint{
				Name: "def_transmission_output", T: t, Timed: true, Index: traIndex(k),
				Row: out, Op: Eq, RHS: 0,
			})

			// transmission input <= total transmission capacity
			ceil := m.LP.NewExpr()
			ceil.Add(m.ETraIn[TimedTra{t, k}], 1)
			ceil.Add(m.CapTra[k], -1)
			m.LP.AddConstraint(Constraint{
				Name: "res_transmission_input_by_capacity", T: t, Timed: true, Index: traIndex(k),
				Row: ceil, Op: Le, RHS: 0,
			})
		}
	}
	return nil
}
