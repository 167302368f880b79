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

// storageConstraints generates the state recurrence, the power and
// content capacity identities and bounds, the charge/discharge
// ceilings and the cyclicity restriction for every storage tuple.
//
// Storage state is tracked on the full horizon including the
// initialization timestep, so the recurrence at the first modelled
// timestep refers back to the initial state.
func (m *Model) storageConstraints() error {
	t0 := m.T[0]
	tLast := m.T[len(m.T)-1]

	for _, s := range m.Sets.StoTuples {
		sr, ok := m.Input.StorageRow(s)
		if !ok {
			return &MissingAttributeError{"Storage", s.String(), "row"}
		}
		effIn, err := reqAttr(sr.EffIn, "Storage", s.String(), "eff-in")
		if err != nil {
			return err
		}
		effOut, err := reqAttr(sr.EffOut, "Storage", s.String(), "eff-out")
		if err != nil {
			return err
		}
		instCapP, err := reqAttr(sr.InstCapP, "Storage", s.String(), "inst-cap-p")
		if err != nil {
			return err
		}
		instCapC, err := reqAttr(sr.InstCapC, "Storage", s.String(), "inst-cap-c")
		if err != nil {
			return err
		}
		init, err := reqAttr(sr.Init, "Storage", s.String(), "init")
		if err != nil {
			return err
		}

		// storage content[t] = content[t-1] + input * eff-in * dt
		//                                   - output / eff-out * dt
		for _, t := range m.TM {
			rec := m.LP.NewExpr()
			rec.Add(m.EStoCon[TimedSto{m.prev[t], s}], 1)
			rec.Add(m.EStoIn[TimedSto{t, s}], effIn*m.DT)
			rec.Add(m.EStoOut[TimedSto{t, s}], -m.DT/effOut)
			rec.Add(m.EStoCon[TimedSto{t, s}], -1)
			m.LP.AddConstraint(Constraint{
				Name: "def_storage_state", T: t, Timed: true, Index: stoIndex(s),
				Row: rec, Op: Eq, RHS: 0,
			})
		}

		// total storage power = inst-cap-p + new power
		capP := m.LP.NewExpr()
		capP.Add(m.CapStoP[s], 1)
		capP.Add(m.CapStoPNew[s], -1)
		m.LP.AddConstraint(Constraint{
			Name: "def_storage_power", Index: stoIndex(s),
			Row: capP, Op: Eq, RHS: instCapP,
		})

		// total storage content = inst-cap-c + new content
		capC := m.LP.NewExpr()
		capC.Add(m.CapStoC[s], 1)
		capC.Add(m.CapStoCNew[s], -1)
		m.LP.AddConstraint(Constraint{
			Name: "def_storage_capacity", Index: stoIndex(s),
			Row: capC, Op: Eq, RHS: instCapC,
		})

		// storage.cap-lo-p <= total storage power <= storage.cap-up-p
		boundP := m.LP.NewExpr()
		boundP.Add(m.CapStoP[s], 1)
		m.LP.AddConstraint(Constraint{
			Name: "res_storage_power", Index: stoIndex(s),
			Row: boundP, Ranged: true, Lo: sr.CapLoP, Up: sr.CapUpP,
		})

		// storage.cap-lo-c <= total storage content <= storage.cap-up-c
		boundC := m.LP.NewExpr()
		boundC.Add(m.CapStoC[s], 1)
		m.LP.AddConstraint(Constraint{
			Name: "res_storage_capacity", Index: stoIndex(s),
			Row: boundC, Ranged: true, Lo: sr.CapLoC, Up: sr.CapUpC,
		})

		for _, t := range m.TM {
			// storage input <= total storage power
			in := m.LP.NewExpr()
			in.Add(m.EStoIn[TimedSto{t, s}], 1)
			in.Add(m.CapStoP[s], -1)
			m.LP.AddConstraint(Constraint{
				Name: "res_storage_input_by_power", T: t, Timed: true, Index: stoIndex(s),
				Row: in, Op: Le, RHS: 0,
			})

			// storage output <= total storage power
			out := m.LP.NewExpr()
			out.Add(m.EStoOut[TimedSto{t, s}], 1)
			out.Add(m.CapStoP[s], -1)
			m.LP.AddConstraint(Constraint{
				Name: "res_storage_output_by_power", T: t, Timed: true, Index: stoIndex(s),
				Row: out, Op: Le, RHS: 0,
			})
		}

		// storage content <= total storage content, on the full
		// horizon so the initial state is bounded too
		for _, t := range m.T {
			con := m.LP.NewExpr()
			con.Add(m.EStoCon[TimedSto{t, s}], 1)
			con.Add(m.CapStoC[s], -1)
			m.LP.AddConstraint(Constraint{
				Name: "res_storage_state_by_capacity", T: t, Timed: true, Index: stoIndex(s),
				Row: con, Op: Le, RHS: 0,
			})
		}

		// initial storage content = total storage content * init,
		// final storage content >= initial storage content. The
		// inequality forbids a free lunch from draining the storage
		// over the horizon.
		first := m.LP.NewExpr()
		first.Add(m.EStoCon[TimedSto{t0, s}], 1)
		first.Add(m.CapStoC[s], -init)
		m.LP.AddConstraint(Constraint{
			Name: "res_initial_storage_state", T: t0, Timed: true, Index: stoIndex(s),
			Row: first, Op: Eq, RHS: 0,
		})

		last := m.LP.NewExpr()
		last.Add(m.EStoCon[TimedSto{tLast, s}], 1)
		last.Add(m.CapStoC[s], -init)
		m.LP.AddConstraint(Constraint{
			Name: "res_final_storage_state", T: tLast, Timed: true, Index: stoIndex(s),
			Row: last, Op: Ge, RHS: 0,
		})
	}
	return nil
}
