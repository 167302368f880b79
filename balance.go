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

// commodityBalance returns the net flow of commodity com at site and
// timestep t as a linear expression over the flow variables. Consumed
// power (process and storage input, transmission export) counts
// positive; provided power (process output, transmission import,
// storage withdrawal) counts negative. The result does not depend on
// iteration order: it is a pure read of the variable handles.
func (m *Model) commodityBalance(t int, site, com string) *Expr {
	b := m.LP.NewExpr()
	for _, p := range m.Sets.ProTuples {
		if p.Site == site && p.CommodityIn == com {
			// usage as process input increases the balance
			b.Add(m.EProIn[TimedPro{t, p}], 1)
		}
		if p.Site == site && p.CommodityOut == com {
			// process output decreases the balance
			b.Add(m.EProOut[TimedPro{t, p}], -1)
		}
	}
	for _, tr := range m.Sets.TraTuples {
		if tr.SiteIn == site && tr.Commodity == com {
			// exports increase the balance
			b.Add(m.ETraIn[TimedTra{t, tr}], 1)
		}
		if tr.SiteOut == site && tr.Commodity == com {
			// imports decrease the balance
			b.Add(m.ETraOut[TimedTra{t, tr}], -1)
		}
	}
	for _, s := range m.Sets.StoTuples {
		if s.Site == site && s.Commodity == com {
			b.Add(m.EStoIn[TimedSto{t, s}], 1)
			b.Add(m.EStoOut[TimedSto{t, s}], -1)
		}
	}
	return b
}
