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
	"math"
)

// UnsupportedCostTypeError is returned when a cost type appears in the
// cost-type set without a matching case in the cost assembly. Adding a
// cost category means adding both the set entry and its expression.
type UnsupportedCostTypeError struct {
	CostType CostType
}

func (e *UnsupportedCostTypeError) Error() string {
	return fmt.Sprintf("esom: unsupported cost type %q", e.CostType)
}

// emissionConstraints caps total annualized CO2 emissions at the limit
// given by the Global.CO2.Env commodity row. Without that row, or with
// an infinite limit, no cap is generated.
func (m *Model) emissionConstraints() error {
	row, ok := m.Input.CommodityRow(CO2Cap)
	if !ok {
		return nil
	}
	limit := row.Max
	if math.IsNaN(limit) || math.IsInf(limit, 1) {
		return nil
	}
	total := m.LP.NewExpr()
	for _, p := range m.Sets.ProTuples {
		for _, t := range m.TM {
			total.Add(m.CO2ProOut[TimedPro{t, p}], m.Weight)
		}
	}
	m.LP.AddConstraint(Constraint{
		Name: "res_co2_emission",
		Row:  total, Op: Le, RHS: limit,
	})
	return nil
}

// costConstraints equates each cost variable with its category
// expression. The cost expressions are assembled before any constraint
// is added, so an unsupported category leaves the problem untouched.
func (m *Model) costConstraints() error {
	rows := make([]Constraint, 0, len(m.Sets.CostTypes))
	for _, ct := range m.Sets.CostTypes {
		e, err := m.costExpr(ct)
		if err != nil {
			return err
		}
		e.Add(m.Costs[ct], -1)
		rows = append(rows, Constraint{
			Name: "def_costs", Index: []string{string(ct)},
			Row: e, Op: Eq, RHS: 0,
		})
	}
	for _, c := range rows {
		m.LP.AddConstraint(c)
	}
	return nil
}

// costExpr builds the expression for one cost category.
//
// Investment costs charge new capacity, scaled by the annuity factor
// to spread the payment over the depreciation duration. Fixed costs
// charge total capacity. Variable costs charge activity, and fuel
// costs charge stock commodity consumption at the commodity price.
// Activity and consumption are scaled by weight to extrapolate the
// modelled horizon to a full year.
func (m *Model) costExpr(ct CostType) (*Expr, error) {
	e := m.LP.NewExpr()
	switch ct {
	case CostInv:
		for _, p := range m.Sets.ProTuples {
			pr, _ := m.Input.ProcessRow(p)
			e.Add(m.CapProNew[p], pr.InvCost*pr.AnnuityFactor)
		}
		for _, k := range m.Sets.TraTuples {
			tr, _ := m.Input.TransmissionRow(k)
			e.Add(m.CapTraNew[k], tr.InvCost*tr.AnnuityFactor)
		}
		for _, s := range m.Sets.StoTuples {
			sr, _ := m.Input.StorageRow(s)
			e.Add(m.CapStoPNew[s], sr.InvCostP*sr.AnnuityFactor)
			e.Add(m.CapStoCNew[s], sr.InvCostC*sr.AnnuityFactor)
		}

	case CostFix:
		for _, p := range m.Sets.ProTuples {
			pr, _ := m.Input.ProcessRow(p)
			e.Add(m.CapPro[p], pr.FixCost)
		}
		for _, k := range m.Sets.TraTuples {
			tr, _ := m.Input.TransmissionRow(k)
			e.Add(m.CapTra[k], tr.FixCost)
		}
		for _, s := range m.Sets.StoTuples {
			sr, _ := m.Input.StorageRow(s)
			e.Add(m.CapStoP[s], sr.FixCostP)
			e.Add(m.CapStoC[s], sr.FixCostC)
		}

	case CostVar:
		for _, p := range m.Sets.ProTuples {
			pr, _ := m.Input.ProcessRow(p)
			for _, t := range m.TM {
				e.Add(m.EProOut[TimedPro{t, p}], pr.VarCost*m.DT*m.Weight)
			}
		}
		for _, k := range m.Sets.TraTuples {
			tr, _ := m.Input.TransmissionRow(k)
			for _, t := range m.TM {
				e.Add(m.ETraIn[TimedTra{t, k}], tr.VarCost*m.DT*m.Weight)
			}
		}
		for _, s := range m.Sets.StoTuples {
			sr, _ := m.Input.StorageRow(s)
			for _, t := range m.TM {
				// content is a level, not a flow, so its
				// var-cost term carries no dt
				e.Add(m.EStoCon[TimedSto{t, s}], sr.VarCostC*m.Weight)
				e.Add(m.EStoIn[TimedSto{t, s}], sr.VarCostP*m.DT*m.Weight)
				e.Add(m.EStoOut[TimedSto{t, s}], sr.VarCostP*m.DT*m.Weight)
			}
		}

	case CostFuel:
		for _, c := range m.Sets.ComTuples {
			if !m.Sets.ComStock[c.Commodity] {
				continue
			}
			row, _ := m.Input.CommodityRow(c)
			price, err := reqAttr(row.Price, "Commodity", c.String(), "price")
			if err != nil {
				return nil, err
			}
			for _, t := range m.TM {
				e.Add(m.ECoStock[TimedCom{t, c}], price*m.DT*m.Weight)
			}
		}

	default:
		return nil, &UnsupportedCostTypeError{ct}
	}
	return e, nil
}
