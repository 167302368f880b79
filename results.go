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

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/floats"
)

// Solution status values as reported by the solver.
const (
	StatusOptimal    = "optimal"
	StatusInfeasible = "infeasible"
	StatusUnbounded  = "unbounded"
	StatusUndefined  = "undefined"
)

// A Solution holds the outcome of solving a formulated problem:
// one primal value per variable, indexed by VarID.
type Solution struct {
	Status    string
	Objective float64
	Values    []float64
}

// ObjectiveValue recomputes the objective from the primal values.
// It should agree with Solution.Objective up to solver tolerance.
func (m *Model) ObjectiveValue(sol *Solution) float64 {
	return floats.Dot(m.LP.Obj, sol.Values)
}

// CostTotals returns the annualized cost of each category (EUR/a).
func (m *Model) CostTotals(sol *Solution) map[CostType]float64 {
	out := make(map[CostType]float64, len(m.Sets.CostTypes))
	for _, ct := range m.Sets.CostTypes {
		out[ct] = sol.Values[m.Costs[ct]]
	}
	return out
}

// A Capacity pairs the total and newly built size of a unit.
type Capacity struct {
	Total float64
	New   float64
}

// ProcessCapacities returns the solved total and new capacity (MW) of
// every process tuple.
func (m *Model) ProcessCapacities(sol *Solution) map[ProcessKey]Capacity {
	out := make(map[ProcessKey]Capacity, len(m.Sets.ProTuples))
	for _, k := range m.Sets.ProTuples {
		out[k] = Capacity{sol.Values[m.CapPro[k]], sol.Values[m.CapProNew[k]]}
	}
	return out
}

// TransmissionCapacities returns the solved total and new capacity
// (MW) of every directed transmission link.
func (m *Model) TransmissionCapacities(sol *Solution) map[TransmissionKey]Capacity {
	out := make(map[TransmissionKey]Capacity, len(m.Sets.TraTuples))
	for _, k := range m.Sets.TraTuples {
		out[k] = Capacity{sol.Values[m.CapTra[k]], sol.Values[m.CapTraNew[k]]}
	}
	return out
}

// StorageCapacity holds the solved power (MW) and energy content (MWh)
// sizing of one storage unit.
type StorageCapacity struct {
	Power   Capacity
	Content Capacity
}

// StorageCapacities returns the solved sizing of every storage tuple.
func (m *Model) StorageCapacities(sol *Solution) map[StorageKey]StorageCapacity {
	out := make(map[StorageKey]StorageCapacity, len(m.Sets.StoTuples))
	for _, k := range m.Sets.StoTuples {
		out[k] = StorageCapacity{
			Power:   Capacity{sol.Values[m.CapStoP[k]], sol.Values[m.CapStoPNew[k]]},
			Content: Capacity{sol.Values[m.CapStoC[k]], sol.Values[m.CapStoCNew[k]]},
		}
	}
	return out
}

// CO2ByProcess returns the annualized CO2 emission (t/a) of every
// process tuple.
func (m *Model) CO2ByProcess(sol *Solution) map[ProcessKey]float64 {
	out := make(map[ProcessKey]float64, len(m.Sets.ProTuples))
	for _, k := range m.Sets.ProTuples {
		var total float64
		for _, t := range m.TM {
			total += sol.Values[m.CO2ProOut[TimedPro{t, k}]]
		}
		out[k] = total * m.Weight
	}
	return out
}

// A Timeseries reports the solved flows of one commodity at one site
// over the modelled timesteps. Created and Consumed are keyed by
// process name; slice positions follow T.
type Timeseries struct {
	T []int

	Demand   []float64
	Stock    []float64
	Created  map[string][]float64
	Consumed map[string][]float64

	StorageLevel []float64
	StorageIn    []float64
	StorageOut   []float64

	Imported []float64
	Exported []float64
}

// CommodityTimeseries assembles the solved timeseries of one commodity
// at one site: demand, stock purchases, per-process creation and
// consumption, storage operation and transmission imports/exports.
func (m *Model) CommodityTimeseries(sol *Solution, site, com string) *Timeseries {
	n := len(m.TM)
	ts := &Timeseries{
		T:            m.TM,
		Demand:       make([]float64, n),
		Stock:        make([]float64, n),
		Created:      make(map[string][]float64),
		Consumed:     make(map[string][]float64),
		StorageLevel: make([]float64, n),
		StorageIn:    make([]float64, n),
		StorageOut:   make([]float64, n),
		Imported:     make([]float64, n),
		Exported:     make([]float64, n),
	}
	for i, t := range m.TM {
		if d, ok := m.Input.Demand.Value(t, site, com); ok {
			ts.Demand[i] = d
		}
	}
	for _, c := range m.Sets.ComTuples {
		if c.Site != site || c.Commodity != com || !m.Sets.ComStock[c.Commodity] {
			continue
		}
		for i, t := range m.TM {
			ts.Stock[i] += sol.Values[m.ECoStock[TimedCom{t, c}]]
		}
	}
	for _, p := range m.Sets.ProTuples {
		if p.Site != site {
			continue
		}
		if p.CommodityOut == com {
			col := ts.Created[p.Process]
			if col == nil {
				col = make([]float64, n)
				ts.Created[p.Process] = col
			}
			for i, t := range m.TM {
				col[i] += sol.Values[m.EProOut[TimedPro{t, p}]]
			}
		}
		if p.CommodityIn == com {
			col := ts.Consumed[p.Process]
			if col == nil {
				col = make([]float64, n)
				ts.Consumed[p.Process] = col
			}
			for i, t := range m.TM {
				col[i] += sol.Values[m.EProIn[TimedPro{t, p}]]
			}
		}
	}
	for _, s := range m.Sets.StoTuples {
		if s.Site != site || s.Commodity != com {
			continue
		}
		for i, t := range m.TM {
			ts.StorageLevel[i] += sol.Values[m.EStoCon[TimedSto{t, s}]]
			ts.StorageIn[i] += sol.Values[m.EStoIn[TimedSto{t, s}]]
			ts.StorageOut[i] += sol.Values[m.EStoOut[TimedSto{t, s}]]
		}
	}
	for _, k := range m.Sets.TraTuples {
		if k.Commodity != com {
			continue
		}
		if k.SiteOut == site {
			for i, t := range m.TM {
				ts.Imported[i] += sol.Values[m.ETraOut[TimedTra{t, k}]]
			}
		}
		if k.SiteIn == site {
			for i, t := range m.TM {
				ts.Exported[i] += sol.Values[m.ETraIn[TimedTra{t, k}]]
			}
		}
	}
	return ts
}

// summaryParameters returns the scalar result values available to
// user-defined output expressions.
func (m *Model) summaryParameters(sol *Solution) map[string]interface{} {
	p := map[string]interface{}{
		"objective": sol.Objective,
		"costTotal": 0.0,
		"weight":    m.Weight,
	}
	var total float64
	for ct, v := range m.CostTotals(sol) {
		p["cost"+string(ct)] = v
		total += v
	}
	p["costTotal"] = total
	var co2 float64
	for _, v := range m.CO2ByProcess(sol) {
		co2 += v
	}
	p["co2Total"] = co2
	return p
}

// EvalOutputs evaluates user-defined output expressions over the
// scalar results of a solved model. Expressions may reference the
// parameters objective, costInv, costFix, costVar, costFuel,
// costTotal, co2Total and weight, e.g.
// "costTotal / 1000000" or "co2Total * exp(0)". The expression
// language does not accept scientific notation in literals.
func (m *Model) EvalOutputs(sol *Solution, outputs map[string]string) (map[string]float64, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("esom: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("esom: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return (float64)(math.Min(arg[0].(float64), arg[1].(float64))), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("esom: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return (float64)(math.Max(arg[0].(float64), arg[1].(float64))), nil
		},
	}
	params := m.summaryParameters(sol)
	out := make(map[string]float64, len(outputs))
	for name, src := range outputs {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(src, funcs)
		if err != nil {
			return nil, fmt.Errorf("esom: parsing output expression %q: %v", name, err)
		}
		v, err := expression.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("esom: evaluating output expression %q: %v", name, err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("esom: output expression %q: result is not a number", name)
		}
		out[name] = f
	}
	return out, nil
}
