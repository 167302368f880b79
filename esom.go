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

// Package esom builds linear optimization models of distributed energy
// systems. A model minimizes the total cost of providing energy in the
// form of desired commodities (usually electricity) to satisfy a given
// demand timeseries. It contains commodities (electricity, fossil
// fuels, renewable sources, greenhouse gases), processes that convert
// one commodity to another while emitting CO2 as a secondary output,
// transmission for transporting commodities between sites, and storage
// for saving and retrieving commodities across time.
//
// The package transforms relational input tables plus a timestep
// horizon into an explicit in-memory linear program: decision
// variables, a sparse constraint system, and a scalar objective. The
// resulting Problem is handed to an external LP solver (see package
// solve); this package does not implement any solving algorithm.
package esom

import (
	"time"
)

// Version is the version of this esom release.
const Version = "0.3.0"

// TimedCom indexes a per-timestep variable over a commodity tuple.
type TimedCom struct {
	T   int
	Key CommodityKey
}

// TimedPro indexes a per-timestep variable over a process tuple.
type TimedPro struct {
	T   int
	Key ProcessKey
}

// TimedTra indexes a per-timestep variable over a transmission tuple.
type TimedTra struct {
	T   int
	Key TransmissionKey
}

// TimedSto indexes a per-timestep variable over a storage tuple.
type TimedSto struct {
	T   int
	Key StorageKey
}

// Model is the assembled model container: the input snapshot, derived
// sets, scalar parameters, the linear program and handles from each
// index tuple to its decision variables. It is immutable after
// BuildModel returns and must not be shared between concurrent builds.
type Model struct {
	Created string // build timestamp

	Input *Input
	Sets  *Sets

	T      []int   // full horizon; T[0] is the storage initialization step
	TM     []int   // modelled timesteps: T[1:]
	DT     float64 // timestep duration (hours)
	Weight float64 // 8760/(len(T)*DT), extrapolation to a full year

	LP *Problem

	// capacity variables (time-independent)
	CapPro     map[ProcessKey]VarID
	CapProNew  map[ProcessKey]VarID
	CapTra     map[TransmissionKey]VarID
	CapTraNew  map[TransmissionKey]VarID
	CapStoC    map[StorageKey]VarID
	CapStoCNew map[StorageKey]VarID
	CapStoP    map[StorageKey]VarID
	CapStoPNew map[StorageKey]VarID

	// emission and cost variables
	CO2ProOut map[TimedPro]VarID
	Costs     map[CostType]VarID

	// timeseries variables
	ECoStock map[TimedCom]VarID
	EProIn   map[TimedPro]VarID
	EProOut  map[TimedPro]VarID
	ETraIn   map[TimedTra]VarID
	ETraOut  map[TimedTra]VarID
	EStoIn   map[TimedSto]VarID
	EStoOut  map[TimedSto]VarID
	EStoCon  map[TimedSto]VarID // over the full horizon including T[0]

	prev map[int]int // timestep -> preceding timestep in the horizon
}

const dateFormat = "20060102T150405"

// hoursPerYear extrapolates a partial-year horizon to annual totals.
const hoursPerYear = 8760

// BuildModel assembles the complete linear program for the given input
// tables, timestep horizon and timestep duration dt (hours). The first
// element of timesteps is the storage initialization reference and is
// excluded from the modelled subset used for flow constraints. Any
// error aborts the build; no partial model is returned.
func BuildModel(input *Input, timesteps []int, dt float64) (*Model, error) {
	if dt <= 0 {
		return nil, &MalformedInputError{Table: "horizon", Reason: "timestep duration must be positive"}
	}
	if len(timesteps) < 2 {
		return nil, &MalformedInputError{Table: "horizon", Reason: "need an initial and at least one modelled timestep"}
	}
	seen := make(map[int]bool, len(timesteps))
	for _, t := range timesteps {
		if seen[t] {
			return nil, &MalformedInputError{Table: "horizon", Reason: "duplicate timestep in horizon"}
		}
		seen[t] = true
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	sets, err := DeriveSets(input)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Created: time.Now().Format(dateFormat),
		Input:   input,
		Sets:    sets,
		T:       timesteps,
		TM:      timesteps[1:],
		DT:      dt,
		Weight:  hoursPerYear / (float64(len(timesteps)) * dt),
		LP:      NewProblem(),
	}
	m.prev = make(map[int]int, len(m.TM))
	for i := 1; i < len(m.T); i++ {
		m.prev[m.T[i]] = m.T[i-1]
	}

	m.allocateVariables()
	for _, fam := range constraintFamilies() {
		if err := fam.generate(m); err != nil {
			return nil, err
		}
	}
	m.composeObjective()
	m.LP.freeze()
	return m, nil
}

// allocateVariables declares every decision variable over the index
// tuples and timesteps of the derived sets, in a fixed family order so
// that variable IDs are reproducible.
func (m *Model) allocateVariables() {
	m.CapPro = make(map[ProcessKey]VarID, len(m.Sets.ProTuples))
	m.CapProNew = make(map[ProcessKey]VarID, len(m.Sets.ProTuples))
	for _, k := range m.Sets.ProTuples {
		m.CapPro[k] = m.LP.AddVariable(Variable{Name: "cap_pro", Index: proIndex(k)})
	}
	for _, k := range m.Sets.ProTuples {
		m.CapProNew[k] = m.LP.AddVariable(Variable{Name: "cap_pro_new", Index: proIndex(k)})
	}

	m.CapTra = make(map[TransmissionKey]VarID, len(m.Sets.TraTuples))
	m.CapTraNew = make(map[TransmissionKey]VarID, len(m.Sets.TraTuples))
	for _, k := range m.Sets.TraTuples {
		m.CapTra[k] = m.LP.AddVariable(Variable{Name: "cap_tra", Index: traIndex(k)})
	}
	for _, k := range m.Sets.TraTuples {
		m.CapTraNew[k] = m.LP.AddVariable(Variable{Name: "cap_tra_new", Index: traIndex(k)})
	}

	m.CapStoC = make(map[StorageKey]VarID, len(m.Sets.StoTuples))
	m.CapStoCNew = make(map[StorageKey]VarID, len(m.Sets.StoTuples))
	m.CapStoP = make(map[StorageKey]VarID, len(m.Sets.StoTuples))
	m.CapStoPNew = make(map[StorageKey]VarID, len(m.Sets.StoTuples))
	for _, k := range m.Sets.StoTuples {
		m.CapStoC[k] = m.LP.AddVariable(Variable{Name: "cap_sto_c", Index: stoIndex(k)})
	}
	for _, k := range m.Sets.StoTuples {
		m.CapStoCNew[k] = m.LP.AddVariable(Variable{Name: "cap_sto_c_new", Index: stoIndex(k)})
	}
	for _, k := range m.Sets.StoTuples {
		m.CapStoP[k] = m.LP.AddVariable(Variable{Name: "cap_sto_p", Index: stoIndex(k)})
	}
	for _, k := range m.Sets.StoTuples {
		m.CapStoPNew[k] = m.LP.AddVariable(Variable{Name: "cap_sto_p_new", Index: stoIndex(k)})
	}

	m.CO2ProOut = make(map[TimedPro]VarID, len(m.TM)*len(m.Sets.ProTuples))
	for _, t := range m.TM {
		for _, k := range m.Sets.ProTuples {
			m.CO2ProOut[TimedPro{t, k}] = m.LP.AddVariable(Variable{Name: "co2_pro_out", T: t, Timed: true, Index: proIndex(k)})
		}
	}

	m.Costs = make(map[CostType]VarID, len(m.Sets.CostTypes))
	for _, ct := range m.Sets.CostTypes {
		m.Costs[ct] = m.LP.AddVariable(Variable{Name: "costs", Index: []string{string(ct)}})
	}

	m.ECoStock = make(map[TimedCom]VarID, len(m.TM)*len(m.Sets.ComTuples))
	for _, t := range m.TM {
		for _, k := range m.Sets.ComTuples {
			m.ECoStock[TimedCom{t, k}] = m.LP.AddVariable(Variable{Name: "e_co_stock", T: t, Timed: true, Index: comIndex(k)})
		}
	}

	m.EProIn = make(map[TimedPro]VarID, len(m.TM)*len(m.Sets.ProTuples))
	m.EProOut = make(map[TimedPro]VarID, len(m.TM)*len(m.Sets.ProTuples))
	for _, t := range m.TM {
		for _, k := range m.Sets.ProTuples {
			m.EProIn[TimedPro{t, k}] = m.LP.AddVariable(Variable{Name: "e_pro_in", T: t, Timed: true, Index: proIndex(k)})
		}
	}
	for _, t := range m.TM {
		for _, k := range m.Sets.ProTuples {
			m.EProOut[TimedPro{t, k}] = m.LP.AddVariable(Variable{Name: "e_pro_out", T: t, Timed: true, Index: proIndex(k)})
		}
	}

	m.ETraIn = make(map[TimedTra]VarID, len(m.TM)*len(m.Sets.TraTuples))
	m.ETraOut = make(map[TimedTra]VarID, len(m.TM)*len(m.Sets.TraTuples))
	for _, t := range m.TM {
		for _, k := range m.Sets.TraTuples {
			m.ETraIn[TimedTra{t, k}] = m.LP.AddVariable(Variable{Name: "e_tra_in", T: t, Timed: true, Index: traIndex(k)})
		}
	}
	for _, t := range m.TM {
		for _, k := range m.Sets.TraTuples {
			m.ETraOut[TimedTra{t, k}] = m.LP.AddVariable(Variable{Name: "e_tra_out", T: t, Timed: true, Index: traIndex(k)})
		}
	}

	m.EStoIn = make(map[TimedSto]VarID, len(m.TM)*len(m.Sets.StoTuples))
	m.EStoOut = make(map[TimedSto]VarID, len(m.TM)*len(m.Sets.StoTuples))
	for _, t := range m.TM {
		for _, k := range m.Sets.StoTuples {
			m.EStoIn[TimedSto{t, k}] = m.LP.AddVariable(Variable{Name: "e_sto_in", T: t, Timed: true, Index: stoIndex(k)})
		}
	}
	for _, t := range m.TM {
		for _, k := range m.Sets.StoTuples {
			m.EStoOut[TimedSto{t, k}] = m.LP.AddVariable(Variable{Name: "e_sto_out", T: t, Timed: true, Index: stoIndex(k)})
		}
	}

	// storage content exists for the initialization step too
	m.EStoCon = make(map[TimedSto]VarID, len(m.T)*len(m.Sets.StoTuples))
	for _, t := range m.T {
		for _, k := range m.Sets.StoTuples {
			m.EStoCon[TimedSto{t, k}] = m.LP.AddVariable(Variable{Name: "e_sto_con", T: t, Timed: true, Index: stoIndex(k)})
		}
	}
}

// composeObjective sets the objective to the sum of the four cost
// category totals; sense is minimize.
func (m *Model) composeObjective() {
	obj := m.LP.NewExpr()
	for _, ct := range m.Sets.CostTypes {
		obj.Add(m.Costs[ct], 1)
	}
	m.LP.SetObjective(obj)
}

func comIndex(k CommodityKey) []string {
	return []string{k.Site, k.Commodity, k.Type}
}

func proIndex(k ProcessKey) []string {
	return []string{k.Site, k.Process, k.CommodityIn, k.CommodityOut}
}

func traIndex(k TransmissionKey) []string {
	return []string{k.SiteIn, k.SiteOut, k.Technology, k.Commodity}
}

func stoIndex(k StorageKey) []string {
	return []string{k.Site, k.Storage, k.Commodity}
}
