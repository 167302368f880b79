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

import "sort"

// Commodity types. CO2Cap is the reserved Commodity table key carrying
// the system-wide emission limit.
const (
	TypeSupIm  = "SupIm"  // intermittent supply
	TypeStock  = "Stock"  // purchasable fuel
	TypeDemand = "Demand" // must-serve demand
	TypeEnv    = "Env"    // environmental commodity
)

// CO2Cap is the Commodity row holding the global CO2 emission limit.
var CO2Cap = CommodityKey{Site: "Global", Commodity: "CO2", Type: TypeEnv}

// CostType labels one of the four cost categories summed in the
// objective. The set is fixed; it is not user-extensible.
type CostType string

const (
	CostInv  CostType = "Inv"
	CostFix  CostType = "Fix"
	CostVar  CostType = "Var"
	CostFuel CostType = "Fuel"
)

// CostTypes returns the fixed list of cost categories in declaration
// order.
func CostTypes() []CostType {
	return []CostType{CostInv, CostFix, CostVar, CostFuel}
}

// Sets holds the vocabularies derived from the input tables: the
// distinct sites, commodities and technologies, the existing index
// tuples of each table, and the commodity subsets by type. All slices
// are sorted so that iteration, and with it variable and constraint
// ordering, is reproducible across builds.
type Sets struct {
	Sites        []string
	Commodities  []string
	ComTypes     []string
	Processes    []string
	TransTechs   []string
	StorageTechs []string
	CostTypes    []CostType

	ComTuples []CommodityKey
	ProTuples []ProcessKey
	TraTuples []TransmissionKey
	StoTuples []StorageKey

	// commodity subsets by type, as cross-site unions of names
	ComSupIm  map[string]bool
	ComStock  map[string]bool
	ComDemand map[string]bool
}

// DeriveSets extracts the Sets from the input tables. It fails with a
// DuplicateKeyError if any table contains two rows with the same
// composite key; this happens before any variable is allocated.
func DeriveSets(in *Input) (*Sets, error) {
	s := &Sets{
		CostTypes: CostTypes(),
		ComSupIm:  make(map[string]bool),
		ComStock:  make(map[string]bool),
		ComDemand: make(map[string]bool),
	}

	sites := make(map[string]bool)
	coms := make(map[string]bool)
	comTypes := make(map[string]bool)
	pros := make(map[string]bool)
	tras := make(map[string]bool)
	stos := make(map[string]bool)

	comSeen := make(map[CommodityKey]bool)
	for _, r := range in.Commodity {
		if comSeen[r.Key] {
			return nil, &DuplicateKeyError{"Commodity", r.Key.String()}
		}
		comSeen[r.Key] = true
		s.ComTuples = append(s.ComTuples, r.Key)
		sites[r.Key.Site] = true
		coms[r.Key.Commodity] = true
		comTypes[r.Key.Type] = true
		switch r.Key.Type {
		case TypeSupIm:
			s.ComSupIm[r.Key.Commodity] = true
		case TypeStock:
			s.ComStock[r.Key.Commodity] = true
		case TypeDemand:
			s.ComDemand[r.Key.Commodity] = true
		}
	}

	proSeen := make(map[ProcessKey]bool)
	for _, r := range in.Process {
		if proSeen[r.Key] {
			return nil, &DuplicateKeyError{"Process", r.Key.String()}
		}
		proSeen[r.Key] = true
		s.ProTuples = append(s.ProTuples, r.Key)
		sites[r.Key.Site] = true
		pros[r.Key.Process] = true
	}

	traSeen := make(map[TransmissionKey]bool)
	for _, r := range in.Transmission {
		if traSeen[r.Key] {
			return nil, &DuplicateKeyError{"Transmission", r.Key.String()}
		}
		traSeen[r.Key] = true
		s.TraTuples = append(s.TraTuples, r.Key)
		sites[r.Key.SiteIn] = true
		sites[r.Key.SiteOut] = true
		tras[r.Key.Technology] = true
	}

	stoSeen := make(map[StorageKey]bool)
	for _, r := range in.Storage {
		if stoSeen[r.Key] {
			return nil, &DuplicateKeyError{"Storage", r.Key.String()}
		}
		stoSeen[r.Key] = true
		s.StoTuples = append(s.StoTuples, r.Key)
		sites[r.Key.Site] = true
		stos[r.Key.Storage] = true
	}

	s.Sites = sortedKeys(sites)
	s.Commodities = sortedKeys(coms)
	s.ComTypes = sortedKeys(comTypes)
	s.Processes = sortedKeys(pros)
	s.TransTechs = sortedKeys(tras)
	s.StorageTechs = sortedKeys(stos)

	sort.Slice(s.ComTuples, func(i, j int) bool { return s.ComTuples[i].String() < s.ComTuples[j].String() })
	sort.Slice(s.ProTuples, func(i, j int) bool { return s.ProTuples[i].String() < s.ProTuples[j].String() })
	sort.Slice(s.TraTuples, func(i, j int) bool { return s.TraTuples[i].String() < s.TraTuples[j].String() })
	sort.Slice(s.StoTuples, func(i, j int) bool { return s.StoTuples[i].String() < s.StoTuples[j].String() })

	return s, nil
}

func sortedKeys(m map[string]bool) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
