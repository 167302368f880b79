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
	"reflect"
	"testing"
)

func TestDeriveSets(t *testing.T) {
	s, err := DeriveSets(testInput())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A"}; !reflect.DeepEqual(s.Sites, want) {
		t.Errorf("Sites = %v, want %v", s.Sites, want)
	}
	if want := []string{"Coal", "Elec"}; !reflect.DeepEqual(s.Commodities, want) {
		t.Errorf("Commodities = %v, want %v", s.Commodities, want)
	}
	if want := []string{"Demand", "Stock"}; !reflect.DeepEqual(s.ComTypes, want) {
		t.Errorf("ComTypes = %v, want %v", s.ComTypes, want)
	}
	if want := []string{"pp"}; !reflect.DeepEqual(s.Processes, want) {
		t.Errorf("Processes = %v, want %v", s.Processes, want)
	}
	if !s.ComStock["Coal"] || s.ComStock["Elec"] {
		t.Errorf("wrong stock subset: %v", s.ComStock)
	}
	if !s.ComDemand["Elec"] || s.ComDemand["Coal"] {
		t.Errorf("wrong demand subset: %v", s.ComDemand)
	}
	if len(s.ComSupIm) != 0 {
		t.Errorf("wrong supim subset: %v", s.ComSupIm)
	}
	if want := CostTypes(); !reflect.DeepEqual(s.CostTypes, want) {
		t.Errorf("CostTypes = %v, want %v", s.CostTypes, want)
	}
	if len(s.ComTuples) != 2 || len(s.ProTuples) != 1 {
		t.Errorf("wrong tuple counts: %d commodities, %d processes", len(s.ComTuples), len(s.ProTuples))
	}
}

func TestDeriveSetsSorted(t *testing.T) {
	in := testInput()
	// insert rows in reverse lexicographic order
	in.Commodity = append([]*CommodityRow{
		{Key: CommodityKey{"Z", "Gas", TypeStock}, Price: 1},
	}, in.Commodity...)
	s, err := DeriveSets(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(s.ComTuples); i++ {
		if s.ComTuples[i-1].String() >= s.ComTuples[i].String() {
			t.Errorf("ComTuples not sorted: %v before %v", s.ComTuples[i-1], s.ComTuples[i])
		}
	}
	if want := []string{"A", "Z"}; !reflect.DeepEqual(s.Sites, want) {
		t.Errorf("Sites = %v, want %v", s.Sites, want)
	}
}

func TestDeriveSetsDuplicate(t *testing.T) {
	in := testInput()
	in.Process = append(in.Process, &ProcessRow{Key: in.Process[0].Key, Eff: 1})
	_, err := DeriveSets(in)
	if err == nil {
		t.Fatal("duplicate process key should fail")
	}
	if _, ok := err.(*DuplicateKeyError); !ok {
		t.Errorf("got %T, want *DuplicateKeyError", err)
	}
}
