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
	"strings"
)

// CommodityKey identifies a row in the Commodity table.
type CommodityKey struct {
	Site      string
	Commodity string
	Type      string
}

func (k CommodityKey) String() string {
	return strings.Join([]string{k.Site, k.Commodity, k.Type}, ".")
}

// ProcessKey identifies a row in the Process table. A process converts
// CommodityIn into CommodityOut at Site.
type ProcessKey struct {
	Site         string
	Process      string
	CommodityIn  string
	CommodityOut string
}

func (k ProcessKey) String() string {
	return strings.Join([]string{k.Site, k.Process, k.CommodityIn, k.CommodityOut}, ".")
}

// TransmissionKey identifies a row in the Transmission table. A
// transmission link carries Commodity from SiteIn to SiteOut.
type TransmissionKey struct {
	SiteIn     string
	SiteOut    string
	Technology string
	Commodity  string
}

func (k TransmissionKey) String() string {
	return strings.Join([]string{k.SiteIn, k.SiteOut, k.Technology, k.Commodity}, ".")
}

// mirror returns the key of the same link in the opposite direction.
func (k TransmissionKey) mirror() TransmissionKey {
	return TransmissionKey{k.SiteOut, k.SiteIn, k.Technology, k.Commodity}
}

// StorageKey identifies a row in the Storage table.
type StorageKey struct {
	Site      string
	Storage   string
	Commodity string
}

func (k StorageKey) String() string {
	return strings.Join([]string{k.Site, k.Storage, k.Commodity}, ".")
}

// CommodityRow holds the attributes of one commodity at one site.
// Attributes that do not apply to the commodity type may be NaN; they
// are only read for the types that need them, and reading a NaN
// attribute fails the model build with a MissingAttributeError.
type CommodityRow struct {
	Key CommodityKey

	Price      float64 // purchase price for stock commodities (EUR/MWh)
	Max        float64 // annual limit (MWh for stock, t for environment)
	MaxPerStep float64 // per-timestep purchase limit (MW)
}

// ProcessRow holds the attributes of one conversion process.
type ProcessRow struct {
	Key ProcessKey

	Eff     float64 // conversion efficiency (output per input)
	CO2     float64 // emission rate (t CO2 per MWh input)
	CapLo   float64 // lower bound on total capacity (MW)
	CapUp   float64 // upper bound on total capacity (MW)
	InstCap float64 // already installed capacity (MW)

	InvCost float64 // investment cost (EUR/MW)
	FixCost float64 // annual fixed cost (EUR/MW)
	VarCost float64 // variable cost (EUR/MWh output)

	Depreciation  float64 // depreciation period (a)
	WACC          float64 // weighted average cost of capital (1)
	AnnuityFactor float64 // derived from Depreciation and WACC
}

// TransmissionRow holds the attributes of one directed transmission link.
type TransmissionRow struct {
	Key TransmissionKey

	Eff     float64
	CapLo   float64
	CapUp   float64
	InstCap float64

	InvCost float64
	FixCost float64
	VarCost float64

	Depreciation  float64
	WACC          float64
	AnnuityFactor float64
}

// StorageRow holds the attributes of one storage unit. Power (MW) and
// energy capacity (MWh) are sized independently.
type StorageRow struct {
	Key StorageKey

	EffIn  float64 // charging efficiency
	EffOut float64 // discharging efficiency

	CapLoP   float64
	CapUpP   float64
	InstCapP float64
	CapLoC   float64
	CapUpC   float64
	InstCapC float64

	Init float64 // initial fill fraction of energy capacity

	InvCostP float64
	FixCostP float64
	VarCostP float64 // per MWh charged or discharged
	InvCostC float64
	FixCostC float64
	VarCostC float64 // per MWh stored

	Depreciation  float64
	WACC          float64
	AnnuityFactor float64
}

// SeriesKey addresses one column of a timeseries table.
type SeriesKey struct {
	Site      string
	Commodity string
}

// Series holds a per-timestep magnitude (MW) for each site/commodity
// pair, e.g. demand or intermittent supply availability.
type Series map[SeriesKey]map[int]float64

// Value returns the series magnitude for the given timestep, site and
// commodity, with ok reporting whether it is defined.
func (s Series) Value(t int, site, com string) (v float64, ok bool) {
	col, ok := s[SeriesKey{site, com}]
	if !ok {
		return 0, false
	}
	v, ok = col[t]
	return v, ok
}

// Set records a series magnitude, allocating the column if needed.
func (s Series) Set(t int, site, com string, v float64) {
	k := SeriesKey{site, com}
	if s[k] == nil {
		s[k] = make(map[int]float64)
	}
	s[k][t] = v
}

// Input holds the five relational input tables plus the two timeseries
// tables. It is loaded once per model build and read-only afterwards.
type Input struct {
	Commodity    []*CommodityRow
	Process      []*ProcessRow
	Transmission []*TransmissionRow
	Storage      []*StorageRow
	Demand       Series
	SupIm        Series

	commodityIdx    map[CommodityKey]*CommodityRow
	processIdx      map[ProcessKey]*ProcessRow
	transmissionIdx map[TransmissionKey]*TransmissionRow
	storageIdx      map[StorageKey]*StorageRow
}

// index builds the key lookup maps. Duplicate keys are reported by
// DeriveSets before any lookup happens, so later rows simply win here.
func (in *Input) index() {
	if in.commodityIdx != nil {
		return
	}
	in.commodityIdx = make(map[CommodityKey]*CommodityRow, len(in.Commodity))
	for _, r := range in.Commodity {
		in.commodityIdx[r.Key] = r
	}
	in.processIdx = make(map[ProcessKey]*ProcessRow, len(in.Process))
	for _, r := range in.Process {
		in.processIdx[r.Key] = r
	}
	in.transmissionIdx = make(map[TransmissionKey]*TransmissionRow, len(in.Transmission))
	for _, r := range in.Transmission {
		in.transmissionIdx[r.Key] = r
	}
	in.storageIdx = make(map[StorageKey]*StorageRow, len(in.Storage))
	for _, r := range in.Storage {
		in.storageIdx[r.Key] = r
	}
}

// CommodityRow returns the commodity table row for the given key.
func (in *Input) CommodityRow(k CommodityKey) (*CommodityRow, bool) {
	in.index()
	r, ok := in.commodityIdx[k]
	return r, ok
}

// ProcessRow returns the process table row for the given key.
func (in *Input) ProcessRow(k ProcessKey) (*ProcessRow, bool) {
	in.index()
	r, ok := in.processIdx[k]
	return r, ok
}

// TransmissionRow returns the transmission table row for the given key.
func (in *Input) TransmissionRow(k TransmissionKey) (*TransmissionRow, bool) {
	in.index()
	r, ok := in.transmissionIdx[k]
	return r, ok
}

// StorageRow returns the storage table row for the given key.
func (in *Input) StorageRow(k StorageKey) (*StorageRow, bool) {
	in.index()
	r, ok := in.storageIdx[k]
	return r, ok
}

// Validate checks the table invariants that do not depend on the
// timestep horizon: positive efficiencies, ordered capacity bounds and
// fill fractions within [0, 1].
func (in *Input) Validate() error {
	for _, r := range in.Process {
		if !(r.Eff > 0) {
			return &MalformedInputError{"Process", r.Key.String(), "efficiency must be positive"}
		}
		if r.CapLo > r.CapUp {
			return &MalformedInputError{"Process", r.Key.String(), "cap-lo exceeds cap-up"}
		}
	}
	for _, r := range in.Transmission {
		if !(r.Eff > 0) {
			return &MalformedInputError{"Transmission", r.Key.String(), "efficiency must be positive"}
		}
		if r.CapLo > r.CapUp {
			return &MalformedInputError{"Transmission", r.Key.String(), "cap-lo exceeds cap-up"}
		}
	}
	for _, r := range in.Storage {
		if !(r.EffIn > 0 && r.EffIn <= 1) || !(r.EffOut > 0 && r.EffOut <= 1) {
			return &MalformedInputError{"Storage", r.Key.String(), "efficiencies must be in (0, 1]"}
		}
		if r.CapLoP > r.CapUpP {
			return &MalformedInputError{"Storage", r.Key.String(), "cap-lo-p exceeds cap-up-p"}
		}
		if r.CapLoC > r.CapUpC {
			return &MalformedInputError{"Storage", r.Key.String(), "cap-lo-c exceeds cap-up-c"}
		}
		if r.Init < 0 || r.Init > 1 {
			return &MalformedInputError{"Storage", r.Key.String(), "init fraction must be in [0, 1]"}
		}
	}
	return nil
}

// DeriveAnnuityFactors computes the annuity factor of every process,
// transmission and storage row from its depreciation period and WACC.
// It is called by ReadXLSX immediately after load; callers that build
// an Input directly must call it themselves before BuildModel.
func (in *Input) DeriveAnnuityFactors() error {
	n := make([]float64, 0, len(in.Process)+len(in.Transmission)+len(in.Storage))
	i := make([]float64, 0, cap(n))
	for _, r := range in.Process {
		n = append(n, r.Depreciation)
		i = append(i, r.WACC)
	}
	for _, r := range in.Transmission {
		n = append(n, r.Depreciation)
		i = append(i, r.WACC)
	}
	for _, r := range in.Storage {
		n = append(n, r.Depreciation)
		i = append(i, r.WACC)
	}
	af, err := AnnuityFactors(n, i)
	if err != nil {
		return err
	}
	k := 0
	for _, r := range in.Process {
		r.AnnuityFactor = af[k]
		k++
	}
	for _, r := range in.Transmission {
		r.AnnuityFactor = af[k]
		k++
	}
	for _, r := range in.Storage {
		r.AnnuityFactor = af[k]
		k++
	}
	return nil
}

// reqAttr returns v, or a MissingAttributeError if v is NaN, which is
// how unset attributes are represented after load.
func reqAttr(v float64, entity, key, attr string) (float64, error) {
	if math.IsNaN(v) {
		return 0, &MissingAttributeError{entity, key, attr}
	}
	return v, nil
}

// A MissingAttributeError indicates that a required attribute is not
// set for an index tuple that needs it. It aborts the model build.
type MissingAttributeError struct {
	Entity    string
	Key       string
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("esom: %s %s: missing attribute %q", e.Entity, e.Key, e.Attribute)
}

// A DuplicateKeyError indicates that an input table contains two rows
// with the same composite key.
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("esom: %s: duplicate key %s", e.Table, e.Key)
}

// A MalformedInputError indicates an input table row or horizon that
// violates a structural invariant.
type MalformedInputError struct {
	Table  string
	Key    string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("esom: %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("esom: %s %s: %s", e.Table, e.Key, e.Reason)
}
