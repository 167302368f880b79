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
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// workbookCache holds previously opened Microsoft Excel files
// to avoid reading the same file multiple times.
var workbookCache *requestcache.Cache

var loadWorkbookCacheOnce sync.Once

// loadWorkbook loads a Microsoft Excel file from disk, utilizing a
// cache to avoid loading the same file more than once.
func loadWorkbook(fileName string) (*xlsx.File, error) {
	loadWorkbookCacheOnce.Do(func() {
		workbookCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			filename := req.(string)
			f, err := xlsx.OpenFile(filename)
			if err != nil {
				return nil, fmt.Errorf("esom: opening xlsx file: %v", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := workbookCache.NewRequest(context.Background(), fileName, fileName)
	fI, err := r.Result()
	if err != nil {
		return nil, err
	}
	return fI.(*xlsx.File), nil
}

// ReadXLSX reads an Excel input workbook with the sheets 'Commodity',
// 'Process', 'Transmission', 'Storage', 'Demand' and 'SupIm'. Each
// relational sheet has its key columns first, followed by attribute
// columns identified by header name. The timeseries sheets have a 't'
// column followed by one 'Site.Commodity' column per series.
//
// Empty attribute cells load as NaN; whether that is an error depends
// on which attributes the model build actually reads for the tuple.
// The cell content 'inf' loads as +Inf. Annuity factors are derived
// from the depreciation and wacc columns after load.
func ReadXLSX(filename string) (*Input, error) {
	f, err := loadWorkbook(filename)
	if err != nil {
		return nil, err
	}
	in := &Input{
		Demand: make(Series),
		SupIm:  make(Series),
	}
	if err := readCommodity(f, in); err != nil {
		return nil, err
	}
	if err := readProcess(f, in); err != nil {
		return nil, err
	}
	if err := readTransmission(f, in); err != nil {
		return nil, err
	}
	if err := readStorage(f, in); err != nil {
		return nil, err
	}
	if err := readSeries(f, "Demand", in.Demand); err != nil {
		return nil, err
	}
	if err := readSeries(f, "SupIm", in.SupIm); err != nil {
		return nil, err
	}
	if err := in.DeriveAnnuityFactors(); err != nil {
		return nil, err
	}
	return in, nil
}

// sheetTable breaks a sheet into a header and data rows of cell
// strings, trimming surrounding whitespace. Rows whose key columns are
// all empty are skipped.
func sheetTable(f *xlsx.File, sheet string, numKeys int) (header []string, rows [][]string, err error) {
	s, ok := f.Sheet[sheet]
	if !ok {
		return nil, nil, &MalformedInputError{sheet, "", "sheet not found in workbook"}
	}
	if len(s.Rows) == 0 {
		return nil, nil, &MalformedInputError{sheet, "", "sheet is empty"}
	}
	for _, c := range s.Rows[0].Cells {
		header = append(header, strings.TrimSpace(c.Value))
	}
	if len(header) < numKeys {
		return nil, nil, &MalformedInputError{sheet, "", "too few columns for the key"}
	}
	for _, r := range s.Rows[1:] {
		row := make([]string, len(header))
		empty := true
		for i := range row {
			if i < len(r.Cells) {
				row[i] = strings.TrimSpace(r.Cells[i].Value)
			}
			if i < numKeys && row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// attrValue parses one attribute cell. Empty cells mean "not set" and
// load as NaN so that only tuples that need the attribute fail.
func attrValue(sheet, key, attr, cell string) (float64, error) {
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, &MalformedInputError{sheet, key,
			fmt.Sprintf("attribute %q: cannot parse %q as a number", attr, cell)}
	}
	return v, nil
}

// fillAttrs assigns the attribute columns of one data row into the
// fields registered for their header names. Unknown columns are
// ignored so workbooks may carry extra annotation columns.
func fillAttrs(sheet, key string, header, row []string, numKeys int, fields map[string]*float64) error {
	for i := numKeys; i < len(header); i++ {
		dst, ok := fields[header[i]]
		if !ok {
			continue
		}
		v, err := attrValue(sheet, key, header[i], row[i])
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func readCommodity(f *xlsx.File, in *Input) error {
	header, rows, err := sheetTable(f, "Commodity", 3)
	if err != nil {
		return err
	}
	for _, row := range rows {
		r := &CommodityRow{Key: CommodityKey{row[0], row[1], row[2]}}
		r.Price, r.Max, r.MaxPerStep = math.NaN(), math.NaN(), math.NaN()
		err := fillAttrs("Commodity", r.Key.String(), header, row, 3, map[string]*float64{
			"price":      &r.Price,
			"max":        &r.Max,
			"maxperstep": &r.MaxPerStep,
		})
		if err != nil {
			return err
		}
		in.Commodity = append(in.Commodity, r)
	}
	return nil
}

func readProcess(f *xlsx.File, in *Input) error {
	header, rows, err := sheetTable(f, "Process", 4)
	if err != nil {
		return err
	}
	for _, row := range rows {
		r := &ProcessRow{Key: ProcessKey{row[0], row[1], row[2], row[3]}}
		nanRow := []*float64{&r.Eff, &r.CO2, &r.CapLo, &r.CapUp, &r.InstCap,
			&r.InvCost, &r.FixCost, &r.VarCost, &r.Depreciation, &r.WACC}
		for _, p := range nanRow {
			*p = math.NaN()
		}
		err := fillAttrs("Process", r.Key.String(), header, row, 4, map[string]*float64{
			"eff":          &r.Eff,
			"co2":          &r.CO2,
			"cap-lo":       &r.CapLo,
			"cap-up":       &r.CapUp,
			"inst-cap":     &r.InstCap,
			"inv-cost":     &r.InvCost,
			"fix-cost":     &r.FixCost,
			"var-cost":     &r.VarCost,
			"depreciation": &r.Depreciation,
			"wacc":         &r.WACC,
		})
		if err != nil {
			return err
		}
		in.Process = append(in.Process, r)
	}
	return nil
}

func readTransmission(f *xlsx.File, in *Input) error {
	header, rows, err := sheetTable(f, "Transmission", 4)
	if err != nil {
		return err
	}
	for _, row := range rows {
		r := &TransmissionRow{Key: TransmissionKey{row[0], row[1], row[2], row[3]}}
		nanRow := []*float64{&r.Eff, &r.CapLo, &r.CapUp, &r.InstCap,
			&r.InvCost, &r.FixCost, &r.VarCost, &r.Depreciation, &r.WACC}
		for _, p := range nanRow {
			*p = math.NaN()
		}
		err := fillAttrs("Transmission", r.Key.String(), header, row, 4, map[string]*float64{
			"eff":          &r.Eff,
			"cap-lo":       &r.CapLo,
			"cap-up":       &r.CapUp,
			"inst-cap":     &r.InstCap,
			"inv-cost":     &r.InvCost,
			"fix-cost":     &r.FixCost,
			"var-cost":     &r.VarCost,
			"depreciation": &r.Depreciation,
			"wacc":         &r.WACC,
		})
		if err != nil {
			return err
		}
		in.Transmission = append(in.Transmission, r)
	}
	return nil
}

func readStorage(f *xlsx.File, in *Input) error {
	header, rows, err := sheetTable(f, "Storage", 3)
	if err != nil {
		return err
	}
	for _, row := range rows {
		r := &StorageRow{Key: StorageKey{row[0], row[1], row[2]}}
		nanRow := []*float64{&r.EffIn, &r.EffOut,
			&r.CapLoP, &r.CapUpP, &r.InstCapP,
			&r.CapLoC, &r.CapUpC, &r.InstCapC, &r.Init,
			&r.InvCostP, &r.FixCostP, &r.VarCostP,
			&r.InvCostC, &r.FixCostC, &r.VarCostC,
			&r.Depreciation, &r.WACC}
		for _, p := range nanRow {
			*p = math.NaN()
		}
		err := fillAttrs("Storage", r.Key.String(), header, row, 3, map[string]*float64{
			"eff-in":       &r.EffIn,
			"eff-out":      &r.EffOut,
			"cap-lo-p":     &r.CapLoP,
			"cap-up-p":     &r.CapUpP,
			"inst-cap-p":   &r.InstCapP,
			"cap-lo-c":     &r.CapLoC,
			"cap-up-c":     &r.CapUpC,
			"inst-cap-c":   &r.InstCapC,
			"init":         &r.Init,
			"inv-cost-p":   &r.InvCostP,
			"fix-cost-p":   &r.FixCostP,
			"var-cost-p":   &r.VarCostP,
			"inv-cost-c":   &r.InvCostC,
			"fix-cost-c":   &r.FixCostC,
			"var-cost-c":   &r.VarCostC,
			"depreciation": &r.Depreciation,
			"wacc":         &r.WACC,
		})
		if err != nil {
			return err
		}
		in.Storage = append(in.Storage, r)
	}
	return nil
}

// readSeries reads a timeseries sheet. Column titles are split at the
// dot, so 'DE.Elec' becomes the series for commodity Elec at site DE.
func readSeries(f *xlsx.File, sheet string, dst Series) error {
	header, rows, err := sheetTable(f, sheet, 1)
	if err != nil {
		return err
	}
	if header[0] != "t" {
		return &MalformedInputError{sheet, "", "first column must be 't'"}
	}
	type col struct{ site, com string }
	cols := make([]col, len(header))
	for i := 1; i < len(header); i++ {
		parts := strings.SplitN(header[i], ".", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return &MalformedInputError{sheet, header[i], "column title must be 'Site.Commodity'"}
		}
		cols[i] = col{parts[0], parts[1]}
	}
	for _, row := range rows {
		// spreadsheet tools store integers as floats ("1" or "1.0")
		tf, err := strconv.ParseFloat(row[0], 64)
		if err != nil || tf != math.Trunc(tf) {
			return &MalformedInputError{sheet, row[0], "cannot parse timestep as an integer"}
		}
		t := int(tf)
		for i := 1; i < len(header); i++ {
			if row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return &MalformedInputError{sheet, header[i],
					fmt.Sprintf("timestep %d: cannot parse %q as a number", t, row[i])}
			}
			dst.Set(t, cols[i].site, cols[i].com, v)
		}
	}
	return nil
}
