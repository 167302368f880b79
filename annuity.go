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

	"gonum.org/v1/gonum/floats"
)

// AnnuityFactor evaluates the capital-recovery factor
//
//	(1+i)ⁿ·i / ((1+i)ⁿ−1)
//
// for a depreciation period of n years and an interest rate i
// (i = 0.06 means 6%). It converts an investment into an equivalent
// annual cost.
func AnnuityFactor(n, i float64) (float64, error) {
	if n <= 0 || i <= -1 {
		return 0, &NumericDomainError{N: n, I: i}
	}
	q := math.Pow(1+i, n)
	if q == 1 { // zero effective rate; the denominator vanishes
		return 0, &NumericDomainError{N: n, I: i}
	}
	return q * i / (q - 1), nil
}

// AnnuityFactors evaluates AnnuityFactor elementwise over parallel
// slices of depreciation periods and interest rates.
func AnnuityFactors(n, i []float64) ([]float64, error) {
	if !floats.EqualLengths(n, i) {
		return nil, fmt.Errorf("esom: annuity factor: slice lengths %d and %d differ", len(n), len(i))
	}
	af := make([]float64, len(n))
	for k := range n {
		a, err := AnnuityFactor(n[k], i[k])
		if err != nil {
			return nil, err
		}
		af[k] = a
	}
	return af, nil
}

// A NumericDomainError indicates annuity inputs outside the domain of
// the capital-recovery formula.
type NumericDomainError struct {
	N float64 // depreciation period
	I float64 // interest rate
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("esom: annuity factor undefined for depreciation %g and rate %g", e.N, e.I)
}
