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
	"encoding/gob"
	"fmt"
	"io"
)

// Save writes the model, including its formulated problem, to w as a
// gob stream (format description at https://golang.org/pkg/encoding/gob/).
// A saved model can be restored with Load and handed to a solver
// without reformulating.
func (m *Model) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("esom: saving model: %v", err)
	}
	return nil
}

// Load restores a model previously written by Save.
func Load(r io.Reader) (*Model, error) {
	m := new(Model)
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("esom: loading model: %v", err)
	}
	// gob transports only exported fields, so rebuild the derived
	// unexported state of the sparse rows and the frozen marker.
	m.LP.fix()
	m.prev = make(map[int]int, len(m.TM))
	for i, t := range m.TM {
		if i == 0 {
			m.prev[t] = m.T[0]
		} else {
			m.prev[t] = m.TM[i-1]
		}
	}
	return m, nil
}
