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

package esomutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/enersys/esom"
)

// writeReportFile writes the result report for a solved model to path.
func writeReportFile(path string, m *esom.Model, sol *esom.Solution, outputVars map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("esom: creating report file: %v", err)
	}
	defer f.Close()
	return writeReport(f, m, sol, outputVars)
}

// writeReport summarizes a solution: status, objective, annualized
// costs per category, solved capacities, emissions and any
// user-defined output expressions.
func writeReport(w io.Writer, m *esom.Model, sol *esom.Solution, outputVars map[string]string) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "esom v%s result report (model built %s)\n\n", esom.Version, m.Created)
	fmt.Fprintf(b, "Status:    %s\n", sol.Status)
	fmt.Fprintf(b, "Objective: %.6g EUR/a\n\n", sol.Objective)

	b.WriteString("Costs (EUR/a):\n")
	for _, ct := range m.Sets.CostTypes {
		fmt.Fprintf(b, "  %-6s %14.6g\n", ct, sol.Values[m.Costs[ct]])
	}

	b.WriteString("\nProcess capacities (MW, total/new):\n")
	cpro := m.ProcessCapacities(sol)
	for _, k := range m.Sets.ProTuples {
		c := cpro[k]
		fmt.Fprintf(b, "  %-40s %12.6g %12.6g\n", k.String(), c.Total, c.New)
	}

	if len(m.Sets.TraTuples) > 0 {
		b.WriteString("\nTransmission capacities (MW, total/new):\n")
		ctra := m.TransmissionCapacities(sol)
		for _, k := range m.Sets.TraTuples {
			c := ctra[k]
			fmt.Fprintf(b, "  %-40s %12.6g %12.6g\n", k.String(), c.Total, c.New)
		}
	}

	if len(m.Sets.StoTuples) > 0 {
		b.WriteString("\nStorage capacities (power MW, content MWh; total/new):\n")
		csto := m.StorageCapacities(sol)
		for _, k := range m.Sets.StoTuples {
			c := csto[k]
			fmt.Fprintf(b, "  %-40s %12.6g %12.6g %12.6g %12.6g\n",
				k.String(), c.Power.Total, c.Power.New, c.Content.Total, c.Content.New)
		}
	}

	b.WriteString("\nCO2 emissions (t/a):\n")
	co2 := m.CO2ByProcess(sol)
	for _, k := range m.Sets.ProTuples {
		fmt.Fprintf(b, "  %-40s %12.6g\n", k.String(), co2[k])
	}

	if len(outputVars) > 0 {
		outs, err := m.EvalOutputs(sol, outputVars)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(outs))
		for name := range outs {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nOutputs:\n")
		for _, name := range names {
			fmt.Fprintf(b, "  %-20s %14.6g\n", name, outs[name])
		}
	}

	return b.Flush()
}
