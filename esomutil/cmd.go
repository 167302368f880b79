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

// Package esomutil wires the model formulation, the external solver
// and the result reporting into a command line interface.
package esomutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/enersys/esom"
	"github.com/enersys/esom/solve"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to esom.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path or URL of the Excel input workbook with the
              sheets Commodity, Process, Transmission, Storage, Demand and SupIm.
              It can contain environment variables.`,
			shorthand:  "i",
			defaultVal: "input.xlsx",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), lpCmd.Flags()},
		},
		{
			name: "Timesteps",
			usage: `
              Timesteps is the number of modelled timesteps. The horizon is the
              timesteps 0 through Timesteps, where 0 only initializes storage.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), lpCmd.Flags()},
		},
		{
			name: "DT",
			usage: `
              DT is the duration of one timestep in hours.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), lpCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the result report should be written.
              It can contain environment variables.`,
			shorthand:  "o",
			defaultVal: "result.txt",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), summaryCmd.Flags()},
		},
		{
			name: "ModelFile",
			usage: `
              ModelFile is the path where the formulated model should be saved
              after a run, and read from by the summary command. If empty, the
              run command does not save the model.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), summaryCmd.Flags()},
		},
		{
			name: "SolutionFile",
			usage: `
              SolutionFile is the path of a solver solution file to summarize.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{summaryCmd.Flags()},
		},
		{
			name: "LPFile",
			usage: `
              LPFile is the path where the problem should be written in
              CPLEX LP format.`,
			defaultVal: "model.lp",
			flagsets:   []*pflag.FlagSet{lpCmd.Flags()},
		},
		{
			name: "Solver",
			usage: `
              Solver is the LP solver binary to run.`,
			defaultVal: "glpsol",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SolverArgs",
			usage: `
              SolverArgs are the arguments passed to the solver binary. The
              placeholders {lp} and {sol} are replaced with the problem and
              solution file paths.`,
			defaultVal: []string{"--lp", "{lp}", "--write", "{sol}"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "KeepFiles",
			usage: `
              KeepFiles specifies whether the solver exchange files should be
              kept after the run for inspection.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies expressions over the scalar results to
              include in the report. Expressions may reference objective,
              costInv, costFix, costVar, costFuel, costTotal, co2Total and
              weight.`,
			defaultVal: map[string]string{
				"TotalCost": "costTotal",
				"TotalCO2":  "co2Total",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags(), summaryCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ESOM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(lpCmd)
	Root.AddCommand(summaryCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("esom: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "esom",
	Short: "A linear optimization model for distributed energy systems.",
	Long: `esom minimizes the total cost of providing energy in form of desired
commodities to satisfy a given demand timeseries. Use the subcommands
specified below to access the model functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ESOM_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of esom.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("esom v%s\n", esom.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd formulates the model, solves it and writes the result report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Formulate and solve the model.",
	Long: `run reads the input workbook, formulates the optimization problem,
solves it with the configured external solver and writes a result report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildFromConfig(Cfg)
		if err != nil {
			return err
		}
		if path := os.ExpandEnv(Cfg.GetString("ModelFile")); path != "" {
			if err := saveModel(m, path); err != nil {
				return err
			}
		}
		s := &solve.Solver{
			Command:   Cfg.GetString("Solver"),
			Args:      Cfg.GetStringSlice("SolverArgs"),
			KeepFiles: Cfg.GetBool("KeepFiles"),
		}
		sol, err := s.Solve(context.Background(), m)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		return writeReportFile(outputFile, m, sol, outputVars)
	},
	DisableAutoGenTag: true,
}

// lpCmd formulates the model and writes it in LP format without solving.
var lpCmd = &cobra.Command{
	Use:   "lp",
	Short: "Write the problem in CPLEX LP format.",
	Long: `lp reads the input workbook, formulates the optimization problem and
writes it in CPLEX LP format for use with an external solver.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildFromConfig(Cfg)
		if err != nil {
			return err
		}
		path, err := checkOutputFile(Cfg.GetString("LPFile"))
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("esom: creating LP file: %v", err)
		}
		defer f.Close()
		logrus.WithFields(logrus.Fields{
			"file":        path,
			"variables":   m.LP.NumVariables(),
			"constraints": m.LP.NumConstraints(),
		}).Info("writing problem")
		return solve.WriteLP(f, m)
	},
	DisableAutoGenTag: true,
}

// summaryCmd reports on a previously saved model and solution.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a saved model and solution.",
	Long: `summary loads a model saved by run and a solver solution file and
writes the result report, without solving anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(os.ExpandEnv(Cfg.GetString("ModelFile")))
		if err != nil {
			return err
		}
		solPath := os.ExpandEnv(Cfg.GetString("SolutionFile"))
		if solPath == "" {
			return fmt.Errorf("esom: you need to specify a SolutionFile to summarize")
		}
		f, err := os.Open(solPath)
		if err != nil {
			return fmt.Errorf("esom: opening solution file: %v", err)
		}
		defer f.Close()
		sol, err := solve.ReadSolution(f, m)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		return writeReportFile(outputFile, m, sol, outputVars)
	},
	DisableAutoGenTag: true,
}

// buildFromConfig loads the input workbook, downloading it first if it
// is a URL, and formulates the model.
func buildFromConfig(cfg *viper.Viper) (*esom.Model, error) {
	input, err := checkInputFile(maybeDownload(os.ExpandEnv(cfg.GetString("InputFile"))))
	if err != nil {
		return nil, err
	}
	n, err := checkTimesteps(cfg.GetInt("Timesteps"))
	if err != nil {
		return nil, err
	}
	logrus.WithField("file", input).Info("reading input")
	in, err := esom.ReadXLSX(input)
	if err != nil {
		return nil, err
	}
	return esom.BuildModel(in, horizon(n), cfg.GetFloat64("DT"))
}

func saveModel(m *esom.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("esom: creating model file: %v", err)
	}
	defer f.Close()
	return m.Save(f)
}

func loadModel(path string) (*esom.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("esom: you need to specify a ModelFile to summarize")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("esom: opening model file: %v", err)
	}
	defer f.Close()
	return esom.Load(f)
}
