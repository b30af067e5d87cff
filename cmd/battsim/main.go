package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/export"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/sim"
	"github.com/san-kum/battsim/internal/solution"
	"github.com/san-kum/battsim/internal/solver"
	"github.com/san-kum/battsim/internal/storage"
	"github.com/san-kum/battsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile  string
	preset      string
	presetGroup string
	tEnd        float64
	points      int
	solverName  string
	tolerance   float64
	sensitivity string
	options     []string
	paramArgs   []string
	inputArgs   []string
	sweepArg    string
	workers     int

	variables []string
	output    string
	format    string
	theme     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "battsim",
		Short:        "lithium-ion battery simulation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log-level") {
				return logging.SetLevel(logLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".battsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve a model and store the run",
		Args:  cobra.NoArgs,
		RunE:  solveRun,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	solveCmd.Flags().StringVar(&presetGroup, "group", config.DefaultModel, "preset group")
	solveCmd.Flags().Float64Var(&tEnd, "t-end", config.DefaultTEnd, "final time [s]")
	solveCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of output times")
	solveCmd.Flags().StringVar(&solverName, "solver", config.DefaultSolver, "solver ("+strings.Join(solver.Names(), ", ")+")")
	solveCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "solver tolerance")
	solveCmd.Flags().StringVar(&sensitivity, "sensitivity", "", "sensitivity mode (explicit forward)")
	solveCmd.Flags().StringArrayVar(&options, "option", nil, "model option key=value")
	solveCmd.Flags().StringArrayVar(&paramArgs, "param", nil, "parameter override name=value")
	solveCmd.Flags().StringArrayVar(&inputArgs, "input", nil, "input parameter name=value")
	solveCmd.Flags().StringVar(&sweepArg, "sweep", "", "solve once per value: name=v1,v2,...")
	solveCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "sweep workers")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored variables in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringArrayVar(&variables, "var", nil, "variable to plot (repeatable)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export stored variables as png, html or json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringArrayVar(&variables, "var", nil, "variable to export (repeatable)")
	exportCmd.Flags().StringVar(&format, "format", "html", "png, html or json")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.<format>)")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}
	viewCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := config.PresetGroups()
			if len(args) > 0 {
				groups = args
			}
			for _, g := range groups {
				presets := config.ListPresets(g)
				if len(presets) == 0 {
					fmt.Printf("no presets in group: %s\n", g)
					continue
				}
				fmt.Printf("presets for %s:\n", g)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, listCmd, showCmd, plotCmd, exportCmd, viewCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// buildConfig layers --config or --preset, then explicit flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	case preset != "":
		p := config.GetPreset(presetGroup, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q in group %q", preset, presetGroup)
		}
		cfg = p
	}

	flags := cmd.Flags()
	if flags.Changed("t-end") {
		cfg.TEnd = tEnd
	}
	if flags.Changed("points") {
		cfg.Points = points
	}
	if flags.Changed("solver") {
		cfg.Solver.Name = solverName
	}
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("sensitivity") {
		cfg.Solver.Sensitivity = sensitivity
	}

	for _, kv := range options {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("option %q: expected key=value", kv)
		}
		if cfg.Options == nil {
			cfg.Options = make(map[string]string)
		}
		cfg.Options[k] = v
	}
	if err := parseFloats(paramArgs, &cfg.Parameters); err != nil {
		return nil, err
	}
	if err := parseFloats(inputArgs, &cfg.Inputs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFloats(args []string, dst *map[string]float64) error {
	for _, kv := range args {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%q: expected name=value", kv)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%q: %w", kv, err)
		}
		if *dst == nil {
			*dst = make(map[string]float64)
		}
		(*dst)[k] = f
	}
	return nil
}

// parseSweep splits "name=v1,v2" into a name and its values.
func parseSweep(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("sweep %q: expected name=v1,v2,...", arg)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("sweep %q: %w", arg, err)
		}
		values = append(values, f)
	}
	return name, values, nil
}

func solveRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") {
		if err := logging.SetLevel(cfg.LogLevel); err != nil {
			return err
		}
	}

	var (
		sweepName   string
		sweepValues []float64
	)
	if sweepArg != "" {
		if sweepName, sweepValues, err = parseSweep(sweepArg); err != nil {
			return err
		}
		delete(cfg.Parameters, sweepName)
		if cfg.Inputs == nil {
			cfg.Inputs = make(map[string]float64)
		}
		cfg.Inputs[sweepName] = sweepValues[0]
	}

	s, err := sim.FromConfig(cfg)
	if err != nil {
		return err
	}
	s.AddObserver(sim.ObserverFunc(func(run sim.Run) {
		if run.Err != nil {
			logging.L().Warn("solve failed", "inputs", run.Inputs, "err", run.Err)
			return
		}
		logging.L().Info("solve finished", "inputs", run.Inputs, "termination", run.Solution.Termination)
	}))

	ctx := cmd.Context()
	tEval := cfg.Times()

	var sols []*solution.Solution
	if sweepName == "" {
		sol, err := s.Run(ctx, tEval, cfg.Inputs)
		if err != nil {
			return err
		}
		sols = append(sols, sol)
	} else {
		sets := make([]expr.Inputs, len(sweepValues))
		for i, v := range sweepValues {
			set := expr.Inputs{}
			for k, x := range cfg.Inputs {
				set[k] = x
			}
			set[sweepName] = v
			sets[i] = set
		}
		if sols, err = sim.NewSweep(s, workers).Run(ctx, tEval, sets); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	info := storage.RunInfo{Model: cfg.Model, Tolerance: cfg.Solver.Tolerance, Options: cfg.Options}
	for _, sol := range sols {
		if sol.IsDeferred() {
			if sol, err = sol.Realise(sol.Inputs); err != nil {
				return err
			}
		}
		runID, err := st.Save(info, sol, sol.Model().VariableNames())
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		printSummary(runID, sol)
	}
	return nil
}

func printSummary(runID string, sol *solution.Solution) {
	fmt.Println(viz.HeaderStyle.Render("run " + runID))
	fmt.Printf("solver: %s   termination: %s\n", sol.Solver, viz.Termination(sol.Termination))
	if len(sol.Inputs) > 0 {
		names := make([]string, 0, len(sol.Inputs))
		for k := range sol.Inputs {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Println(viz.Metric(k, sol.Inputs[k]))
		}
	}
	fmt.Printf("%s   %s\n", viz.Metric("t_end [s]", sol.T[len(sol.T)-1]), viz.Metric("solve time [s]", sol.SolveTime.Seconds()))
	if pv, err := sol.Variable("Terminal voltage [V]"); err == nil && pv.Points() == 1 {
		v := pv.Series()
		fmt.Println(viz.SparklineChart(v, 40), viz.Metric("final voltage [V]", v[len(v)-1]))
	}
	fmt.Println()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSOLVER\tPOINTS\tSOLVE\tTERMINATION")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.3fs\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Solver,
			run.Points,
			run.SolveTime,
			run.Termination,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func loadSeries(runID string) (*storage.RunMetadata, []export.Series, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	columns, times, err := st.LoadVariables(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := export.FromColumns(columns, times, variables)
	if err != nil {
		return nil, nil, err
	}
	return meta, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	if len(variables) == 0 {
		variables = []string{"Terminal voltage [V]"}
	}
	meta, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("termination: %s\n\n", viz.Termination(meta.Termination))

	for _, s := range series {
		fmt.Println(viz.Plot(s.Name, s.Values, 80, 10))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, series, err := loadSeries(runID)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = runID + "." + format
	}
	title := fmt.Sprintf("%s (%s)", meta.Model, meta.Termination)

	switch format {
	case "png":
		err = export.SavePNG(path, title, series)
	case "html":
		err = export.SaveHTML(path, title, series)
	case "json":
		err = export.SaveJSON(path, export.Document{
			Title:       title,
			Solver:      meta.Solver,
			Termination: meta.Termination,
			Inputs:      meta.Inputs,
			Series:      series,
		})
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return err
	}

	abs, _ := filepath.Abs(path)
	fmt.Printf("exported %d series to %s\n", len(series), abs)
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	v := viz.NewViewer(meta.Model+" "+meta.ID, meta.Termination, series)
	return viz.RunViewer(v.WithTheme(theme))
}
