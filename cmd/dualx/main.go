package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/config"
	"github.com/san-kum/dualx/internal/dual"
	"github.com/san-kum/dualx/internal/kernel"
	"github.com/san-kum/dualx/internal/logging"
	"github.com/san-kum/dualx/internal/storage"
	"github.com/san-kum/dualx/internal/sweep"
	"github.com/san-kum/dualx/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	steps      string
	points     []float64
	seed       float64
	strict     bool

	verify    bool
	verifyH   float64
	verifyTol float64
	sequence  bool

	from    float64
	to      float64
	samples int
	mode    string

	outFile string
	step    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dualx",
		Short:        "forward-mode automatic differentiation with dual numbers",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dualx", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (text, json)")

	evalCmd := &cobra.Command{
		Use:   "eval [group/preset]",
		Short: "evaluate a chain and its derivative at points",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEval,
	}
	addChainFlags(evalCmd)
	evalCmd.Flags().BoolVar(&verify, "verify", false, "cross-check derivatives with a central difference")
	evalCmd.Flags().Float64Var(&verifyH, "h", 1e-6, "finite difference step for --verify")
	evalCmd.Flags().Float64Var(&verifyTol, "tol", 1e-5, "tolerance for --verify")
	evalCmd.Flags().BoolVar(&sequence, "sequence", false, "evaluate all points as one sequence-valued number")

	sweepCmd := &cobra.Command{
		Use:   "sweep [group/preset]",
		Short: "evaluate a chain over a grid and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addChainFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&from, "from", config.DefaultFrom, "grid start")
	sweepCmd.Flags().Float64Var(&to, "to", config.DefaultTo, "grid end")
	sweepCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "grid size")
	sweepCmd.Flags().StringVar(&mode, "mode", config.DefaultMode, "evaluation mode (array, points)")

	exploreCmd := &cobra.Command{
		Use:   "explore [group/preset]",
		Short: "walk x interactively and watch f and f'",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExplore,
	}
	addChainFlags(exploreCmd)
	exploreCmd.Flags().Float64Var(&step, "step", 0.1, "initial x increment")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns()
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot f and f' of a stored sweep (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotRun(args)
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored sweep as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportRun(args, func(s *storage.Store, id string, w *os.File) error { return s.ExportCSV(id, w) })
		},
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored sweep as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportRun(args, func(s *storage.Store, id string, w *os.File) error { return s.ExportJSON(id, w) })
		},
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list preset chains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPresets(args)
		},
	}

	opsCmd := &cobra.Command{
		Use:   "ops",
		Short: "list the ops a chain step can use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listOps()
		},
	}

	rootCmd.AddCommand(evalCmd, sweepCmd, exploreCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, opsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	cmd.Flags().StringVarP(&steps, "steps", "s", "", "chain steps, e.g. sin,pow:3,add:2:1,mul:x")
	cmd.Flags().Float64SliceVar(&points, "at", nil, "input points")
	cmd.Flags().Float64Var(&seed, "seed", config.DefaultSeed, "dual part of each input")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat advisories as errors")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Points) == 0 {
		return fmt.Errorf("no points to evaluate: pass --at or use a preset")
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	c, err := cfg.Chain()
	if err != nil {
		return err
	}

	ctx := context.Background()
	log = log.WithChain(c.Name())
	ev := chain.NewEvaluator(c, chain.WithSink(log.AdvisorySink(ctx)), chain.WithStrict(cfg.Strict))

	var rows []viz.EvalRow
	if sequence {
		rows, err = evalSequence(ctx, log, ev, cfg)
		if err != nil {
			return err
		}
	} else {
		for _, x := range cfg.Points {
			y, err := ev.Eval(dual.FromScalar(x, cfg.Seed))
			log.LogEval(ctx, x, y, err)
			row := viz.EvalRow{X: x, Err: err}
			if err == nil {
				row.Value, _ = y.Real().Float()
				row.Slope, _ = y.Dual().Float()
				row.Advisories = y.Advisories()
			}
			rows = append(rows, row)
		}
	}
	fmt.Print(viz.RenderEval(c.String(), rows))

	if verify {
		return verifyPoints(ev, cfg.Points)
	}
	return nil
}

// evalSequence evaluates every point in one call. A domain error at any
// element fails the whole call.
func evalSequence(ctx context.Context, log *logging.Logger, ev *chain.Evaluator, cfg *config.Config) ([]viz.EvalRow, error) {
	seeds := make([]float64, len(cfg.Points))
	kernel.Fill(seeds, cfg.Seed)
	x, err := dual.FromSlices(cfg.Points, seeds)
	if err != nil {
		return nil, err
	}
	y, err := ev.Eval(x)
	if err != nil {
		return nil, err
	}
	log.Debug("sequence evaluated", "result", y.String())

	rows := make([]viz.EvalRow, len(cfg.Points))
	for i, p := range cfg.Points {
		rows[i] = viz.EvalRow{X: p, Value: y.Real().At(i), Slope: y.Dual().At(i)}
	}
	for _, a := range y.Advisories() {
		for _, i := range a.Elements() {
			if i < len(rows) {
				rows[i].Advisories = append(rows[i].Advisories, a)
			}
		}
	}
	return rows, nil
}

func verifyPoints(ev *chain.Evaluator, xs []float64) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nX\tDUAL\tCENTRAL DIFF\tOK")
	failed := 0
	for _, x := range xs {
		chk, err := ev.Verify(x, verifyH, verifyTol)
		if err != nil {
			fmt.Fprintf(w, "%g\t-\t-\t%v\n", x, err)
			continue
		}
		if !chk.OK {
			failed++
		}
		fmt.Fprintf(w, "%g\t%.12g\t%.12g\t%v\n", chk.X, chk.Derivative, chk.Numeric, chk.OK)
	}
	w.Flush()
	if failed > 0 {
		return fmt.Errorf("%d of %d points disagree with the central difference", failed, len(xs))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	c, err := cfg.Chain()
	if err != nil {
		return err
	}

	ctx := context.Background()
	log = log.WithChain(c.Name())
	ev := chain.NewEvaluator(c, chain.WithSink(log.AdvisorySink(ctx)), chain.WithStrict(cfg.Strict))

	res, err := sweep.Run(ctx, ev, sweep.Config{
		From:    cfg.Sweep.From,
		To:      cfg.Sweep.To,
		Samples: cfg.Sweep.Samples,
		Seed:    cfg.Seed,
		Mode:    cfg.Sweep.Mode,
	})
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(res)
	if err != nil {
		return err
	}
	log.WithRun(runID).LogSweep(ctx, res.Config.Mode, len(res.Points), res.Failed, len(res.Advisories))

	fmt.Print(viz.RenderSweep(res, 60))
	fmt.Printf("saved: %s\n", runID)
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	c, err := cfg.Chain()
	if err != nil {
		return err
	}
	x0 := 0.0
	if len(cfg.Points) > 0 {
		x0 = cfg.Points[0]
	}
	return viz.RunExplorer(c, x0, step)
}

func listRuns() error {
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
	fmt.Fprintln(w, "ID\tEXPR\tMODE\tRANGE\tSAMPLES\tFAILED\tADVISORIES\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%d\t%d\t%d\t%s\n",
			r.ID, r.Expr, r.Mode, r.From, r.To, r.Samples, r.Failed, len(r.Advisories),
			r.Timestamp.Format(time.DateTime))
	}
	return w.Flush()
}

func plotRun(args []string) error {
	st := storage.New(dataDir)
	meta, err := loadRun(st, args)
	if err != nil {
		return err
	}
	pts, err := st.LoadValues(meta.ID)
	if err != nil {
		return err
	}

	reals := make([]float64, len(pts))
	duals := make([]float64, len(pts))
	for i, p := range pts {
		reals[i], duals[i] = p.Real, p.Dual
	}
	if !anyFinite(reals) {
		return fmt.Errorf("run %s has no finite values to plot", meta.ID)
	}

	fmt.Println(asciigraph.Plot(reals, asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("f(x) = %s on [%g, %g]", meta.Expr, meta.From, meta.To))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(duals, asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("f'(x)")))
	return nil
}

func exportRun(args []string, export func(*storage.Store, string, *os.File) error) error {
	st := storage.New(dataDir)
	meta, err := loadRun(st, args)
	if err != nil {
		return err
	}

	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := export(st, meta.ID, w); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", meta.ID, outFile)
	}
	return nil
}

// loadRun returns the named run, or the latest one when args is empty.
func loadRun(st *storage.Store, args []string) (*storage.RunMetadata, error) {
	if len(args) == 0 {
		return st.Latest()
	}
	return st.Load(args[0])
}

func listPresets(args []string) error {
	groups := config.Groups()
	if len(args) > 0 {
		if config.ListPresets(args[0]) == nil {
			return fmt.Errorf("unknown preset group %q (have %s)", args[0], strings.Join(groups, ", "))
		}
		groups = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\tPOINTS\tRANGE")
	for _, g := range groups {
		for _, name := range config.ListPresets(g) {
			p := config.GetPreset(g, name)
			fmt.Fprintf(w, "%s/%s\t%s\t%v\t[%.4g, %.4g]\n",
				g, name, chain.Format(p.Steps), p.Points, p.Sweep.From, p.Sweep.To)
		}
	}
	return w.Flush()
}

func listOps() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OP\tARITY\tEXPANDS\tDESCRIPTION")
	for _, name := range chain.Names() {
		op, err := chain.Lookup(name)
		if err != nil {
			return err
		}
		expands := "-"
		if !op.Primitive() {
			expands = chain.Format(op.Expands)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Name, op.Arity, expands, op.Doc)
	}
	return w.Flush()
}

func anyFinite(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
