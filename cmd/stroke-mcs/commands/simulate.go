package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stroke-mcs/internal/report"
	"stroke-mcs/internal/simulation"
)

var (
	runs         int
	seed         uint64
	noTimeSpread bool
	noLVOSpread  bool
	openReport   bool
	saveReport   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario.json]",
	Short: "Run a Monte Carlo simulation of the routing decision",
	Long: `Samples door-to-treatment delays between their quartiles and the probability of a large
vessel occlusion, runs the full model on every draw, and reports how often each strategy was
cost-effective. With --open the result is also saved as an HTML report and opened in a browser.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// 1. Build
		sc, err := loadScenario(args)
		if err != nil {
			return err
		}
		engine, err := newEngine(sc.Profile)
		if err != nil {
			return err
		}
		if s := firstNonZero(seed, cfg.Model.Seed); s != 0 {
			engine.SetSeed(s)
		}

		n := runs
		if n == 0 {
			n = cfg.Model.Simulations
		}
		opts := simulation.Options{
			TimeUncertainty: cfg.Model.TimeUncertainty && !noTimeSpread,
			LVOUncertainty:  cfg.Model.LVOUncertainty && !noLVOSpread,
		}

		// 2. Run
		single, err := engine.RunOnce(simulation.Options{})
		if err != nil {
			return err
		}
		multi, err := engine.RunMonteCarlo(ctx, n, opts, progressLogger(n))
		if err != nil {
			return err
		}

		// 3. Report
		out := cmd.OutOrStdout()
		term := report.NewTerminal(out, sc.Profile.Centers)
		fmt.Fprintln(out, term.Profile(sc.Profile))
		fmt.Fprintln(out, term.Single(single))
		fmt.Fprintln(out, term.Multi(multi))

		if !openReport && !saveReport {
			return nil
		}
		path, err := report.SaveHTML(cfg.ReportsDir, report.Page{
			Generated: time.Now(),
			Profile:   sc.Profile,
			Single:    &single,
			Multi:     &multi,
		})
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Saved HTML report")
		if openReport {
			if err := browser.OpenFile(path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to open report in browser")
			}
		}
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.IntVarP(&runs, "runs", "n", 0, "number of Monte Carlo runs (default from STROKE_SIMULATIONS)")
	f.Uint64Var(&seed, "seed", 0, "engine seed for a reproducible batch (default from STROKE_SEED)")
	f.BoolVar(&noTimeSpread, "no-time-uncertainty", false, "use median door-to-treatment times on every run")
	f.BoolVar(&noLVOSpread, "no-lvo-uncertainty", false, "use the point estimate of P(LVO) on every run")
	f.BoolVar(&saveReport, "save", false, "save an HTML report under the reports directory")
	f.BoolVar(&openReport, "open", false, "save an HTML report and open it in the default browser")
}

// progressLogger logs every tenth of the batch.
func progressLogger(total int) func(simulation.Progress) {
	step := max(1, total/10)
	return func(p simulation.Progress) {
		if p.Completed%step == 0 || p.Completed == total {
			log.Info().
				Int("completed", p.Completed).
				Int("total", total).
				Int("trivial", p.Trivial).
				Int("failed", p.Failed).
				Msg("Simulation progress")
		}
	}
}

func firstNonZero(values ...uint64) uint64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
