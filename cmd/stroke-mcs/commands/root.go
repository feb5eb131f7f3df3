package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stroke-mcs/internal/config"
	"stroke-mcs/internal/logging"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	thresholdICER float64
	costYear      int
)

var rootCmd = &cobra.Command{
	Use:   "stroke-mcs",
	Short: "Stroke-MCS decides where to route a suspected stroke patient",
	Long: `A cost-effectiveness model for prehospital stroke triage. For one patient and a set of
primary and comprehensive stroke centers it compares going to the nearest primary center,
going straight to a comprehensive center, and drip and ship, then picks the strategy that is
cost-effective at a willingness-to-pay threshold. Runs deterministically or as a Monte Carlo
simulation, and serves the same tools over MCP when started without a subcommand.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Init(verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		}

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("Stroke-MCS starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().Float64Var(&thresholdICER, "threshold", 0, "willingness to pay per QALY in USD (default from STROKE_ICER_THRESHOLD)")
	rootCmd.PersistentFlags().IntVar(&costYear, "cost-year", 0, "year to express costs in (default from STROKE_COST_YEAR)")

	rootCmd.AddCommand(serveCmd, runCmd, simulateCmd, generateCmd, regressCmd)
}

// newEngine applies the command-line overrides on top of the loaded model defaults.
func newEngine(p *patient.Profile) (*simulation.Engine, error) {
	ec := simulation.Config{
		ThresholdICER: cfg.Model.ThresholdICER,
		CostYear:      cfg.Model.CostYear,
		Workers:       cfg.Model.Workers,
	}
	if thresholdICER < 0 {
		return nil, fmt.Errorf("--threshold must be positive, got %v", thresholdICER)
	}
	if thresholdICER > 0 {
		ec.ThresholdICER = thresholdICER
	}
	if costYear != 0 {
		ec.CostYear = costYear
	}
	return simulation.NewEngine(p, ec)
}
