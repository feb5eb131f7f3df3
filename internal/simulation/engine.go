package simulation

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"stroke-mcs/internal/cohort"
	"stroke-mcs/internal/outcome"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
	"stroke-mcs/internal/selection"
)

var (
	ErrNoRuns            = errors.New("no simulation runs to aggregate")
	ErrEmptyPercentages  = errors.New("percentage mapping is empty")
	ErrNonPositiveWorker = errors.New("worker count must be positive")
)

// Config is fixed for the lifetime of an Engine.
type Config struct {
	ThresholdICER float64 // currency per QALY
	CostYear      int
	Workers       int
}

func DefaultConfig() Config {
	return Config{
		ThresholdICER: 100_000,
		CostYear:      2016,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Options selects which inputs are sampled on each pass.
type Options struct {
	TimeUncertainty bool `json:"time_uncertainty"`
	LVOUncertainty  bool `json:"lvo_uncertainty"`
}

// Engine runs the outcome, cohort and selection pipeline for one patient.
type Engine struct {
	profile *patient.Profile
	cfg     Config
	costs   cohort.CostTable
	rng     *random.Locked
	metrics *Metrics
}

// NewEngine snapshots the profile's centers and inflates the cost table once for every run.
func NewEngine(p *patient.Profile, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", patient.ErrInvalidProfile)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveWorker, cfg.Workers)
	}

	snapshot := *p
	if p.Centers != nil {
		snapshot.Centers = p.Centers.Clone()
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	costs, err := cohort.Inflate(cohort.DefaultCosts(), cfg.CostYear)
	if err != nil {
		return nil, err
	}

	return &Engine{
		profile: &snapshot,
		cfg:     cfg,
		costs:   costs,
		rng:     random.NewLocked(random.NewTimeSeeded()),
	}, nil
}

// SetSeed makes subsequent runs reproducible.
func (e *Engine) SetSeed(seed uint64) {
	e.rng = random.NewLocked(random.New(seed))
}

// SetMetrics attaches collectors; nil disables them.
func (e *Engine) SetMetrics(m *Metrics) {
	e.metrics = m
}

func (e *Engine) Profile() *patient.Profile {
	return e.profile
}

func (e *Engine) Config() Config {
	return e.cfg
}

// RunOnce executes a single pipeline pass.
func (e *Engine) RunOnce(opts Options) (SingleRunResult, error) {
	start := time.Now()
	res, err := e.run(random.New(e.rng.Uint64()), opts)
	e.metrics.observe(res, err, time.Since(start))
	return res, err
}

func (e *Engine) run(rng random.Source, opts Options) (SingleRunResult, error) {
	// 1. Sample delays and P(LVO)
	model, err := outcome.NewModel(e.profile, outcome.Uncertainty{Time: opts.TimeUncertainty, LVO: opts.LVOUncertainty}, rng)
	if err != nil {
		return SingleRunResult{}, err
	}

	// 2. Short-circuit when no route could reach a treatment window
	necessary, err := model.IsNecessary()
	if err != nil {
		return SingleRunResult{}, err
	}
	if !necessary {
		cutoff := model.CutoffStrategy()
		log.Debug().Str("strategy", cutoff.String()).Msg("Model not necessary, using severity cutoff")
		return SingleRunResult{Optimal: cutoff, Trivial: true}, nil
	}

	// 3. Evaluate every feasible strategy through the cohort model
	strategies := e.profile.Strategies()
	cands := make([]selection.Candidate, 0, len(strategies))
	res := SingleRunResult{
		Costs: make(map[patient.Strategy]float64, len(strategies)),
		QALYs: make(map[patient.Strategy]float64, len(strategies)),
	}
	for _, s := range strategies {
		out, ok, err := model.Evaluate(s)
		if err != nil {
			return SingleRunResult{}, fmt.Errorf("evaluating %s: %w", s, err)
		}
		if !ok {
			continue
		}
		pop, err := cohort.Simulate(cohort.Input{
			Age:     e.profile.Age,
			Sex:     e.profile.Sex,
			NIHSS:   model.NIHSS(),
			Outcome: out,
		}, e.costs)
		if err != nil {
			return SingleRunResult{}, fmt.Errorf("simulating cohort for %s: %w", s, err)
		}
		res.Costs[s] = pop.Costs
		res.QALYs[s] = pop.QALYs
		cands = append(cands, selection.Candidate{Strategy: s, Cost: pop.Costs, QALY: pop.QALYs})
	}

	// 4. Select
	if best, ok := selection.MaxBenefit(cands); ok {
		res.MaxBenefit = &best
	}
	optimal, _, err := selection.Optimal(cands, e.cfg.ThresholdICER)
	if err != nil {
		return SingleRunResult{}, err
	}
	res.Optimal = optimal
	return res, nil
}
