package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
)

// Column counts of the two regression line layouts.
const (
	singleRunFields = 16
	multiRunFields  = 11
)

// Strategy labels used in regression lines.
const (
	labelPrimary       = "Primary"
	labelComprehensive = "Comprehensive"
	labelDripAndShip   = "Drip and Ship"
	labelCutoff        = "Based on cutoff"
)

// HorizonLifetime is the only horizon the cohort model supports.
const HorizonLifetime = "lifetime"

var ErrMalformedLine = errors.New("malformed regression line")

// Line scenarios hold one comprehensive center (id 0) and one primary (id 1) that ships to it.
var (
	LineComprehensive = patient.Strategy{Kind: patient.KindComprehensive, Center: 0}
	LinePrimary       = patient.Strategy{Kind: patient.KindPrimary, Center: 1}
	LineDripAndShip   = patient.Strategy{Kind: patient.KindDripAndShip, Center: 1}
)

// LineInputs is the patient and timing part shared by both line layouts.
type LineInputs struct {
	Sex                  patient.Sex
	Age                  int
	RACE                 float64
	OnsetMinutes         float64
	PrimaryMinutes       float64
	ComprehensiveMinutes float64
	TransferMinutes      float64
}

// Profile builds the two-center scenario the line describes.
func (in LineInputs) Profile() (*patient.Profile, error) {
	return patient.NewProfileFromTimes(in.Sex, in.Age, in.RACE, in.OnsetMinutes,
		[]patient.PrimaryRoute{{Travel: in.PrimaryMinutes, Transfer: in.TransferMinutes}},
		[]float64{in.ComprehensiveMinutes})
}

func (in LineInputs) fields() []string {
	return []string{
		strconv.Itoa(int(in.Sex)),
		strconv.Itoa(in.Age),
		formatFloat(in.RACE),
		formatFloat(in.OnsetMinutes),
		formatFloat(in.PrimaryMinutes),
		formatFloat(in.ComprehensiveMinutes),
		formatFloat(in.TransferMinutes),
	}
}

// SingleRunCase is a deterministic regression case and its expected result. When the expected
// optimum is the severity cutoff only Trivial is set.
type SingleRunCase struct {
	Inputs   LineInputs
	Expected simulation.SingleRunResult
}

// Check compares a deterministic run against the expectation.
func (c SingleRunCase) Check(got simulation.SingleRunResult) error {
	if c.Expected.Trivial {
		if !got.Trivial {
			return fmt.Errorf("expected severity cutoff, got %s", got.Optimal)
		}
		return nil
	}
	if !c.Expected.ApproxEqual(got) {
		return fmt.Errorf("expected %s (max benefit %s), got %s (max benefit %s)",
			c.Expected.Optimal, strategyOrNone(c.Expected.MaxBenefit), got.Optimal, strategyOrNone(got.MaxBenefit))
	}
	return nil
}

// MultiRunCase is a Monte Carlo regression case with expected optimal-selection shares.
type MultiRunCase struct {
	Inputs   LineInputs
	Expected simulation.MultiRunResult
}

// ParseSingleRunLine reads
// sex,age,race,onset,primary,comprehensive,transfer,optimal,primaryCost,primaryQALY,
// comprehensiveCost,comprehensiveQALY,dripCost,dripQALY,maxBenefit,horizon.
// A cost of zero marks a strategy that was not evaluated.
func ParseSingleRunLine(line string) (SingleRunCase, error) {
	values, err := splitLine(line, singleRunFields)
	if err != nil {
		return SingleRunCase{}, err
	}
	in, err := parseInputs(values)
	if err != nil {
		return SingleRunCase{}, err
	}
	nums, err := parseFloats(values[8:14])
	if err != nil {
		return SingleRunCase{}, err
	}

	res := simulation.SingleRunResult{
		Costs: make(map[patient.Strategy]float64),
		QALYs: make(map[patient.Strategy]float64),
	}
	for i, s := range []patient.Strategy{LinePrimary, LineComprehensive, LineDripAndShip} {
		if cost := nums[2*i]; cost != 0 {
			res.Costs[s] = cost
			res.QALYs[s] = nums[2*i+1]
		}
	}

	optimal, err := parseStrategy(values[7])
	if err != nil {
		return SingleRunCase{}, err
	}
	if optimal == nil {
		res.Trivial = true
		res.Costs, res.QALYs = nil, nil
	} else {
		res.Optimal = *optimal
	}
	if res.MaxBenefit, err = parseStrategy(values[14]); err != nil {
		return SingleRunCase{}, err
	}
	if err := checkHorizon(values[15]); err != nil {
		return SingleRunCase{}, err
	}
	return SingleRunCase{Inputs: in, Expected: res}, nil
}

// ParseMultiRunLine reads sex,age,race,onset,primary,comprehensive,transfer,%primary,
// %comprehensive,%drip,horizon with shares in percent.
func ParseMultiRunLine(line string) (MultiRunCase, error) {
	values, err := splitLine(line, multiRunFields)
	if err != nil {
		return MultiRunCase{}, err
	}
	in, err := parseInputs(values)
	if err != nil {
		return MultiRunCase{}, err
	}
	nums, err := parseFloats(values[7:10])
	if err != nil {
		return MultiRunCase{}, err
	}
	if err := checkHorizon(values[10]); err != nil {
		return MultiRunCase{}, err
	}

	shares := make(map[patient.Strategy]float64)
	for i, s := range []patient.Strategy{LinePrimary, LineComprehensive, LineDripAndShip} {
		if nums[i] != 0 {
			shares[s] = nums[i] / 100
		}
	}
	res, err := simulation.FromPercentages(shares)
	if err != nil {
		return MultiRunCase{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return MultiRunCase{Inputs: in, Expected: res}, nil
}

// FormatSingleRunLine renders a deterministic result in the layout ParseSingleRunLine reads.
func FormatSingleRunLine(in LineInputs, res simulation.SingleRunResult) string {
	fields := in.fields()
	if res.Trivial {
		fields = append(fields, labelCutoff)
	} else {
		fields = append(fields, strategyLabel(&res.Optimal))
	}
	for _, s := range []patient.Strategy{LinePrimary, LineComprehensive, LineDripAndShip} {
		fields = append(fields, formatFloat(res.Costs[s]), formatFloat(res.QALYs[s]))
	}
	fields = append(fields, strategyLabel(res.MaxBenefit), HorizonLifetime)
	return strings.Join(fields, ",")
}

// FormatMultiRunLine renders optimal-selection shares in percent.
func FormatMultiRunLine(in LineInputs, res simulation.MultiRunResult) string {
	fields := in.fields()
	for _, s := range []patient.Strategy{LinePrimary, LineComprehensive, LineDripAndShip} {
		fields = append(fields, formatFloat(100*res.Percentages[s]))
	}
	fields = append(fields, HorizonLifetime)
	return strings.Join(fields, ",")
}

// ReadSingleRunCases parses every non-blank line. Lines starting with # are skipped.
func ReadSingleRunCases(r io.Reader) ([]SingleRunCase, error) {
	return readCases(r, ParseSingleRunLine)
}

// ReadMultiRunCases parses every non-blank line. Lines starting with # are skipped.
func ReadMultiRunCases(r io.Reader) ([]MultiRunCase, error) {
	return readCases(r, ParseMultiRunLine)
}

func readCases[T any](r io.Reader, parse func(string) (T, error)) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var out []T
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func splitLine(line string, want int) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = want
	r.TrimLeadingSpace = true
	values, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return values, nil
}

func parseInputs(values []string) (LineInputs, error) {
	sex, err := patient.ParseSex(values[0])
	if err != nil {
		return LineInputs{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	age, err := strconv.Atoi(values[1])
	if err != nil {
		return LineInputs{}, fmt.Errorf("%w: age %q", ErrMalformedLine, values[1])
	}
	nums, err := parseFloats(values[2:7])
	if err != nil {
		return LineInputs{}, err
	}
	return LineInputs{
		Sex:                  sex,
		Age:                  age,
		RACE:                 nums[0],
		OnsetMinutes:         nums[1],
		PrimaryMinutes:       nums[2],
		ComprehensiveMinutes: nums[3],
		TransferMinutes:      nums[4],
	}, nil
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedLine, v)
		}
		out[i] = f
	}
	return out, nil
}

// parseStrategy returns nil for the severity cutoff.
func parseStrategy(label string) (*patient.Strategy, error) {
	var s patient.Strategy
	switch label {
	case labelPrimary:
		s = LinePrimary
	case labelComprehensive:
		s = LineComprehensive
	case labelDripAndShip:
		s = LineDripAndShip
	case labelCutoff:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrMalformedLine, label)
	}
	return &s, nil
}

func strategyLabel(s *patient.Strategy) string {
	if s == nil {
		return labelCutoff
	}
	switch s.Kind {
	case patient.KindPrimary:
		return labelPrimary
	case patient.KindComprehensive:
		return labelComprehensive
	default:
		return labelDripAndShip
	}
}

func checkHorizon(h string) error {
	if h != HorizonLifetime {
		return fmt.Errorf("%w: unsupported horizon %q", ErrMalformedLine, h)
	}
	return nil
}

func strategyOrNone(s *patient.Strategy) string {
	if s == nil {
		return "none"
	}
	return s.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
