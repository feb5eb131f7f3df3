package cohort

import (
	"fmt"
	"math"

	"stroke-mcs/internal/outcome"
	"stroke-mcs/internal/patient"
)

// continuousDiscount is the annual continuous discount rate for costs and QALYs.
const continuousDiscount = 0.03

// Input describes one cohort: a patient and the outcome of one strategy for one draw.
type Input struct {
	Age     int
	Sex     patient.Sex
	NIHSS   float64
	Outcome outcome.Outcome
}

// Result holds the yearly trace and its integrated totals.
type Result struct {
	States       []Distribution
	QALYsPerYear []float64
	CostsPerYear []float64
	QALYs        float64
	Costs        float64
}

// Simulate runs the cohort from the age at treatment to EndAge and values it with costs.
func Simulate(in Input, costs CostTable) (Result, error) {
	if in.Age < 0 || in.Age >= EndAge {
		return Result{}, fmt.Errorf("cohort: age %d outside [0, %d)", in.Age, EndAge)
	}

	// 1. Split the stroke-alert population and price the first year
	start, firstYearCost := breakIntoStates(in, costs)

	// 2. Age the cohort one year at a time
	states := runMarkov(start, in.Sex, in.Age)

	// 3. Value each recorded year
	discrete := math.Exp(continuousDiscount) - 1
	qalys := make([]float64, len(states))
	yearlyCosts := make([]float64, len(states))
	yearlyCosts[0] = firstYearCost
	for cycle, d := range states {
		discount := math.Pow(1+discrete, float64(cycle))

		q := 0.0
		for s := GenPop; s < Death; s++ {
			q += d[s] * utilities[s]
		}
		qalys[cycle] = q / discount

		if cycle > 0 {
			yearlyCosts[cycle] = costs.annual(d) / discount
		}
	}

	// 4. Integrate
	return Result{
		States:       states,
		QALYsPerYear: qalys,
		CostsPerYear: yearlyCosts,
		QALYs:        Simpson(qalys),
		Costs:        Simpson(yearlyCosts),
	}, nil
}

func breakIntoStates(in Input, costs CostTable) (Distribution, float64) {
	popMimic := pMimic
	popHemorrhagic := pHemorrhagic
	popIschemic := 1.0 - popMimic - popHemorrhagic

	mrs := BreakUpStroke(in.Outcome.PGood, in.NIHSS)

	var all, ischemic, hemorrhagic Distribution
	for s := GenPop; s <= Death; s++ {
		fromMimic := 0.0
		if s == GenPop {
			fromMimic = popMimic
		}
		ischemic[s] = popIschemic * mrs[s]
		hemorrhagic[s] = popHemorrhagic * mrs[s]
		all[s] = fromMimic + ischemic[s] + hemorrhagic[s]
	}

	cost := costs.firstYear(hemorrhagic, ischemic)
	cost += costs.IVT * in.Outcome.PTPA * popIschemic
	cost += costs.EVT * in.Outcome.PEVT * popIschemic
	cost += costs.Transfer * in.Outcome.PTransfer * popIschemic
	return all, cost
}

// runMarkov records the distribution at the start of every year and the terminal one.
// Disability grades are absorbing apart from death.
func runMarkov(start Distribution, sex patient.Sex, startAge int) []Distribution {
	current := start
	trace := make([]Distribution, 0, EndAge-startAge+1)
	for age := startAge; age < EndAge; age++ {
		trace = append(trace, current)
		// GenPop ages on the plain life table (hazard ratio 1); every mRS grade scales it.
		for s := GenPop; s < Death; s++ {
			change := current[s] * AdjustedMortality(sex, age, hazardRatios[s])
			current[Death] += change
			current[s] -= change
		}
	}
	return append(trace, current)
}

// Simpson integrates a yearly series with composite Simpson weights 1/3, 4/3, 2/3, ..., 4/3, 1/3.
// The last point always takes 1/3.
func Simpson(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	end := len(values) - 1
	sum := values[0] * (1.0 / 3)
	for i := 1; i <= end; i++ {
		var multiplier float64
		switch {
		case i == end:
			multiplier = 1.0 / 3
		case i%2 == 0:
			multiplier = 2.0 / 3
		default:
			multiplier = 4.0 / 3
		}
		sum += values[i] * multiplier
	}
	return sum
}
