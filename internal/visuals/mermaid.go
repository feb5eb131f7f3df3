package visuals

import (
	"fmt"
	"math"
	"strings"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
)

// Markdown fences a diagram for chat clients and markdown renderers.
func Markdown(diagram string) string {
	if diagram == "" {
		return ""
	}
	return "```mermaid\n" + diagram + "\n```"
}

// GenerateSelectionPie creates a Mermaid pie of how often each strategy was optimal.
func GenerateSelectionPie(result simulation.MultiRunResult, reg *geography.Registry) string {
	if len(result.Percentages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("pie title Optimal Strategy Share\n")
	for _, s := range result.OrderedStrategies() {
		p, ok := result.Percentages[s]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" : %.1f\n", label(s, reg), 100*p))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// GenerateSelectionBars creates a Mermaid bar chart comparing the optimal and max benefit shares.
func GenerateSelectionBars(result simulation.MultiRunResult, reg *geography.Registry) string {
	strategies := result.OrderedStrategies()
	if len(strategies) == 0 {
		return ""
	}

	var labels, optimal, benefit []string
	for _, s := range strategies {
		labels = append(labels, fmt.Sprintf("\"%s\"", label(s, reg)))
		optimal = append(optimal, fmt.Sprintf("%.1f", 100*result.Percentages[s]))
		benefit = append(benefit, fmt.Sprintf("%.1f", 100*result.MaxBenefitPercentages[s]))
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Optimal vs Max Benefit (% of runs)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Share of Runs (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(optimal, ", ")))
	sb.WriteString(fmt.Sprintf("    bar [%s]", strings.Join(benefit, ", ")))
	return sb.String()
}

// GenerateQALYChart creates a Mermaid bar chart of lifetime QALYs per evaluated strategy.
func GenerateQALYChart(result simulation.SingleRunResult, reg *geography.Registry) string {
	return valueChart("Lifetime QALYs", "QALYs", "%.3f", result.Strategies(), result.QALYs, reg)
}

// GenerateCostChart creates a Mermaid bar chart of lifetime costs per evaluated strategy.
func GenerateCostChart(result simulation.SingleRunResult, reg *geography.Registry) string {
	return valueChart("Lifetime Costs", "USD", "%.0f", result.Strategies(), result.Costs, reg)
}

// GenerateSpreadChart plots P10, median and P90 QALYs per strategy across Monte Carlo runs.
func GenerateSpreadChart(result simulation.MultiRunResult, reg *geography.Registry) string {
	var labels, p10, median, p90 []string
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range result.OrderedStrategies() {
		spread, ok := result.Spreads[s]
		if !ok || spread.QALY.N == 0 {
			continue
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", label(s, reg)))
		p10 = append(p10, fmt.Sprintf("%.3f", spread.QALY.P10))
		median = append(median, fmt.Sprintf("%.3f", spread.QALY.Median))
		p90 = append(p90, fmt.Sprintf("%.3f", spread.QALY.P90))
		lo = math.Min(lo, spread.QALY.P10)
		hi = math.Max(hi, spread.QALY.P90)
	}
	if len(labels) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"QALY Spread (P10 / Median / P90)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"QALYs\" %d --> %d\n", int(math.Floor(lo)), int(math.Ceil(hi))+1))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(p10, ", ")))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(median, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]", strings.Join(p90, ", ")))
	return sb.String()
}

func valueChart(title, axis, format string, strategies []patient.Strategy, values map[patient.Strategy]float64, reg *geography.Registry) string {
	if len(strategies) == 0 {
		return ""
	}

	var labels, bars []string
	maxVal := 0.0
	for _, s := range strategies {
		v := values[s]
		labels = append(labels, fmt.Sprintf("\"%s\"", label(s, reg)))
		bars = append(bars, fmt.Sprintf(format, v))
		maxVal = math.Max(maxVal, v)
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	// Headroom above the tallest bar
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", axis, int(math.Ceil(maxVal*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]", strings.Join(bars, ", ")))
	return sb.String()
}

// label strips characters Mermaid treats as syntax.
func label(s patient.Strategy, reg *geography.Registry) string {
	name := s.String()
	if reg != nil {
		name = s.Label(reg)
	}
	return strings.NewReplacer("\"", "'", ",", " ", "[", "(", "]", ")").Replace(name)
}
