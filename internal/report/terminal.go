package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
)

// Column widths shared by every table.
const (
	colStrategy = 40
	colNumber   = 12
	colBar      = 20
)

// Terminal renders results for a console. Colour follows the capabilities of the writer it was
// built for, so a buffer or pipe gets plain text.
type Terminal struct {
	reg *geography.Registry

	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	best   lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
	panel  lipgloss.Style
	header lipgloss.Style
}

func NewTerminal(w io.Writer, reg *geography.Registry) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		reg:    reg,
		title:  r.NewStyle().Bold(true).Foreground(colorCyan),
		label:  r.NewStyle().Foreground(colorGray),
		value:  r.NewStyle().Foreground(colorWhite),
		best:   r.NewStyle().Foreground(colorGreen).Bold(true),
		dim:    r.NewStyle().Foreground(colorGray),
		warn:   r.NewStyle().Foreground(colorYellow).Bold(true),
		header: r.NewStyle().Foreground(colorMagenta).Bold(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1),
	}
}

var (
	colorGreen   = lipgloss.Color("#50FA7B")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
)

// Profile summarises the patient and every center around the incident.
func (t *Terminal) Profile(p *patient.Profile) string {
	var sb strings.Builder
	sb.WriteString(t.title.Render("Patient") + "\n")
	sb.WriteString(t.kv("Sex", p.Sex.String()))
	sb.WriteString(t.kv("Age", fmt.Sprintf("%d", p.Age)))
	sb.WriteString(t.kv("RACE", fmt.Sprintf("%.0f (NIHSS %.1f)", p.RACE, p.NIHSS())))
	sb.WriteString(t.kv("Since onset", fmt.Sprintf("%.0f min", p.OnsetMinutes)))
	sb.WriteString("\n" + t.title.Render("Centers") + "\n")

	for id := range p.Centers.Len() {
		c := p.Centers.MustGet(geography.CenterID(id))
		travel := t.dim.Render("not reachable")
		if m, ok := c.Time.Minutes(); ok {
			travel = fmt.Sprintf("%.0f min", m)
		}
		line := styledPad(t.value.Render(truncate(c.ShortName, colStrategy-2)), colStrategy) +
			styledPad(t.label.Render(c.Type.String()), 16) + travel
		if tr, ok := c.Transfer(); ok {
			dest := p.Centers.MustGet(tr.Destination)
			line += t.dim.Render(fmt.Sprintf("  ships to %s in %.0f min", dest.ShortName, tr.Minutes))
		}
		sb.WriteString("  " + line + "\n")
	}
	return t.panel.Render(strings.TrimSuffix(sb.String(), "\n"))
}

// Single renders one deterministic or sampled pass.
func (t *Terminal) Single(res simulation.SingleRunResult) string {
	var sb strings.Builder
	sb.WriteString(t.title.Render("Routing Decision") + "\n")

	if res.Trivial {
		sb.WriteString(t.warn.Render("Beyond every treatment window") + "\n")
		sb.WriteString(t.kv("Severity cutoff", res.Optimal.Label(t.reg)))
		return t.panel.Render(strings.TrimSuffix(sb.String(), "\n"))
	}

	sb.WriteString(t.kv("Optimal", t.best.Render(res.Optimal.Label(t.reg))))
	if res.MaxBenefit != nil {
		sb.WriteString(t.kv("Max benefit", res.MaxBenefit.Label(t.reg)))
	}
	sb.WriteString("\n")
	sb.WriteString(t.header.Render(styledPad("Strategy", colStrategy) + padLeft("Cost", colNumber) + padLeft("QALYs", colNumber)))
	sb.WriteString("\n")
	for _, s := range res.Strategies() {
		name := t.value.Render(truncate(s.Label(t.reg), colStrategy-2))
		if s == res.Optimal {
			name = t.best.Render(truncate(s.Label(t.reg), colStrategy-2))
		}
		sb.WriteString(styledPad(name, colStrategy) +
			padLeft(fmtMoney(res.Costs[s]), colNumber) +
			padLeft(fmt.Sprintf("%.3f", res.QALYs[s]), colNumber) + "\n")
	}
	return t.panel.Render(strings.TrimSuffix(sb.String(), "\n"))
}

// Multi renders a Monte Carlo aggregate with selection shares and QALY spreads.
func (t *Terminal) Multi(res simulation.MultiRunResult) string {
	var sb strings.Builder
	sb.WriteString(t.title.Render("Monte Carlo Routing") + "\n")
	if res.BatchID != "" {
		sb.WriteString(t.kv("Batch", res.BatchID))
	}
	sb.WriteString(t.kv("Runs", fmt.Sprintf("%d (%d beyond treatment windows, %d failed)", res.Runs, res.Trivial, res.Failed)))
	sb.WriteString(t.kv("Optimal", t.best.Render(res.Optimal.Label(t.reg))))
	if res.MaxBenefit != nil {
		sb.WriteString(t.kv("Max benefit", res.MaxBenefit.Label(t.reg)))
	}
	if res.Failed > 0 {
		sb.WriteString(t.warn.Render(fmt.Sprintf("%d runs failed and are excluded", res.Failed)) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(t.header.Render(styledPad("Strategy", colStrategy) +
		padRight("Optimal", colNumber+colBar+1) + padLeft("Max benefit", colNumber) + padLeft("QALY P50", colNumber) +
		padLeft("P10-P90", 2*colNumber)))
	sb.WriteString("\n")

	for _, s := range res.OrderedStrategies() {
		share := res.Percentages[s]
		name := t.value.Render(truncate(s.Label(t.reg), colStrategy-2))
		if s == res.Optimal {
			name = t.best.Render(truncate(s.Label(t.reg), colStrategy-2))
		}
		line := styledPad(name, colStrategy) +
			padLeft(fmt.Sprintf("%.1f%%", 100*share), colNumber-2) + "  " + t.bar(share, colBar) + " " +
			padLeft(fmt.Sprintf("%.1f%%", 100*res.MaxBenefitPercentages[s]), colNumber)
		if spread, ok := res.Spreads[s]; ok && spread.QALY.N > 0 {
			line += padLeft(fmt.Sprintf("%.3f", spread.QALY.Median), colNumber) +
				padLeft(fmt.Sprintf("%.3f-%.3f", spread.QALY.P10, spread.QALY.P90), 2*colNumber)
		}
		sb.WriteString(line + "\n")
	}
	return t.panel.Render(strings.TrimSuffix(sb.String(), "\n"))
}

func (t *Terminal) kv(key, value string) string {
	return styledPad(t.label.Render(key+":"), 18) + t.value.Render(value) + "\n"
}

// bar renders a share in [0, 1] as a fixed-width block bar.
func (t *Terminal) bar(share float64, width int) string {
	share = max(0, min(1, share))
	filled := int(share * float64(width))
	return t.best.Render(strings.Repeat("█", filled)) + t.dim.Render(strings.Repeat("░", width-filled))
}

// styledPad pads to a visual width, ignoring ANSI escapes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

func padLeft(s string, width int) string {
	visW := lipgloss.Width(s)
	if visW >= width {
		return s
	}
	return strings.Repeat(" ", width-visW) + s
}

func padRight(s string, width int) string {
	return styledPad(s, width)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

// fmtMoney groups thousands: 97791.92 -> $97,792.
func fmtMoney(v float64) string {
	n := int64(v + 0.5)
	if v < 0 {
		n = int64(v - 0.5)
	}
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := fmt.Sprintf("%d", n)
	var out []byte
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + "$" + string(out)
}
