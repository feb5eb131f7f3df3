package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
	"stroke-mcs/internal/visuals"
)

// Page is everything a saved report shows. Single and Multi are optional.
type Page struct {
	Generated time.Time
	Profile   *patient.Profile
	Single    *simulation.SingleRunResult
	Multi     *simulation.MultiRunResult
}

type centerRow struct {
	Name, Type, Travel, Transfer string
}

type strategyRow struct {
	Label      string
	Optimal    bool
	Cost, QALY string
	Share      string
	MaxBenefit string
	Spread     string
}

type pageView struct {
	Title     string
	Generated string
	Patient   [][2]string
	Centers   []centerRow
	Single    []strategyRow
	Trivial   string
	Multi     []strategyRow
	Summary   string
	Charts    []string
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #222; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { padding: .25rem .75rem; border-bottom: 1px solid #ddd; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
tr.optimal td { font-weight: 600; color: #1a7f37; }
.muted { color: #777; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="muted">Generated {{.Generated}}</p>

<h2>Patient</h2>
<table>{{range .Patient}}<tr><th>{{index . 0}}</th><td>{{index . 1}}</td></tr>{{end}}</table>

<h2>Centers</h2>
<table>
<tr><th>Center</th><th>Type</th><th>Travel</th><th>Transfer</th></tr>
{{range .Centers}}<tr><td>{{.Name}}</td><td>{{.Type}}</td><td>{{.Travel}}</td><td>{{.Transfer}}</td></tr>
{{end}}</table>

{{if .Trivial}}<h2>Deterministic Decision</h2><p>{{.Trivial}}</p>{{end}}
{{if .Single}}<h2>Deterministic Decision</h2>
<table>
<tr><th>Strategy</th><th>Cost</th><th>QALYs</th></tr>
{{range .Single}}<tr{{if .Optimal}} class="optimal"{{end}}><td>{{.Label}}</td><td class="num">{{.Cost}}</td><td class="num">{{.QALY}}</td></tr>
{{end}}</table>{{end}}

{{if .Multi}}<h2>Monte Carlo</h2>
<p>{{.Summary}}</p>
<table>
<tr><th>Strategy</th><th>Optimal</th><th>Max benefit</th><th>QALY P10 / P50 / P90</th></tr>
{{range .Multi}}<tr{{if .Optimal}} class="optimal"{{end}}><td>{{.Label}}</td><td class="num">{{.Share}}</td><td class="num">{{.MaxBenefit}}</td><td class="num">{{.Spread}}</td></tr>
{{end}}</table>{{end}}

{{range .Charts}}<pre class="mermaid">{{.}}</pre>
{{end}}
</body>
</html>
`))

// WriteHTML renders the page as a standalone document with Mermaid charts.
func WriteHTML(w io.Writer, page Page) error {
	return pageTemplate.Execute(w, buildView(page))
}

// SaveHTML writes the page under dir and returns its path.
func SaveHTML(dir string, page Page) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory %q: %w", dir, err)
	}
	name := "routing-" + page.Generated.Format("20060102-150405")
	if page.Multi != nil && page.Multi.BatchID != "" {
		name += "-" + page.Multi.BatchID[:min(8, len(page.Multi.BatchID))]
	}
	path := filepath.Join(dir, name+".html")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteHTML(f, page); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func buildView(page Page) pageView {
	p := page.Profile
	reg := p.Centers
	v := pageView{
		Title:     "Stroke Routing Report",
		Generated: page.Generated.Format(time.RFC1123),
		Patient: [][2]string{
			{"Sex", p.Sex.String()},
			{"Age", fmt.Sprintf("%d", p.Age)},
			{"RACE", fmt.Sprintf("%.0f (NIHSS %.1f)", p.RACE, p.NIHSS())},
			{"Since onset", fmt.Sprintf("%.0f min", p.OnsetMinutes)},
		},
	}

	for id := range reg.Len() {
		c := reg.MustGet(geography.CenterID(id))
		row := centerRow{Name: c.FullName, Type: c.Type.String(), Travel: "not reachable"}
		if m, ok := c.Time.Minutes(); ok {
			row.Travel = fmt.Sprintf("%.0f min", m)
		}
		if tr, ok := c.Transfer(); ok {
			row.Transfer = fmt.Sprintf("%s in %.0f min", reg.MustGet(tr.Destination).ShortName, tr.Minutes)
		}
		v.Centers = append(v.Centers, row)
	}

	if s := page.Single; s != nil {
		if s.Trivial {
			v.Trivial = "Beyond every treatment window; the severity cutoff selects " + s.Optimal.Label(reg) + "."
		} else {
			for _, st := range s.Strategies() {
				v.Single = append(v.Single, strategyRow{
					Label:   st.Label(reg),
					Optimal: st == s.Optimal,
					Cost:    fmtMoney(s.Costs[st]),
					QALY:    fmt.Sprintf("%.3f", s.QALYs[st]),
				})
			}
			v.Charts = append(v.Charts, visuals.GenerateQALYChart(*s, reg), visuals.GenerateCostChart(*s, reg))
		}
	}

	if m := page.Multi; m != nil {
		v.Summary = fmt.Sprintf("%d runs, %d beyond treatment windows, %d failed. Optimal: %s.",
			m.Runs, m.Trivial, m.Failed, m.Optimal.Label(reg))
		for _, st := range m.OrderedStrategies() {
			row := strategyRow{
				Label:      st.Label(reg),
				Optimal:    st == m.Optimal,
				Share:      fmt.Sprintf("%.1f%%", 100*m.Percentages[st]),
				MaxBenefit: fmt.Sprintf("%.1f%%", 100*m.MaxBenefitPercentages[st]),
			}
			if spread, ok := m.Spreads[st]; ok && spread.QALY.N > 0 {
				row.Spread = fmt.Sprintf("%.3f / %.3f / %.3f", spread.QALY.P10, spread.QALY.Median, spread.QALY.P90)
			}
			v.Multi = append(v.Multi, row)
		}
		v.Charts = append(v.Charts,
			visuals.GenerateSelectionPie(*m, reg),
			visuals.GenerateSelectionBars(*m, reg),
			visuals.GenerateSpreadChart(*m, reg))
	}

	charts := v.Charts[:0]
	for _, c := range v.Charts {
		if c != "" {
			charts = append(charts, c)
		}
	}
	v.Charts = charts
	return v
}
