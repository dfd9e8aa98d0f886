// Package report renders a completed analysis run as an auditable HTML,
// Markdown, or JSON document.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/optimizer"
	"github.com/signalbox/signalbox/pricing"
)

// Config controls which report sections are rendered.
type Config struct {
	IncludeAssumptions     bool
	IncludeCalculations    bool
	IncludeRecommendations bool
	ShowConfidenceScores   bool
}

// DefaultConfig enables every section.
func DefaultConfig() Config {
	return Config{
		IncludeAssumptions:     true,
		IncludeCalculations:    true,
		IncludeRecommendations: true,
		ShowConfidenceScores:   true,
	}
}

// Generator renders analysis runs into report documents.
type Generator struct {
	config Config
	tmpl   *template.Template
}

// New creates a report generator.
func New(config Config) *Generator {
	return &Generator{
		config: config,
		tmpl:   template.Must(template.New("report").Funcs(templateFuncs).Parse(htmlTemplate)),
	}
}

var templateFuncs = template.FuncMap{
	"usd":   func(v float64) string { return fmt.Sprintf("$%.4f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"label": optimizationLabel,
	"add1":  func(i int) int { return i + 1 },
}

// optimizationLabel renders "model_substitution" as "Model Substitution".
func optimizationLabel(t pricing.OptimizationType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// optimizedRow pairs an optimized calculation with the optimization that
// produced it, when one was applied.
type optimizedRow struct {
	Calc   pricing.CostCalculation
	Result *pricing.OptimizationResult
}

// optimizedRows matches each optimized calculation to its optimization
// result. Results are recorded only for components whose optimization
// was accepted, and acceptance requires the component to get strictly
// cheaper, so the result cursor advances exactly on those rows.
func optimizedRows(wf optimizer.OptimizedWorkflow) []optimizedRow {
	rows := make([]optimizedRow, 0, len(wf.OptimizedCalculations))
	next := 0
	for i, calc := range wf.OptimizedCalculations {
		row := optimizedRow{Calc: calc}
		if next < len(wf.OptimizationResults) &&
			i < len(wf.OriginalCalculations) &&
			calc.TotalCost < wf.OriginalCalculations[i].TotalCost {
			row.Result = &wf.OptimizationResults[next]
			next++
		}
		rows = append(rows, row)
	}
	return rows
}

// htmlData is the template input assembled from a run.
type htmlData struct {
	Run       *analysis.Run
	Generated string
	Framework string
	Config    Config

	OptimizedRows    []optimizedRow
	BaselineTokens   int
	OptimizedTokens  int
	OptimizedSavings float64
}

// HTML renders the full HTML report for a run.
func (g *Generator) HTML(run *analysis.Run) (string, error) {
	data := htmlData{
		Run:       run,
		Generated: time.Now().Format("January 2, 2006 at 3:04 PM"),
		Framework: strings.ToUpper(run.Detection.Framework),
		Config:    g.config,
	}

	for _, calc := range run.Workflow.OriginalCalculations {
		data.BaselineTokens += calc.InputTokens + calc.OutputTokens
	}
	data.OptimizedRows = optimizedRows(run.Workflow)
	for _, row := range data.OptimizedRows {
		if row.Result != nil {
			data.OptimizedSavings += row.Result.Savings
		}
		data.OptimizedTokens += row.Calc.InputTokens + row.Calc.OutputTokens
	}

	var sb strings.Builder
	if err := g.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return sb.String(), nil
}

// Save writes an HTML report to dir, generating a timestamped filename when
// none is given, and returns the written path.
func (g *Generator) Save(html, filename, dir string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("signalbox_analysis_%s.html", time.Now().Format("20060102_150405"))
	}

	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
