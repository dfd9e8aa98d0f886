package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/pricing"
)

// Document is the machine-readable report shape. Field names are stable:
// API consumers depend on them.
type Document struct {
	Metadata        Metadata          `json:"metadata"`
	Summary         Summary           `json:"summary"`
	Components      []ComponentInfo   `json:"components"`
	Optimizations   []OptimizationRow `json:"optimizations"`
	Calculations    Calculations      `json:"calculations"`
	Recommendations []string          `json:"recommendations"`
	Execution       Execution         `json:"execution_optimizations"`
}

type Metadata struct {
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"`
	Framework       string    `json:"framework"`
	Confidence      string    `json:"confidence"`
	ConfidenceScore float64   `json:"confidence_score"`
}

type Summary struct {
	TotalOriginalCost  float64 `json:"total_original_cost"`
	TotalOptimizedCost float64 `json:"total_optimized_cost"`
	TotalSavings       float64 `json:"total_savings"`
	SavingsPercent     float64 `json:"savings_percentage"`
	ComponentsAnalyzed int     `json:"components_analyzed"`
}

type ComponentInfo struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Model           string         `json:"model,omitempty"`
	EstimatedTokens int            `json:"estimated_tokens"`
	FilePath        string         `json:"file_path"`
	LineNumber      int            `json:"line_number"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type OptimizationRow struct {
	Type           string  `json:"type"`
	OriginalCost   float64 `json:"original_cost"`
	OptimizedCost  float64 `json:"optimized_cost"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percent"`
	Explanation    string  `json:"explanation"`
}

type CalculationRow struct {
	Description  string  `json:"description"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
	Calculation  string  `json:"calculation"`
}

type Calculations struct {
	Baseline  []CalculationRow `json:"baseline"`
	Optimized []CalculationRow `json:"optimized"`
}

type ParallelRow struct {
	Kind                 string   `json:"type"`
	Components           []string `json:"components"`
	EstimatedTimeSavings float64  `json:"estimated_time_savings"`
}

type CacheRow struct {
	Component        string  `json:"component"`
	ComponentType    string  `json:"type"`
	TaskType         string  `json:"task_type"`
	CachePotential   string  `json:"cache_potential"`
	EstimatedHitRate float64 `json:"estimated_hit_rate"`
}

type Execution struct {
	ParallelOpportunities []ParallelRow `json:"parallel_opportunities"`
	CacheOpportunities    []CacheRow    `json:"cache_opportunities"`
}

// BuildDocument assembles the machine-readable document from a run.
func BuildDocument(run *analysis.Run) Document {
	doc := Document{
		Metadata: Metadata{
			RunID:           run.ID,
			Timestamp:       run.CompletedAt,
			Source:          run.Source,
			Framework:       run.Detection.Framework,
			Confidence:      string(run.Detection.Confidence),
			ConfidenceScore: run.Detection.ConfidenceScore,
		},
		Summary: Summary{
			TotalOriginalCost:  run.Workflow.TotalOriginalCost,
			TotalOptimizedCost: run.Workflow.TotalOptimizedCost,
			TotalSavings:       run.Workflow.TotalSavings,
			SavingsPercent:     run.Workflow.SavingsPercent,
			ComponentsAnalyzed: len(run.Workflow.Components),
		},
		Recommendations: run.Workflow.Recommendations,
	}

	for _, c := range run.Workflow.Components {
		doc.Components = append(doc.Components, ComponentInfo{
			Name:            c.Name,
			Type:            string(c.Type),
			Model:           c.Model,
			EstimatedTokens: c.EstimatedTokens,
			FilePath:        c.FilePath,
			LineNumber:      c.LineNumber,
			Metadata:        c.Metadata,
		})
	}

	for _, opt := range run.Workflow.OptimizationResults {
		doc.Optimizations = append(doc.Optimizations, OptimizationRow{
			Type:           string(opt.Type),
			OriginalCost:   opt.OriginalCost,
			OptimizedCost:  opt.OptimizedCost,
			Savings:        opt.Savings,
			SavingsPercent: opt.SavingsPercent,
			Explanation:    opt.Explanation,
		})
	}

	doc.Calculations.Baseline = calculationRows(run.Workflow.OriginalCalculations)
	doc.Calculations.Optimized = calculationRows(run.Workflow.OptimizedCalculations)

	for _, p := range run.Workflow.ParallelOpportunities {
		doc.Execution.ParallelOpportunities = append(doc.Execution.ParallelOpportunities, ParallelRow{
			Kind:                 p.Kind,
			Components:           p.Components,
			EstimatedTimeSavings: p.EstimatedTimeSavings,
		})
	}
	for _, c := range run.Workflow.CacheOpportunities {
		doc.Execution.CacheOpportunities = append(doc.Execution.CacheOpportunities, CacheRow{
			Component:        c.Component,
			ComponentType:    string(c.ComponentType),
			TaskType:         c.TaskType,
			CachePotential:   string(c.Potential),
			EstimatedHitRate: c.EstimatedHitRate,
		})
	}

	return doc
}

func calculationRows(calcs []pricing.CostCalculation) []CalculationRow {
	rows := make([]CalculationRow, 0, len(calcs))
	for _, calc := range calcs {
		rows = append(rows, CalculationRow{
			Description:  calc.Description,
			Model:        calc.Model,
			InputTokens:  calc.InputTokens,
			OutputTokens: calc.OutputTokens,
			TotalCost:    calc.TotalCost,
			Calculation:  calc.TotalCalculation,
		})
	}
	return rows
}

// JSON renders the indented JSON report for a run.
func (g *Generator) JSON(run *analysis.Run) (string, error) {
	doc := BuildDocument(run)
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(b), nil
}
