package optimizer

import (
	"fmt"

	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/pricing"
)

// Default token estimates per component type when detection produced none.
const (
	defaultAgentTokens = 1500
	defaultChainTokens = 1000
	defaultOtherTokens = 500

	// outputEstimateRatio derives the output token estimate from input.
	outputEstimateRatio = 0.3
)

// Engine applies the optimization strategy catalog to detected workflows.
type Engine struct {
	calc         *pricing.Calculator
	strategies   []Strategy
	defaultModel string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultModel sets the model used to price components that declare
// no model of their own.
func WithDefaultModel(model string) Option {
	return func(e *Engine) {
		if model != "" {
			e.defaultModel = model
		}
	}
}

// New creates an optimization engine with the default strategy catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		calc:         pricing.New(),
		strategies:   defaultStrategies(),
		defaultModel: pricing.DefaultModel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategies returns the strategy catalog in priority order.
func (e *Engine) Strategies() []Strategy {
	out := make([]Strategy, len(e.strategies))
	copy(out, e.strategies)
	return out
}

// OptimizedWorkflow is the full optimization analysis of a detected
// workflow: baseline and optimized cost calculations side by side, the
// savings summary, applied strategies, structural opportunities, and
// actionable recommendations.
type OptimizedWorkflow struct {
	Components []*detector.Component

	OriginalCalculations  []pricing.CostCalculation
	OptimizedCalculations []pricing.CostCalculation
	OptimizationResults   []pricing.OptimizationResult

	TotalOriginalCost  float64
	TotalOptimizedCost float64
	TotalSavings       float64
	SavingsPercent     float64

	StrategiesApplied     []Strategy
	ParallelOpportunities []ParallelOpportunity
	CacheOpportunities    []CacheOpportunity
	Recommendations       []string
}

// OptimizeWorkflow computes baseline costs for every detected component,
// then greedily chains optimizations per component in priority order:
// model substitution, then caching, then token reduction. An optimization
// is kept only when it makes the component strictly cheaper; accepted
// optimizations combine their savings and explanations. Components with no
// token estimate get a per-type default, and components with no model are
// priced at the default model.
func (e *Engine) OptimizeWorkflow(result detector.DetectionResult) OptimizedWorkflow {
	components := result.Components

	originalCalcs := make([]pricing.CostCalculation, 0, len(components))
	totalOriginal := 0.0

	for _, c := range components {
		if c.EstimatedTokens == 0 {
			switch c.Type {
			case detector.TypeAgent:
				c.EstimatedTokens = defaultAgentTokens
			case detector.TypeChain:
				c.EstimatedTokens = defaultChainTokens
			default:
				c.EstimatedTokens = defaultOtherTokens
			}
		}

		model := c.Model
		if model == "" {
			model = e.defaultModel
		}

		calc := e.calc.CalculateCost(
			c.EstimatedTokens,
			int(float64(c.EstimatedTokens)*outputEstimateRatio),
			model,
			fmt.Sprintf("Component: %s", c.Name),
		)
		originalCalcs = append(originalCalcs, calc)
		totalOriginal += calc.TotalCost
	}

	optimizedCalcs := make([]pricing.CostCalculation, 0, len(components))
	var optResults []pricing.OptimizationResult
	var applied []Strategy
	totalOptimized := 0.0

	for i, c := range components {
		best := originalCalcs[i]
		var bestResult *pricing.OptimizationResult

		taskType := e.ClassifyTask(c)

		if target := e.SuggestModelSubstitution(c, taskType); target != "" {
			optCalc, optResult := e.calc.ApplyOptimization(originalCalcs[i], pricing.OptimizationModelSubstitution, pricing.OptimizationParams{
				TargetModel: target,
				Reason:      fmt.Sprintf("Task type %q can use a more efficient model", taskType),
			})
			if optCalc.TotalCost < best.TotalCost {
				best = optCalc
				bestResult = &optResult
				applied = append(applied, e.strategies[0])
			}
		}

		if cacheOpps := e.IdentifyCacheOpportunities([]*detector.Component{c}); len(cacheOpps) > 0 &&
			(cacheOpps[0].Potential == CacheHigh || cacheOpps[0].Potential == CacheMedium) {
			optCalc, optResult := e.calc.ApplyOptimization(best, pricing.OptimizationCaching, pricing.OptimizationParams{
				CacheHitRate: cacheOpps[0].EstimatedHitRate,
			})
			if optCalc.TotalCost < best.TotalCost {
				best = optCalc
				bestResult = combineResults(bestResult, optResult)
				applied = append(applied, e.strategies[1])
			}
		}

		if taskType == "summarization" || taskType == "extraction" {
			optCalc, optResult := e.calc.ApplyOptimization(best, pricing.OptimizationTokenReduction, pricing.OptimizationParams{
				ReductionRate: 0.2,
			})
			if optCalc.TotalCost < best.TotalCost {
				best = optCalc
				bestResult = combineResults(bestResult, optResult)
				applied = append(applied, e.strategies[2])
			}
		}

		optimizedCalcs = append(optimizedCalcs, best)
		if bestResult != nil {
			optResults = append(optResults, *bestResult)
		}
		totalOptimized += best.TotalCost
	}

	parallelOpps := e.IdentifyParallelOpportunities(components, result.WorkflowPatterns)
	cacheOpps := e.IdentifyCacheOpportunities(components)

	totalSavings := totalOriginal - totalOptimized
	savingsPct := 0.0
	if totalOriginal > 0 {
		savingsPct = totalSavings / totalOriginal * 100
	}

	return OptimizedWorkflow{
		Components:            components,
		OriginalCalculations:  originalCalcs,
		OptimizedCalculations: optimizedCalcs,
		OptimizationResults:   optResults,
		TotalOriginalCost:     totalOriginal,
		TotalOptimizedCost:    totalOptimized,
		TotalSavings:          totalSavings,
		SavingsPercent:        savingsPct,
		StrategiesApplied:     dedupeStrategies(applied),
		ParallelOpportunities: parallelOpps,
		CacheOpportunities:    cacheOpps,
		Recommendations:       e.recommendations(components, optResults, parallelOpps, cacheOpps),
	}
}

// combineResults folds a later optimization into an earlier one on the same
// component: savings add up and explanations concatenate. With no earlier
// result the later one stands alone.
func combineResults(earlier *pricing.OptimizationResult, later pricing.OptimizationResult) *pricing.OptimizationResult {
	if earlier == nil {
		return &later
	}
	earlier.Savings += later.Savings
	earlier.Explanation += " + " + later.Explanation
	return earlier
}

// dedupeStrategies keeps the first occurrence of each strategy by name.
func dedupeStrategies(strategies []Strategy) []Strategy {
	seen := make(map[string]bool, len(strategies))
	var out []Strategy
	for _, s := range strategies {
		if !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s)
		}
	}
	return out
}

// recommendations renders actionable guidance from the optimization outcome.
func (e *Engine) recommendations(components []*detector.Component, optResults []pricing.OptimizationResult, parallelOpps []ParallelOpportunity, cacheOpps []CacheOpportunity) []string {
	var recs []string

	modelSavings := 0.0
	for _, r := range optResults {
		if r.Type == pricing.OptimizationModelSubstitution {
			modelSavings += r.Savings
		}
	}
	if modelSavings > 0 {
		recs = append(recs, fmt.Sprintf(
			"Implement smart model routing to save $%.2f per run. "+
				"Use Claude-3-Haiku for simple tasks like classification and formatting.",
			modelSavings))
	}

	highCache := 0
	for _, c := range cacheOpps {
		if c.Potential == CacheHigh {
			highCache++
		}
	}
	if highCache > 0 {
		recs = append(recs, fmt.Sprintf(
			"Enable semantic caching for %d components with high cache potential. "+
				"Expected 15-30%% hit rate for classification and validation tasks.",
			highCache))
	}

	if len(parallelOpps) > 0 {
		timeSavings := 0.0
		for _, p := range parallelOpps {
			timeSavings += p.EstimatedTimeSavings
		}
		recs = append(recs, fmt.Sprintf(
			"Parallelize %d independent operations to reduce execution time by ~%.0f%%.",
			len(parallelOpps), timeSavings*100))
	}

	hasAgents := false
	for _, c := range components {
		if c.Type == detector.TypeAgent {
			hasAgents = true
			break
		}
	}
	if hasAgents && len(components) > 3 {
		recs = append(recs,
			"Implement loop detection to prevent circular agent calls. "+
				"This can reduce costs by 25% in complex multi-agent conversations.")
	}

	totalTokens := 0
	for _, c := range components {
		totalTokens += c.EstimatedTokens
	}
	if totalTokens > 5000 {
		recs = append(recs,
			"Optimize prompts to reduce token usage by 20%. "+
				"Focus on system prompts and repeated templates.")
	}

	return recs
}
