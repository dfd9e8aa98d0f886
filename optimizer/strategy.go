// Package optimizer classifies detected components by task, proposes
// cheaper execution plans (model substitution, caching, token reduction),
// and surfaces structural opportunities like parallel execution.
package optimizer

import (
	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/pricing"
)

// Strategy types beyond the per-calculation optimizations the calculator
// applies. These describe workflow-level restructuring.
const (
	StrategyParallelExecution pricing.OptimizationType = "parallel_execution"
	StrategyLoopPrevention    pricing.OptimizationType = "loop_prevention"
	StrategyBatchProcessing   pricing.OptimizationType = "batch_processing"
)

// Strategy is a named optimization approach with its applicability and an
// estimated savings fraction. Strategies are ordered by priority: lower
// numbers are tried first.
type Strategy struct {
	Type                pricing.OptimizationType
	Name                string
	Description         string
	ApplicableTo        []detector.ComponentType
	EstimatedSavings    float64 // fraction of cost, 0-1
	ImplementationNotes string
	Priority            int
}

// AppliesTo reports whether the strategy covers the given component type.
func (s Strategy) AppliesTo(t detector.ComponentType) bool {
	for _, a := range s.ApplicableTo {
		if a == t {
			return true
		}
	}
	return false
}

// defaultStrategies is the built-in strategy catalog in priority order.
func defaultStrategies() []Strategy {
	return []Strategy{
		{
			Type:                pricing.OptimizationModelSubstitution,
			Name:                "Smart Model Routing",
			Description:         "Use cheaper models for simple tasks",
			ApplicableTo:        []detector.ComponentType{detector.TypeAgent, detector.TypeChain, detector.TypeLLM},
			EstimatedSavings:    0.7,
			ImplementationNotes: "Analyze task complexity and route to the appropriate model",
			Priority:            1,
		},
		{
			Type:                pricing.OptimizationCaching,
			Name:                "Intelligent Caching",
			Description:         "Cache similar queries and responses",
			ApplicableTo:        []detector.ComponentType{detector.TypeAgent, detector.TypeChain, detector.TypeLLM},
			EstimatedSavings:    0.15,
			ImplementationNotes: "Use vector similarity for semantic matching",
			Priority:            2,
		},
		{
			Type:                pricing.OptimizationTokenReduction,
			Name:                "Prompt Optimization",
			Description:         "Reduce tokens through better prompting",
			ApplicableTo:        []detector.ComponentType{detector.TypeAgent, detector.TypeChain, detector.TypePrompt},
			EstimatedSavings:    0.2,
			ImplementationNotes: "Compress prompts, remove redundancy",
			Priority:            3,
		},
		{
			Type:                StrategyParallelExecution,
			Name:                "Parallel Processing",
			Description:         "Execute independent operations in parallel",
			ApplicableTo:        []detector.ComponentType{detector.TypeAgent, detector.TypeChain},
			EstimatedSavings:    0, // time savings, not cost
			ImplementationNotes: "Identify independent operations for parallel execution",
			Priority:            4,
		},
		{
			Type:                StrategyLoopPrevention,
			Name:                "Circular Call Prevention",
			Description:         "Prevent agent communication loops",
			ApplicableTo:        []detector.ComponentType{detector.TypeAgent, detector.TypeGroupChat},
			EstimatedSavings:    0.25,
			ImplementationNotes: "Detect and break circular dependencies",
			Priority:            5,
		},
		{
			Type:                StrategyBatchProcessing,
			Name:                "Request Batching",
			Description:         "Batch multiple requests together",
			ApplicableTo:        []detector.ComponentType{detector.TypeLLM, detector.TypeChain},
			EstimatedSavings:    0.1,
			ImplementationNotes: "Combine multiple small requests",
			Priority:            6,
		},
	}
}
