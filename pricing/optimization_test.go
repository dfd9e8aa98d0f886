package pricing

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptimization_ModelSubstitution(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(1500, 450, "gpt-4", "classifier agent")

	newCalc, result := calc.ApplyOptimization(original, OptimizationModelSubstitution, OptimizationParams{
		TargetModel: "claude-3-haiku",
	})

	require.Equal(t, OptimizationModelSubstitution, result.Type)
	assert.Less(t, newCalc.TotalCost, original.TotalCost)
	assert.InDelta(t, original.TotalCost-newCalc.TotalCost, result.Savings, tolerance)
	assert.InDelta(t, result.Savings/original.TotalCost*100, result.SavingsPercent, tolerance)
	assert.Contains(t, result.CalculationDetails, "claude-3-haiku")

	// Token counts carry over unchanged under substitution.
	assert.Equal(t, original.InputTokens, newCalc.InputTokens)
	assert.Equal(t, original.OutputTokens, newCalc.OutputTokens)
}

func TestApplyOptimization_SubstitutionCanIncreaseCost(t *testing.T) {
	// The calculator reports negative savings; rejecting them is the
	// optimizer's job, not the calculator's.
	calc := New()
	original := calc.CalculateCost(1000, 300, "claude-3-haiku", "")

	newCalc, result := calc.ApplyOptimization(original, OptimizationModelSubstitution, OptimizationParams{
		TargetModel: "claude-3-opus",
	})

	assert.Greater(t, newCalc.TotalCost, original.TotalCost)
	assert.Negative(t, result.Savings)
}

func TestApplyOptimization_Caching(t *testing.T) {
	calc := New()

	// Baseline pinned at exactly $1.00.
	original := CostCalculation{
		StepID:       "calc_test",
		InputTokens:  10000,
		OutputTokens: 5000,
		Model:        "gpt-4",
		TotalCost:    1.00,
		InputCost:    0.40,
		OutputCost:   0.60,
	}

	newCalc, result := calc.ApplyOptimization(original, OptimizationCaching, OptimizationParams{
		CacheHitRate: 0.15,
	})

	// expected = 0.85×1.00 + 0.15×0.0001 = 0.850015
	assert.InDelta(t, 0.850015, newCalc.TotalCost, 1e-9)
	assert.InDelta(t, 0.149985, result.Savings, 1e-9)

	// Token counts are display-scaled by (1-hitRate).
	assert.Equal(t, 8500, newCalc.InputTokens)
	assert.Equal(t, 4250, newCalc.OutputTokens)

	// Blend parameters are recorded for the audit trail.
	assert.Equal(t, 0.15, newCalc.Assumptions["cache_hit_rate"])
}

func TestApplyOptimization_CachingDefaultHitRate(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(1000, 300, "gpt-4", "")

	_, result := calc.ApplyOptimization(original, OptimizationCaching, OptimizationParams{})

	want := (1-0.15)*original.TotalCost + 0.15*minimalCacheCost
	assert.InDelta(t, want, result.OptimizedCost, tolerance)
}

func TestApplyOptimization_TokenReduction(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(1000, 300, "gpt-4", "summarizer")

	newCalc, result := calc.ApplyOptimization(original, OptimizationTokenReduction, OptimizationParams{
		ReductionRate: 0.2,
	})

	assert.Equal(t, 800, newCalc.InputTokens)
	assert.Equal(t, 240, newCalc.OutputTokens)
	assert.Less(t, newCalc.TotalCost, original.TotalCost)
	assert.InDelta(t, original.TotalCost-newCalc.TotalCost, result.Savings, tolerance)
}

func TestApplyOptimization_UnknownTypeIsIdentity(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(1000, 300, "gpt-4", "")

	newCalc, result := calc.ApplyOptimization(original, OptimizationType("warp-drive"), OptimizationParams{})

	if newCalc.TotalCost != original.TotalCost {
		t.Errorf("identity optimization changed cost: %v vs %v", newCalc.TotalCost, original.TotalCost)
	}
	if result.Savings != 0 || result.SavingsPercent != 0 {
		t.Errorf("identity optimization reported savings: %+v", result)
	}
	if result.Type != OptimizationNone {
		t.Errorf("type = %q, want none", result.Type)
	}
}

func TestApplyOptimization_ZeroCostPercent(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(0, 0, "gpt-4", "")

	for _, optType := range []OptimizationType{
		OptimizationModelSubstitution,
		OptimizationCaching,
		OptimizationTokenReduction,
	} {
		_, result := calc.ApplyOptimization(original, optType, OptimizationParams{
			TargetModel: "claude-3-haiku",
		})
		if math.IsNaN(result.SavingsPercent) || math.IsInf(result.SavingsPercent, 0) {
			t.Errorf("%s: savings percent not finite: %v", optType, result.SavingsPercent)
		}
	}
}

func TestApplyOptimization_DoesNotMutateOriginal(t *testing.T) {
	calc := New()
	original := calc.CalculateCost(1000, 300, "gpt-4", "immutable")
	before := original

	calc.ApplyOptimization(original, OptimizationCaching, OptimizationParams{CacheHitRate: 0.3})
	calc.ApplyOptimization(original, OptimizationTokenReduction, OptimizationParams{})

	if original.TotalCost != before.TotalCost || original.InputTokens != before.InputTokens {
		t.Error("original calculation was mutated")
	}
	if !strings.HasPrefix(original.StepID, "calc_") {
		t.Errorf("step id = %q", original.StepID)
	}
}
