// Package pricing provides the static model pricing table and a transparent
// cost calculator. Every cost it produces carries a human-readable restatement
// of the exact arithmetic so downstream reports can show their work.
package pricing

// ModelPricing holds per-1K-token pricing for a single model.
// The table is loaded once at calculator construction and read-only after.
type ModelPricing struct {
	ModelID         string
	Provider        string
	InputCostPer1K  float64
	OutputCostPer1K float64
	ContextWindow   int
	Notes           string
}

// DefaultModel is the pricing fallback when a model id is unknown.
// Unknown models degrade to this pricing rather than erroring; the
// calculation's model string is annotated so the substitution stays visible.
const DefaultModel = "gpt-3.5-turbo"

// defaultPricing returns the compiled-in pricing table keyed by model id.
func defaultPricing() map[string]ModelPricing {
	return map[string]ModelPricing{
		// OpenAI models
		"gpt-4": {
			ModelID: "gpt-4", Provider: "openai",
			InputCostPer1K: 0.03, OutputCostPer1K: 0.06, ContextWindow: 8192,
			Notes: "Most capable, best for complex tasks",
		},
		"gpt-4-turbo": {
			ModelID: "gpt-4-turbo", Provider: "openai",
			InputCostPer1K: 0.01, OutputCostPer1K: 0.03, ContextWindow: 128000,
			Notes: "Faster, cheaper GPT-4 variant",
		},
		"gpt-4-turbo-preview": {
			ModelID: "gpt-4-turbo-preview", Provider: "openai",
			InputCostPer1K: 0.01, OutputCostPer1K: 0.03, ContextWindow: 128000,
			Notes: "Preview version of GPT-4 Turbo",
		},
		"gpt-3.5-turbo": {
			ModelID: "gpt-3.5-turbo", Provider: "openai",
			InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015, ContextWindow: 16385,
			Notes: "Fast, good for simple tasks",
		},
		"gpt-3.5-turbo-16k": {
			ModelID: "gpt-3.5-turbo-16k", Provider: "openai",
			InputCostPer1K: 0.003, OutputCostPer1K: 0.004, ContextWindow: 16385,
			Notes: "Extended context GPT-3.5",
		},

		// Anthropic models
		"claude-3-opus": {
			ModelID: "claude-3-opus", Provider: "anthropic",
			InputCostPer1K: 0.015, OutputCostPer1K: 0.075, ContextWindow: 200000,
			Notes: "Most capable Claude model",
		},
		"claude-3-sonnet": {
			ModelID: "claude-3-sonnet", Provider: "anthropic",
			InputCostPer1K: 0.003, OutputCostPer1K: 0.015, ContextWindow: 200000,
			Notes: "Balanced performance and cost",
		},
		"claude-3-haiku": {
			ModelID: "claude-3-haiku", Provider: "anthropic",
			InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125, ContextWindow: 200000,
			Notes: "Fast, efficient for simple tasks",
		},
		"claude-2.1": {
			ModelID: "claude-2.1", Provider: "anthropic",
			InputCostPer1K: 0.008, OutputCostPer1K: 0.024, ContextWindow: 200000,
			Notes: "Previous generation Claude",
		},

		// Other models
		"text-embedding-ada-002": {
			ModelID: "text-embedding-ada-002", Provider: "openai",
			InputCostPer1K: 0.0001, OutputCostPer1K: 0.0001, ContextWindow: 8191,
			Notes: "Embedding model",
		},
		"text-davinci-003": {
			ModelID: "text-davinci-003", Provider: "openai",
			InputCostPer1K: 0.02, OutputCostPer1K: 0.02, ContextWindow: 4097,
			Notes: "Legacy completion model",
		},
	}
}

// ModelSuggestion pairs a model id with the reason it fits a task type.
type ModelSuggestion struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// modelSuggestions maps task types to recommended models, cheapest-viable first.
var modelSuggestions = map[string][]ModelSuggestion{
	"classification": {
		{Model: "claude-3-haiku", Reason: "Fast and efficient for simple classifications"},
		{Model: "gpt-3.5-turbo", Reason: "Good balance of speed and accuracy"},
	},
	"code_generation": {
		{Model: "gpt-4-turbo", Reason: "Best for complex code generation"},
		{Model: "claude-3-sonnet", Reason: "Good alternative with large context"},
	},
	"analysis": {
		{Model: "claude-3-opus", Reason: "Excellent for deep analysis"},
		{Model: "gpt-4", Reason: "Strong analytical capabilities"},
	},
	"summarization": {
		{Model: "claude-3-haiku", Reason: "Efficient for straightforward summaries"},
		{Model: "gpt-3.5-turbo", Reason: "Fast and capable for most summaries"},
	},
	"general": {
		{Model: "gpt-3.5-turbo", Reason: "Good default for most tasks"},
		{Model: "claude-3-sonnet", Reason: "Balanced performance and cost"},
	},
}

// SuggestModels returns model suggestions for a task type.
// Unknown task types fall back to the general suggestions.
func SuggestModels(taskType string) []ModelSuggestion {
	if s, ok := modelSuggestions[taskType]; ok {
		return s
	}
	return modelSuggestions["general"]
}
