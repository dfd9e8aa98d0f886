// Package detector provides the framework-detection primitives: pattern
// matching, evidence-based confidence scoring, the uniform detection
// pipeline, and the registry concrete detectors register into.
package detector

// ComponentType classifies a detected unit of LLM-driven work.
type ComponentType string

const (
	TypeAgent     ComponentType = "agent"
	TypeChain     ComponentType = "chain"
	TypeTool      ComponentType = "tool"
	TypeLLM       ComponentType = "llm"
	TypePrompt    ComponentType = "prompt"
	TypeMemory    ComponentType = "memory"
	TypeGroupChat ComponentType = "groupchat"
)

// Component is a detected source construct that will incur inference cost.
// Identity is (Name, FilePath, LineNumber). Components are shared by
// reference between the detection and optimization stages: the optimizer may
// back-fill Model and EstimatedTokens on the same instance.
type Component struct {
	Name            string
	Type            ComponentType
	FilePath        string
	LineNumber      int
	Model           string
	EstimatedTokens int
	Metadata        map[string]any
}

// MetaString returns a string metadata value, or "" when absent or non-string.
func (c *Component) MetaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[key].(string)
	return s
}

// WorkflowPattern is one observation from the workflow-flow extractor:
// either a directed call edge between components, a group construct with a
// participant count, a recorded execution, or a sequential chain list.
type WorkflowPattern struct {
	Type          string // chat, groupchat, execution, sequential
	From          string
	To            string
	Component     string
	ComponentType ComponentType
	AgentsCount   int
	Chains        []string
	File          string
}

// DetectionResult is the outcome of one detector run.
type DetectionResult struct {
	Framework           string
	Confidence          Confidence
	ConfidenceScore     float64 // 0-100
	Components          []*Component
	FilePatternsMatched []string
	CodePatternsMatched []string
	ImportsFound        []string
	ConfigFiles         []string
	WorkflowPatterns    []WorkflowPattern
}

// Merge folds another detection result into this one: lists are
// concatenated and confidence is raised to the higher of the two.
func (r *DetectionResult) Merge(other DetectionResult) {
	r.Components = append(r.Components, other.Components...)
	r.FilePatternsMatched = append(r.FilePatternsMatched, other.FilePatternsMatched...)
	r.CodePatternsMatched = append(r.CodePatternsMatched, other.CodePatternsMatched...)
	r.ImportsFound = append(r.ImportsFound, other.ImportsFound...)
	r.ConfigFiles = append(r.ConfigFiles, other.ConfigFiles...)
	r.WorkflowPatterns = append(r.WorkflowPatterns, other.WorkflowPatterns...)

	if other.ConfidenceScore > r.ConfidenceScore {
		r.ConfidenceScore = other.ConfidenceScore
		r.Confidence = other.Confidence
	}
}
