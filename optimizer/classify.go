package optimizer

import (
	"strings"

	"github.com/signalbox/signalbox/detector"
)

// TaskGeneral is the classification for components matching no keyword rule.
const TaskGeneral = "general"

// taskClassifiers map task types to the keywords that indicate them.
// Order matters: "check" appears under both classification and validation,
// and the earlier rule wins.
var taskClassifiers = []struct {
	taskType string
	keywords []string
}{
	{"classification", []string{"classify", "categorize", "filter", "route", "check"}},
	{"formatting", []string{"format", "template", "structure", "parse", "convert"}},
	{"validation", []string{"validate", "verify", "check", "ensure", "confirm"}},
	{"extraction", []string{"extract", "find", "search", "locate", "identify"}},
	{"summarization", []string{"summarize", "tldr", "brief", "overview", "synopsis"}},
	{"generation", []string{"generate", "create", "write", "produce", "compose"}},
	{"analysis", []string{"analyze", "examine", "investigate", "study", "evaluate"}},
	{"qa", []string{"question", "answer", "ask", "respond", "query"}},
}

// modelSubstitutions map (current model, task type) to a cheaper model that
// handles the task adequately.
var modelSubstitutions = map[string]map[string]string{
	"gpt-4": {
		"classification": "claude-3-haiku",
		"formatting":     "claude-3-haiku",
		"validation":     "gpt-3.5-turbo",
		"extraction":     "gpt-3.5-turbo",
		"summarization":  "claude-3-sonnet",
	},
	"gpt-3.5-turbo": {
		"classification": "claude-3-haiku",
		"formatting":     "claude-3-haiku",
	},
	"claude-3-opus": {
		"classification": "claude-3-haiku",
		"formatting":     "claude-3-haiku",
		"validation":     "claude-3-haiku",
		"extraction":     "claude-3-sonnet",
	},
}

// classifyText returns the first task type whose keywords appear in text,
// or "" when none match.
func classifyText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	for _, tc := range taskClassifiers {
		for _, kw := range tc.keywords {
			if strings.Contains(text, kw) {
				return tc.taskType
			}
		}
	}
	return ""
}

// ClassifyTask infers what kind of work a component does from its name,
// then its system message, then its prompt template. Unmatched components
// classify as "general".
func (e *Engine) ClassifyTask(c *detector.Component) string {
	if t := classifyText(c.Name); t != "" {
		return t
	}
	if t := classifyText(c.MetaString("system_message")); t != "" {
		return t
	}
	if t := classifyText(c.MetaString("template")); t != "" {
		return t
	}
	return TaskGeneral
}

// SuggestModelSubstitution returns a cheaper model suited to the task, or ""
// when the component has no model or no substitution applies.
func (e *Engine) SuggestModelSubstitution(c *detector.Component, taskType string) string {
	if c.Model == "" {
		return ""
	}

	if subs, ok := modelSubstitutions[c.Model]; ok {
		if target, ok := subs[taskType]; ok {
			return target
		}
	}

	// General fallback: simple tasks on premium models route to Haiku.
	switch taskType {
	case "classification", "formatting", "validation":
		switch c.Model {
		case "gpt-4", "claude-3-opus", "gpt-3.5-turbo":
			return "claude-3-haiku"
		}
	}

	return ""
}
