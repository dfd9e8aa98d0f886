package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalbox/signalbox/detector"
	_ "github.com/signalbox/signalbox/detector/autogen"
	_ "github.com/signalbox/signalbox/detector/langchain"
)

const autogenApp = `import autogen

assistant = autogen.AssistantAgent(
    name="coder",
    system_message="You write Python code for the user.",
    llm_config={"model": "gpt-4"},
)
user = autogen.UserProxyAgent(name="user")
user.initiate_chat(assistant, message="Build a parser")
`

func TestAnalyze_DetectsStrongestFramework(t *testing.T) {
	a := New()

	run, err := a.Analyze(context.Background(), "local:demo",
		[]string{"app.py", "OAI_CONFIG_LIST"},
		map[string]string{"app.py": autogenApp})
	require.NoError(t, err)

	assert.Equal(t, "autogen", run.Detection.Framework)
	assert.NotEmpty(t, run.Detection.Components)
	assert.Equal(t, "local:demo", run.Source)
	assert.True(t, run.CompletedAt.After(run.StartedAt) || run.CompletedAt.Equal(run.StartedAt))
	assert.Contains(t, run.ID, "run_")

	assert.Positive(t, run.Workflow.TotalOriginalCost)
	assert.LessOrEqual(t, run.Workflow.TotalOptimizedCost, run.Workflow.TotalOriginalCost)
}

func TestAnalyze_ConfiguredDefaultModel(t *testing.T) {
	a := New(WithDefaultModel("claude-3-haiku"))

	run, err := a.Analyze(context.Background(), "local:demo",
		[]string{"app.py"},
		map[string]string{"app.py": autogenApp})
	require.NoError(t, err)

	// The proxy agent declares no model, so it gets priced at the
	// configured default instead of the compiled-in fallback.
	models := make([]string, 0, len(run.Workflow.OriginalCalculations))
	for _, calc := range run.Workflow.OriginalCalculations {
		models = append(models, calc.Model)
	}
	assert.Contains(t, models, "claude-3-haiku")
	assert.NotContains(t, models, "gpt-3.5-turbo")
}

func TestAnalyze_NoFramework(t *testing.T) {
	a := New()

	_, err := a.Analyze(context.Background(), "local:plain",
		[]string{"main.py"},
		map[string]string{"main.py": "print('hello')\n"})

	require.ErrorIs(t, err, ErrNoFrameworkDetected)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := New()

	_, err := a.Analyze(context.Background(), "local:empty", nil, nil)

	require.ErrorIs(t, err, ErrNoFrameworkDetected)
}

func TestAnalyze_CustomRegistry(t *testing.T) {
	r := detector.NewRegistry()
	a := New(WithRegistry(r))

	// An empty registry finds nothing regardless of input.
	_, err := a.Analyze(context.Background(), "local:demo",
		[]string{"app.py"},
		map[string]string{"app.py": autogenApp})

	require.ErrorIs(t, err, ErrNoFrameworkDetected)
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, "local:demo",
		[]string{"app.py"},
		map[string]string{"app.py": autogenApp})

	require.ErrorIs(t, err, context.Canceled)
}
