package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAgentSource = `import autogen

assistant = autogen.AssistantAgent(
    name="triage_bot",
    llm_config={"model": "gpt-4"},
)
user = autogen.UserProxyAgent(name="user")
user.initiate_chat(assistant, message="start")
`

// execute runs the CLI with the given args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig isolates the test from any user or project config.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfgPath := filepath.Join(dir, "test.yaml")
	cfg := `server:
  addr: ":0"
report:
  output_dir: ` + filepath.Join(dir, "reports") + `
store:
  path: ` + filepath.Join(dir, "runs.db") + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func writeFixtureTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(testAgentSource), 0o644))
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "signalbox version")
}

func TestModelsCommand(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)

	assert.Contains(t, out, "gpt-4")
	assert.Contains(t, out, "claude-3-haiku")
	assert.Contains(t, out, "PROVIDER")
}

func TestAnalyzeJSON(t *testing.T) {
	cfgPath := writeTestConfig(t)
	tree := writeFixtureTree(t)

	out, err := execute(t, "analyze", tree, "--format", "json", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, `"framework": "autogen"`)
	assert.Contains(t, out, "triage_bot")
	assert.Contains(t, out, "Framework:      autogen")
}

func TestAnalyzeHTMLToFile(t *testing.T) {
	cfgPath := writeTestConfig(t)
	tree := writeFixtureTree(t)

	outPath := filepath.Join(t.TempDir(), "report.html")
	out, err := execute(t, "analyze", tree, "--config", cfgPath, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Report saved to")

	html, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "AUTOGEN")
}

func TestAnalyzeNoFramework(t *testing.T) {
	cfgPath := writeTestConfig(t)
	tree := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tree, "main.py"), []byte("print('hi')\n"), 0o644))

	_, err := execute(t, "analyze", tree, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no supported framework detected")
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	cfgPath := writeTestConfig(t)
	tree := writeFixtureTree(t)

	_, err := execute(t, "analyze", tree, "--format", "pdf", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}

func TestRunsLifecycle(t *testing.T) {
	cfgPath := writeTestConfig(t)
	tree := writeFixtureTree(t)

	out, err := execute(t, "analyze", tree, "--format", "json", "--save", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "saved")

	out, err = execute(t, "runs", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "autogen")
	assert.Contains(t, out, "run_")

	// Pull the run ID out of the listing to exercise show and delete.
	var runID string
	for _, field := range strings.Fields(out) {
		if strings.HasPrefix(field, "run_") {
			runID = field
			break
		}
	}
	require.NotEmpty(t, runID)

	out, err = execute(t, "runs", "show", runID, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Framework:      autogen")

	out, err = execute(t, "runs", "delete", runID, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = execute(t, "runs", "delete", runID, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunsListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "runs", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored runs.")
}
