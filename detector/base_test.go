package detector

import (
	"context"
	"strings"
	"testing"
)

func testPatterns() PatternSet {
	return PatternSet{
		FilePatterns: []FilePattern{
			{Pattern: "**/bot*.py", Description: "bot files"},
		},
		CodePatterns: []CodePattern{
			{Pattern: `Bot\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "Bot constructor"},
			{Pattern: `reply\s*\(`, FileTypes: []string{".py"}, Weight: 1.0, Description: "reply call"},
		},
		ImportPatterns: []string{"botkit", "botkit.agents"},
		ConfigFiles:    []string{"botkit.yaml"},
	}
}

// countingExtractor records which files it was handed and emits one
// component per occurrence of "Bot(".
type countingExtractor struct {
	seen []string
}

func (e *countingExtractor) ExtractComponents(_ context.Context, content, filePath string) []*Component {
	e.seen = append(e.seen, filePath)

	var comps []*Component
	for i := 0; i < strings.Count(content, "Bot("); i++ {
		comps = append(comps, &Component{Name: "bot", Type: TypeAgent, FilePath: filePath})
	}
	return comps
}

func TestBaseDetect_Pipeline(t *testing.T) {
	b := NewBase("botkit", testPatterns())
	ext := &countingExtractor{}

	paths := []string{"src/bot_main.py", "src/helpers.py", "botkit.yaml", "README.md"}
	contents := map[string]string{
		"src/helpers.py":  "import botkit\n\ndef make():\n    return Bot(name='x')\n",
		"src/bot_main.py": "from botkit.agents import Bot\n\nb = Bot()\nb.reply('hi')\n",
	}

	result := b.Detect(context.Background(), paths, contents, ext)

	if result.Framework != "botkit" {
		t.Errorf("framework = %q", result.Framework)
	}
	if len(result.FilePatternsMatched) != 1 {
		t.Errorf("file patterns = %v", result.FilePatternsMatched)
	}
	if len(result.ConfigFiles) != 1 || result.ConfigFiles[0] != "botkit.yaml" {
		t.Errorf("config files = %v", result.ConfigFiles)
	}
	if len(result.ImportsFound) != 2 {
		t.Errorf("imports = %v", result.ImportsFound)
	}
	if len(result.CodePatternsMatched) != 2 {
		t.Errorf("code patterns = %v", result.CodePatternsMatched)
	}
	if len(result.Components) != 2 {
		t.Errorf("components = %d, want 2", len(result.Components))
	}

	// 40 config + 35 imports + 10 code + 1 file.
	if result.ConfidenceScore != 86 {
		t.Errorf("score = %v, want 86", result.ConfidenceScore)
	}
	if result.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want high", result.Confidence)
	}

	// Files are visited in sorted path order.
	if len(ext.seen) != 2 || ext.seen[0] != "src/bot_main.py" || ext.seen[1] != "src/helpers.py" {
		t.Errorf("extractor visit order = %v", ext.seen)
	}
}

func TestBaseDetect_Empty(t *testing.T) {
	b := NewBase("botkit", testPatterns())

	result := b.Detect(context.Background(), nil, nil, nil)

	if result.ConfidenceScore != 0 {
		t.Errorf("score = %v, want 0", result.ConfidenceScore)
	}
	if result.Confidence != ConfidenceNone {
		t.Errorf("confidence = %q, want none", result.Confidence)
	}
	if len(result.Components) != 0 {
		t.Errorf("components = %d, want 0", len(result.Components))
	}
}

func TestBaseDetect_ImportsOnlyPython(t *testing.T) {
	b := NewBase("botkit", testPatterns())

	result := b.Detect(context.Background(),
		[]string{"notes.txt"},
		map[string]string{"notes.txt": "import botkit\nBot()\n"}, nil)

	if len(result.ImportsFound) != 0 {
		t.Errorf("imports found in non-Python file: %v", result.ImportsFound)
	}
	if len(result.CodePatternsMatched) != 0 {
		t.Errorf("code patterns matched outside scoped extension: %v", result.CodePatternsMatched)
	}
}

func TestBaseDetect_ConfigInSubdirectory(t *testing.T) {
	b := NewBase("botkit", testPatterns())

	result := b.Detect(context.Background(), []string{"deploy/botkit.yaml"}, nil, nil)

	if len(result.ConfigFiles) != 1 {
		t.Errorf("config files = %v", result.ConfigFiles)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupe[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDetectionResult_Merge(t *testing.T) {
	a := DetectionResult{
		Framework:       "botkit",
		Confidence:      ConfidenceLow,
		ConfidenceScore: 15,
		Components:      []*Component{{Name: "one"}},
		ImportsFound:    []string{"botkit"},
	}
	b := DetectionResult{
		Confidence:      ConfidenceHigh,
		ConfidenceScore: 80,
		Components:      []*Component{{Name: "two"}},
		ConfigFiles:     []string{"botkit.yaml"},
	}

	a.Merge(b)

	if len(a.Components) != 2 {
		t.Errorf("components = %d, want 2", len(a.Components))
	}
	if a.ConfidenceScore != 80 || a.Confidence != ConfidenceHigh {
		t.Errorf("confidence after merge = %v/%q", a.ConfidenceScore, a.Confidence)
	}

	// Merging a weaker result never lowers confidence.
	a.Merge(DetectionResult{Confidence: ConfidenceNone, ConfidenceScore: 0})
	if a.ConfidenceScore != 80 {
		t.Errorf("confidence dropped to %v after weaker merge", a.ConfidenceScore)
	}
}

func TestComponent_MetaString(t *testing.T) {
	c := &Component{Metadata: map[string]any{"model": "gpt-4", "count": 3}}

	if got := c.MetaString("model"); got != "gpt-4" {
		t.Errorf("MetaString(model) = %q", got)
	}
	if got := c.MetaString("count"); got != "" {
		t.Errorf("MetaString(count) = %q, want empty for non-string", got)
	}
	if got := (&Component{}).MetaString("model"); got != "" {
		t.Errorf("MetaString on nil metadata = %q", got)
	}
}
