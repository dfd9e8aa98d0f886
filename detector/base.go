package detector

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/signalbox/signalbox/pricing"
)

// Detector identifies one framework's presence in a source tree and
// extracts its cost-incurring components.
type Detector interface {
	// Framework returns the framework name this detector handles.
	Framework() string

	// Detect scores the evidence for this framework across the given files
	// and extracts structured components. It is a pure function of its
	// inputs and never fails: sparse or malformed input yields a low-score
	// result, not an error.
	Detect(ctx context.Context, filePaths []string, fileContents map[string]string) DetectionResult
}

// ComponentExtractor extracts framework-specific components from one file.
// The base pipeline only knows how to score evidence; parsing components is
// the concrete detector's job.
type ComponentExtractor interface {
	ExtractComponents(ctx context.Context, content, filePath string) []*Component
}

// PatternSet is the evidence configuration a concrete detector supplies at
// construction: file globs, extension-scoped source regexes, import module
// names, and config file names.
type PatternSet struct {
	FilePatterns   []FilePattern
	CodePatterns   []CodePattern
	ImportPatterns []string
	ConfigFiles    []string
}

// Base runs the uniform detection pipeline shared by all detectors.
// Stateless per call: each Detect invocation is a pure function of
// (filePaths, fileContents).
type Base struct {
	framework string
	patterns  PatternSet
	importRes []*regexp.Regexp
	estimator *pricing.Calculator
}

// NewBase creates the shared pipeline for a framework's pattern set.
func NewBase(framework string, patterns PatternSet) *Base {
	for i := range patterns.CodePatterns {
		patterns.CodePatterns[i].compile()
	}

	// Precompile import statement regexes: both `import X` and
	// `from X import Y` forms, anchored to line starts.
	importRes := make([]*regexp.Regexp, len(patterns.ImportPatterns))
	for i, imp := range patterns.ImportPatterns {
		quoted := regexp.QuoteMeta(imp)
		importRes[i] = regexp.MustCompile(
			fmt.Sprintf(`(?m)(?:^import\s+%s|^from\s+%s\s+import)`, quoted, quoted))
	}

	return &Base{
		framework: framework,
		patterns:  patterns,
		importRes: importRes,
		estimator: pricing.New(),
	}
}

// Framework returns the framework name.
func (b *Base) Framework() string { return b.framework }

// Detect runs the shared pipeline: glob matching, config-file checks,
// per-file import and code-pattern searches, component extraction via the
// supplied extractor, deduplication, and confidence scoring.
func (b *Base) Detect(ctx context.Context, filePaths []string, fileContents map[string]string, extractor ComponentExtractor) DetectionResult {
	result := DetectionResult{
		Framework:  b.framework,
		Confidence: ConfidenceNone,
	}

	result.FilePatternsMatched = b.matchFilePatterns(filePaths)
	result.ConfigFiles = b.checkConfigFiles(filePaths)

	// Walk files in sorted order so component ordering is stable.
	paths := make([]string, 0, len(fileContents))
	for p := range fileContents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		content := fileContents[filePath]

		result.ImportsFound = append(result.ImportsFound, b.findImports(content, filePath)...)
		result.CodePatternsMatched = append(result.CodePatternsMatched, b.matchCodePatterns(content, filePath)...)

		if extractor != nil {
			result.Components = append(result.Components, extractor.ExtractComponents(ctx, content, filePath)...)
		}
	}

	result.ImportsFound = dedupe(result.ImportsFound)
	result.CodePatternsMatched = dedupe(result.CodePatternsMatched)

	result.ConfidenceScore, result.Confidence = ScoreConfidence(
		len(result.FilePatternsMatched),
		len(result.CodePatternsMatched),
		len(result.ImportsFound),
		len(result.ConfigFiles),
	)

	return result
}

// matchFilePatterns matches the file glob patterns against every path.
func (b *Base) matchFilePatterns(filePaths []string) []string {
	var matched []string
	for _, filePath := range filePaths {
		for _, fp := range b.patterns.FilePatterns {
			ok, err := doublestar.Match(fp.Pattern, filePath)
			if err != nil {
				continue
			}
			if !ok {
				// Also try matching against the basename so patterns like
				// "agent*.py" hit files in subdirectories.
				ok, _ = doublestar.Match(fp.Pattern, path.Base(filePath))
			}
			if ok {
				matched = append(matched, fp.label())
			}
		}
	}
	return dedupe(matched)
}

// checkConfigFiles matches config file names against path basenames.
func (b *Base) checkConfigFiles(filePaths []string) []string {
	var found []string
	for _, filePath := range filePaths {
		base := path.Base(filePath)
		for _, cf := range b.patterns.ConfigFiles {
			if base == cf {
				found = append(found, cf)
				continue
			}
			if ok, _ := doublestar.Match("**/"+cf, filePath); ok {
				found = append(found, cf)
			}
		}
	}
	return dedupe(found)
}

// findImports searches a Python file for module-level imports of the
// framework's modules.
func (b *Base) findImports(content, filePath string) []string {
	if !strings.HasSuffix(filePath, ".py") {
		return nil
	}

	var imports []string
	for i, re := range b.importRes {
		if re.MatchString(content) {
			imports = append(imports, b.patterns.ImportPatterns[i])
		}
	}
	return imports
}

// matchCodePatterns searches content for each regex pattern scoped to the
// file's extension.
func (b *Base) matchCodePatterns(content, filePath string) []string {
	ext := path.Ext(filePath)

	var matched []string
	for i := range b.patterns.CodePatterns {
		cp := &b.patterns.CodePatterns[i]
		if len(cp.FileTypes) > 0 && !containsString(cp.FileTypes, ext) {
			continue
		}
		if cp.re.MatchString(content) {
			matched = append(matched, cp.label())
		}
	}
	return matched
}

// EstimatePromptTokens estimates the token weight of extracted descriptive
// text (system prompts, templates), treating it as dense prompt input.
func (b *Base) EstimatePromptTokens(text string) int {
	if text == "" {
		return 0
	}
	return b.estimator.EstimateTokens(text, "system_prompt").InputTokens
}

// dedupe removes duplicates preserving first-occurrence order.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
