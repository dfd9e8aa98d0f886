package langchain

import (
	"regexp"
	"strings"

	"github.com/signalbox/signalbox/detector"
)

// modelScanLimit bounds the forward scan for an LLM's model argument.
const modelScanLimit = 5

var modelKwRe = regexp.MustCompile(`model(?:_name)?\s*=\s*["'](.+?)["']`)

// fallbackPatterns match `name = Constructor(` assignments line by line.
var fallbackPatterns = []struct {
	re       *regexp.Regexp
	compType detector.ComponentType
	class    string
}{
	{regexp.MustCompile(`(\w+)\s*=\s*LLMChain\s*\(`), detector.TypeChain, "LLMChain"},
	{regexp.MustCompile(`(\w+)\s*=\s*ChatOpenAI\s*\(`), detector.TypeLLM, "ChatOpenAI"},
	{regexp.MustCompile(`(\w+)\s*=\s*OpenAI\s*\(`), detector.TypeLLM, "OpenAI"},
	{regexp.MustCompile(`(\w+)\s*=\s*PromptTemplate\s*\(`), detector.TypePrompt, "PromptTemplate"},
	{regexp.MustCompile(`(\w+)\s*=\s*ConversationChain\s*\(`), detector.TypeChain, "ConversationChain"},
	{regexp.MustCompile(`(\w+)\s*=\s*RetrievalQA\s*\(`), detector.TypeChain, "RetrievalQA"},
}

// fallbackScan is the pattern-based best-effort extractor used when
// structural parsing fails.
func (d *Detector) fallbackScan(content, filePath string) []*detector.Component {
	var components []*detector.Component
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		for _, fp := range fallbackPatterns {
			m := fp.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			comp := &detector.Component{
				Name:       m[1],
				Type:       fp.compType,
				FilePath:   filePath,
				LineNumber: i + 1,
				Metadata: map[string]any{
					"component_class": fp.class,
				},
			}

			if fp.compType == detector.TypeLLM {
				for j := i; j < min(i+modelScanLimit, len(lines)); j++ {
					if mm := modelKwRe.FindStringSubmatch(lines[j]); mm != nil {
						comp.Model = mm[1]
						break
					}
				}
			}

			components = append(components, comp)
		}
	}

	return components
}
