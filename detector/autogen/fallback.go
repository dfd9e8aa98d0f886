package autogen

import (
	"regexp"
	"strings"

	"github.com/signalbox/signalbox/detector"
)

// forwardScanLimit bounds how far past a constructor line the fallback
// scanner looks for the system_message keyword argument.
const forwardScanLimit = 20

var (
	agentAssignRe   = regexp.MustCompile(`(\w+)\s*=\s*(AssistantAgent|UserProxyAgent|ConversableAgent)\s*\(`)
	systemMessageRe = regexp.MustCompile(`system_message\s*=\s*["'](.+?)["']`)
)

// fallbackScan is the pattern-based best-effort extractor used when
// structural parsing fails: match `name = Constructor(` assignments and scan
// forward a bounded number of lines for the system message.
func (d *Detector) fallbackScan(content, filePath string) []*detector.Component {
	var components []*detector.Component
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		m := agentAssignRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		agentName, agentType := m[1], m[2]

		var systemMessage string
		for j := i; j < min(i+forwardScanLimit, len(lines)); j++ {
			if !strings.Contains(lines[j], "system_message") {
				continue
			}
			if mm := systemMessageRe.FindStringSubmatch(lines[j]); mm != nil {
				systemMessage = mm[1]
			}
			break
		}

		components = append(components, &detector.Component{
			Name:            agentName,
			Type:            detector.TypeAgent,
			FilePath:        filePath,
			LineNumber:      i + 1,
			EstimatedTokens: d.base.EstimatePromptTokens(systemMessage),
			Metadata: map[string]any{
				"agent_type":     agentType,
				"system_message": systemMessage,
			},
		})
	}

	return components
}
