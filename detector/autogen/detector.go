// Package autogen detects the Microsoft AutoGen multi-agent framework and
// extracts its agents, group chats, and conversation flow.
package autogen

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/detector/pyast"
)

// FrameworkName identifies this detector's framework.
const FrameworkName = "autogen"

func init() {
	detector.DefaultRegistry.Register(FrameworkName, func() detector.Detector {
		return New()
	})
}

// agentConstructors are the call identifiers that create AutoGen agents.
var agentConstructors = map[string]bool{
	"AssistantAgent":   true,
	"UserProxyAgent":   true,
	"ConversableAgent": true,
}

// Detector detects AutoGen usage in a source tree.
type Detector struct {
	base *detector.Base
}

// New creates an AutoGen detector with its pattern tables.
func New() *Detector {
	return &Detector{
		base: detector.NewBase(FrameworkName, detector.PatternSet{
			FilePatterns: []detector.FilePattern{
				{Pattern: "**/autogen*.py", Description: "AutoGen-named files"},
				{Pattern: "**/agent*.py", Description: "Agent files"},
				{Pattern: "**/groupchat*.py", Description: "Group chat files"},
			},
			CodePatterns: []detector.CodePattern{
				{Pattern: `AssistantAgent\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "AssistantAgent initialization"},
				{Pattern: `UserProxyAgent\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "UserProxyAgent initialization"},
				{Pattern: `GroupChat\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "GroupChat usage"},
				{Pattern: `GroupChatManager\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "GroupChatManager usage"},
				{Pattern: `initiate_chat\s*\(`, FileTypes: []string{".py"}, Weight: 1.0, Description: "Chat initiation"},
				{Pattern: `register_reply\s*\(`, FileTypes: []string{".py"}, Weight: 1.0, Description: "Reply registration"},
				{Pattern: `ConversableAgent\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "ConversableAgent usage"},
			},
			ImportPatterns: []string{
				"autogen",
				"autogen.agentchat",
				"autogen.oai",
				"ag2",
			},
			ConfigFiles: []string{
				"OAI_CONFIG_LIST",
				".env",
				"config_list.json",
			},
		}),
	}
}

// Framework returns "autogen".
func (d *Detector) Framework() string { return FrameworkName }

// Detect runs the base pipeline, then the conversation-flow extractor, then
// applies AutoGen-specific confidence bonuses for secondary signals. The
// score is monotonically non-decreasing under the bonuses and the tier is
// recomputed with the standard thresholds.
func (d *Detector) Detect(ctx context.Context, filePaths []string, fileContents map[string]string) detector.DetectionResult {
	result := d.base.Detect(ctx, filePaths, fileContents, d)

	if len(result.Components) > 0 {
		result.WorkflowPatterns = d.analyzeConversationFlow(result.Components, fileContents)
	}

	for _, content := range fileContents {
		// A config_list naming OpenAI models is a strong AutoGen marker.
		if strings.Contains(content, "config_list") &&
			(strings.Contains(content, "gpt-4") || strings.Contains(content, "gpt-3")) {
			result.ConfidenceScore += 10
		}
		// Termination keyword plus chat initiation is the canonical
		// AutoGen conversation shape.
		if strings.Contains(content, "TERMINATE") && strings.Contains(content, "initiate_chat") {
			result.ConfidenceScore += 5
		}
	}

	result.ConfidenceScore = min(100, result.ConfidenceScore)
	result.Confidence = detector.TierFor(result.ConfidenceScore)

	return result
}

// ExtractComponents extracts AutoGen agents and group chats from one file.
// Structural tree-sitter extraction first; regex line scanning when the
// source fails to parse.
func (d *Detector) ExtractComponents(ctx context.Context, content, filePath string) []*detector.Component {
	if !strings.HasSuffix(filePath, ".py") {
		return nil
	}

	calls, err := pyast.ParseCalls(ctx, content)
	if err != nil {
		return d.fallbackScan(content, filePath)
	}

	var components []*detector.Component
	for i := range calls {
		call := &calls[i]
		switch {
		case agentConstructors[call.Func]:
			components = append(components, d.agentFromCall(call, filePath))
		case call.Func == "GroupChat":
			components = append(components, d.groupChatFromCall(call, filePath))
		}
	}
	return components
}

// agentFromCall builds an agent component from a constructor call.
func (d *Detector) agentFromCall(call *pyast.Call, filePath string) *detector.Component {
	name := call.KeywordString("name")
	if name == "" {
		name, _ = call.StringArg()
	}
	if name == "" {
		name = fmt.Sprintf("%s_%d", call.Func, call.Line)
	}

	systemMessage := call.KeywordString("system_message")

	var model string
	llmConfig := map[string]any{}
	if cfg, ok := call.Keywords["llm_config"]; ok && cfg.Kind == pyast.KindDict {
		for key, v := range cfg.Dict {
			switch v.Kind {
			case pyast.KindString:
				llmConfig[key] = v.Str
			case pyast.KindNumber:
				llmConfig[key] = v.Num
			case pyast.KindList:
				// A model list means fallback models; take the first.
				if key == "model" {
					for _, elt := range v.List {
						if elt.Kind == pyast.KindString {
							llmConfig[key] = elt.Str
							break
						}
					}
				}
			}
		}
		if m, ok := llmConfig["model"].(string); ok {
			model = m
		}
	}

	return &detector.Component{
		Name:            name,
		Type:            detector.TypeAgent,
		FilePath:        filePath,
		LineNumber:      call.Line,
		Model:           model,
		EstimatedTokens: d.base.EstimatePromptTokens(systemMessage),
		Metadata: map[string]any{
			"agent_type":     call.Func,
			"system_message": systemMessage,
			"llm_config":     llmConfig,
		},
	}
}

// groupChatFromCall builds a groupchat component recording participant count.
func (d *Detector) groupChatFromCall(call *pyast.Call, filePath string) *detector.Component {
	agentsCount := 0
	if agents, ok := call.Keywords["agents"]; ok && agents.Kind == pyast.KindList {
		agentsCount = len(agents.List)
	}

	return &detector.Component{
		Name:       fmt.Sprintf("GroupChat_%d", call.Line),
		Type:       detector.TypeGroupChat,
		FilePath:   filePath,
		LineNumber: call.Line,
		Metadata: map[string]any{
			"agents_count": agentsCount,
		},
	}
}
