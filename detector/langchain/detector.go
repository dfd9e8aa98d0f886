// Package langchain detects the LangChain framework and extracts its
// chains, models, prompts, tools, and agents.
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalbox/signalbox/detector"
	"github.com/signalbox/signalbox/detector/pyast"
)

// FrameworkName identifies this detector's framework.
const FrameworkName = "langchain"

func init() {
	detector.DefaultRegistry.Register(FrameworkName, func() detector.Detector {
		return New()
	})
}

// constructorTypes maps LangChain constructor identifiers to component types.
var constructorTypes = map[string]detector.ComponentType{
	"LLMChain":                 detector.TypeChain,
	"ConversationChain":        detector.TypeChain,
	"RetrievalQA":              detector.TypeChain,
	"ChatOpenAI":               detector.TypeLLM,
	"OpenAI":                   detector.TypeLLM,
	"PromptTemplate":           detector.TypePrompt,
	"ChatPromptTemplate":       detector.TypePrompt,
	"ConversationBufferMemory": detector.TypeMemory,
	"Tool":                     detector.TypeTool,
}

// defaultModels are the models LangChain wrappers use when none is given.
var defaultModels = map[string]string{
	"ChatOpenAI": "gpt-3.5-turbo",
	"OpenAI":     "text-davinci-003",
}

// Detector detects LangChain usage in a source tree.
type Detector struct {
	base *detector.Base
}

// New creates a LangChain detector with its pattern tables.
func New() *Detector {
	return &Detector{
		base: detector.NewBase(FrameworkName, detector.PatternSet{
			FilePatterns: []detector.FilePattern{
				{Pattern: "**/langchain*.py", Description: "LangChain-named files"},
				{Pattern: "**/chain*.py", Description: "Chain files"},
				{Pattern: "**/agent*.py", Description: "Agent files"},
				{Pattern: "**/prompt*.py", Description: "Prompt files"},
				{Pattern: "**/memory*.py", Description: "Memory files"},
			},
			CodePatterns: []detector.CodePattern{
				{Pattern: `LLMChain\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "LLMChain usage"},
				{Pattern: `ChatOpenAI\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "ChatOpenAI model"},
				{Pattern: `OpenAI\s*\(`, FileTypes: []string{".py"}, Weight: 2.0, Description: "OpenAI model"},
				{Pattern: `PromptTemplate\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "PromptTemplate usage"},
				{Pattern: `ChatPromptTemplate\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "ChatPromptTemplate usage"},
				{Pattern: `ConversationChain\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "ConversationChain usage"},
				{Pattern: `RetrievalQA\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "RetrievalQA chain"},
				{Pattern: `create_.*_agent\s*\(`, FileTypes: []string{".py"}, Weight: 1.5, Description: "Agent creation"},
				{Pattern: `Tool\s*\(`, FileTypes: []string{".py"}, Weight: 1.0, Description: "Tool definition"},
				{Pattern: `ConversationBufferMemory\s*\(`, FileTypes: []string{".py"}, Weight: 1.0, Description: "Memory usage"},
			},
			ImportPatterns: []string{
				"langchain",
				"langchain.llms",
				"langchain.chat_models",
				"langchain.chains",
				"langchain.agents",
				"langchain.prompts",
				"langchain.memory",
				"langchain.tools",
				"langchain.vectorstores",
				"langchain.embeddings",
				"langchain_community",
				"langchain_openai",
			},
			ConfigFiles: []string{
				".env",
				"langchain.yaml",
				"config.yaml",
			},
		}),
	}
}

// Framework returns "langchain".
func (d *Detector) Framework() string { return FrameworkName }

// Detect runs the base pipeline, then the chain-flow extractor, then applies
// LangChain-specific confidence bonuses for LCEL, runnable composition, and
// vector store usage. The score never decreases under the bonuses.
func (d *Detector) Detect(ctx context.Context, filePaths []string, fileContents map[string]string) detector.DetectionResult {
	result := d.base.Detect(ctx, filePaths, fileContents, d)

	if len(result.Components) > 0 {
		result.WorkflowPatterns = d.analyzeChainFlow(result.Components, fileContents)
	}

	for _, content := range fileContents {
		// LCEL pipelines compose runnables with | and invoke/stream.
		if strings.Contains(content, "|") &&
			(strings.Contains(content, "invoke") || strings.Contains(content, "stream")) {
			result.ConfidenceScore += 10
		}
		if strings.Contains(content, "RunnablePassthrough") || strings.Contains(content, "RunnableParallel") {
			result.ConfidenceScore += 15
		}
		for _, vs := range []string{"FAISS", "Chroma", "Pinecone", "Weaviate"} {
			if strings.Contains(content, vs) {
				result.ConfidenceScore += 5
				break
			}
		}
	}

	result.ConfidenceScore = min(100, result.ConfidenceScore)
	result.Confidence = detector.TierFor(result.ConfidenceScore)

	return result
}

// ExtractComponents extracts LangChain components from one file. Structural
// tree-sitter extraction first; regex line scanning when parsing fails.
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
		if c := d.componentFromCall(&calls[i], filePath); c != nil {
			components = append(components, c)
		}
	}
	return components
}

// componentFromCall maps a constructor call to a component, or nil when the
// call is not a known LangChain construct.
func (d *Detector) componentFromCall(call *pyast.Call, filePath string) *detector.Component {
	compType, known := constructorTypes[call.Func]
	if !known {
		// Factory helpers like create_react_agent or initialize_agent.
		if !strings.Contains(strings.ToLower(call.Func), "agent") {
			return nil
		}
		compType = detector.TypeAgent
	}

	comp := &detector.Component{
		Name:       fmt.Sprintf("%s_%d", call.Func, call.Line),
		Type:       compType,
		FilePath:   filePath,
		LineNumber: call.Line,
		Metadata: map[string]any{
			"component_class": call.Func,
		},
	}

	switch compType {
	case detector.TypeLLM:
		d.fillLLMArgs(call, comp)
	case detector.TypePrompt:
		d.fillPromptArgs(call, comp)
	case detector.TypeChain:
		d.fillChainArgs(call, comp)
	}

	return comp
}

// fillLLMArgs reads the model name and temperature from an LLM wrapper call.
func (d *Detector) fillLLMArgs(call *pyast.Call, comp *detector.Component) {
	if m := call.KeywordString("model"); m != "" {
		comp.Model = m
	} else if m := call.KeywordString("model_name"); m != "" {
		comp.Model = m
	} else if def, ok := defaultModels[call.Func]; ok {
		comp.Model = def
	}

	if temp, ok := call.Keywords["temperature"]; ok && temp.Kind == pyast.KindNumber {
		comp.Metadata["temperature"] = temp.Num
	}
}

// fillPromptArgs reads the template text and estimates its token weight.
func (d *Detector) fillPromptArgs(call *pyast.Call, comp *detector.Component) {
	template := call.KeywordString("template")
	if template == "" {
		template, _ = call.StringArg()
	}
	if template != "" {
		comp.Metadata["template"] = template
		comp.EstimatedTokens = d.base.EstimatePromptTokens(template)
	}
}

// fillChainArgs records which llm and prompt identifiers a chain wires up.
func (d *Detector) fillChainArgs(call *pyast.Call, comp *detector.Component) {
	if llm, ok := call.Keywords["llm"]; ok && llm.Kind == pyast.KindIdent {
		comp.Metadata["llm"] = llm.Str
	}
	if prompt, ok := call.Keywords["prompt"]; ok && prompt.Kind == pyast.KindIdent {
		comp.Metadata["prompt"] = prompt.Str
	}
}
