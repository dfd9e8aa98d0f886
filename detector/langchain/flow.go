package langchain

import (
	"regexp"
	"sort"
	"strings"

	"github.com/signalbox/signalbox/detector"
)

// runPatterns match a known component being executed.
var runPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\.run\s*\(`),
	regexp.MustCompile(`(\w+)\.invoke\s*\(`),
	regexp.MustCompile(`(\w+)\.call\s*\(`),
	regexp.MustCompile(`(\w+)\.predict\s*\(`),
}

// sequentialRe captures the chains list of a SequentialChain.
var sequentialRe = regexp.MustCompile(`SequentialChain\s*\([^)]*chains\s*=\s*\[([^\]]+)\]`)

// analyzeChainFlow records which chains are executed and which run inside a
// recorded sequential flow.
func (d *Detector) analyzeChainFlow(components []*detector.Component, fileContents map[string]string) []detector.WorkflowPattern {
	var flows []detector.WorkflowPattern

	byName := make(map[string]*detector.Component, len(components))
	for _, c := range components {
		byName[c.Name] = c
	}

	paths := make([]string, 0, len(fileContents))
	for p := range fileContents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		content := fileContents[path]

		for _, re := range runPatterns {
			for _, m := range re.FindAllStringSubmatch(content, -1) {
				comp, ok := byName[m[1]]
				if !ok {
					continue
				}
				flows = append(flows, detector.WorkflowPattern{
					Type:          "execution",
					Component:     comp.Name,
					ComponentType: comp.Type,
					File:          path,
				})
			}
		}

		for _, m := range sequentialRe.FindAllStringSubmatch(content, -1) {
			names := strings.Split(m[1], ",")
			for i := range names {
				names[i] = strings.TrimSpace(names[i])
			}
			flows = append(flows, detector.WorkflowPattern{
				Type:   "sequential",
				Chains: names,
				File:   path,
			})
		}
	}

	return flows
}
