package autogen

import (
	"regexp"
	"sort"

	"github.com/signalbox/signalbox/detector"
)

var initiateChatRe = regexp.MustCompile(`(\w+)\.initiate_chat\s*\(\s*(\w+)`)

// analyzeConversationFlow records who chats with whom: initiate_chat calls
// become directed edges, group chats become participant-count records.
func (d *Detector) analyzeConversationFlow(components []*detector.Component, fileContents map[string]string) []detector.WorkflowPattern {
	var flows []detector.WorkflowPattern

	paths := make([]string, 0, len(fileContents))
	for p := range fileContents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, m := range initiateChatRe.FindAllStringSubmatch(fileContents[path], -1) {
			flows = append(flows, detector.WorkflowPattern{
				Type: "chat",
				From: m[1],
				To:   m[2],
				File: path,
			})
		}
	}

	for _, c := range components {
		if c.Type != detector.TypeGroupChat {
			continue
		}
		count, _ := c.Metadata["agents_count"].(int)
		flows = append(flows, detector.WorkflowPattern{
			Type:        "groupchat",
			AgentsCount: count,
			File:        c.FilePath,
		})
	}

	return flows
}
