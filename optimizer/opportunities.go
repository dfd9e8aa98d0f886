package optimizer

import "github.com/signalbox/signalbox/detector"

// CachePotential grades how cacheable a component's outputs are.
type CachePotential string

const (
	CacheHigh   CachePotential = "high"
	CacheMedium CachePotential = "medium"
	CacheLow    CachePotential = "low"
)

// ParallelOpportunity is a group of components that could run concurrently.
type ParallelOpportunity struct {
	Kind                 string // parallel_agents or parallel_chains
	Components           []string
	EstimatedTimeSavings float64
}

// CacheOpportunity rates one component's cacheability with an expected
// hit rate for the blended-cost model.
type CacheOpportunity struct {
	Component        string
	ComponentType    detector.ComponentType
	TaskType         string
	Potential        CachePotential
	EstimatedHitRate float64
}

// IdentifyParallelOpportunities finds components that do not depend on each
// other and could execute concurrently. Agents are grouped by the absence of
// outgoing chat edges; chains qualify when they sit outside every recorded
// sequential flow. These are time savings, not cost savings.
func (e *Engine) IdentifyParallelOpportunities(components []*detector.Component, patterns []detector.WorkflowPattern) []ParallelOpportunity {
	var opportunities []ParallelOpportunity

	var agents []*detector.Component
	var chains []*detector.Component
	for _, c := range components {
		switch c.Type {
		case detector.TypeAgent:
			agents = append(agents, c)
		case detector.TypeChain:
			chains = append(chains, c)
		}
	}

	if len(agents) > 1 {
		// Outgoing chat edges per agent.
		calls := map[string][]string{}
		for _, p := range patterns {
			if p.Type == "chat" {
				calls[p.From] = append(calls[p.From], p.To)
			}
		}

		// First-fit grouping of agents with no outgoing calls: an agent
		// joins a group unless someone already in it calls the agent.
		var groups [][]*detector.Component
		for _, agent := range agents {
			if len(calls[agent.Name]) > 0 {
				continue
			}
			placed := false
			for gi, group := range groups {
				conflict := false
				for _, member := range group {
					if containsName(calls[member.Name], agent.Name) {
						conflict = true
						break
					}
				}
				if !conflict {
					groups[gi] = append(group, agent)
					placed = true
					break
				}
			}
			if !placed {
				groups = append(groups, []*detector.Component{agent})
			}
		}

		for _, group := range groups {
			if len(group) > 1 {
				names := make([]string, len(group))
				for i, a := range group {
					names[i] = a.Name
				}
				opportunities = append(opportunities, ParallelOpportunity{
					Kind:                 "parallel_agents",
					Components:           names,
					EstimatedTimeSavings: 0.3,
				})
			}
		}
	}

	if len(chains) > 1 {
		sequential := map[string]bool{}
		for _, p := range patterns {
			if p.Type == "sequential" {
				for _, name := range p.Chains {
					sequential[name] = true
				}
			}
		}

		var independent []string
		for _, c := range chains {
			if !sequential[c.Name] {
				independent = append(independent, c.Name)
			}
		}

		if len(independent) > 1 {
			opportunities = append(opportunities, ParallelOpportunity{
				Kind:                 "parallel_chains",
				Components:           independent,
				EstimatedTimeSavings: 0.4,
			})
		}
	}

	return opportunities
}

// IdentifyCacheOpportunities rates each component's cache potential from its
// task classification. Repetitive tasks (classification, validation,
// formatting) cache well; open-ended generation barely caches at all.
func (e *Engine) IdentifyCacheOpportunities(components []*detector.Component) []CacheOpportunity {
	var opportunities []CacheOpportunity

	for _, c := range components {
		taskType := e.ClassifyTask(c)

		var potential CachePotential
		var hitRate float64
		switch taskType {
		case "classification", "validation", "formatting":
			potential, hitRate = CacheHigh, 0.3
		case "extraction", "qa":
			potential, hitRate = CacheMedium, 0.15
		case "generation", "analysis":
			potential, hitRate = CacheLow, 0.05
		default:
			continue
		}

		opportunities = append(opportunities, CacheOpportunity{
			Component:        c.Name,
			ComponentType:    c.Type,
			TaskType:         taskType,
			Potential:        potential,
			EstimatedHitRate: hitRate,
		})
	}

	return opportunities
}

func containsName(names []string, s string) bool {
	for _, n := range names {
		if n == s {
			return true
		}
	}
	return false
}
