// Package pipeline orders and executes the build stages.
package pipeline

import (
	"fmt"
	"sort"
)

// StageName identifies a build stage.
type StageName string

const (
	StageClone    StageName = "clone"
	StageDiscover StageName = "discover"
	StageImports  StageName = "imports"
	StageRender   StageName = "render"
	StageVerify   StageName = "verify"
)

// ExecutionPlan is a deterministic stage ordering.
type ExecutionPlan struct {
	Order []StageName
	Graph map[StageName][]StageName // stage -> its dependencies
}

// BuildExecutionPlan topologically sorts stages by their declared
// dependencies. Ties break alphabetically so plans are stable. Unknown
// dependencies and cycles are errors.
func BuildExecutionPlan(stages []Stage) (*ExecutionPlan, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("no stages to plan")
	}

	byName := make(map[StageName]Stage, len(stages))
	graph := make(map[StageName][]StageName, len(stages))
	for _, st := range stages {
		if _, dup := byName[st.Name()]; dup {
			return nil, fmt.Errorf("duplicate stage %q", st.Name())
		}
		byName[st.Name()] = st
		graph[st.Name()] = st.Dependencies()
	}

	indegree := make(map[StageName]int, len(stages))
	dependents := make(map[StageName][]StageName)
	for name, deps := range graph {
		for _, dep := range deps {
			if _, known := byName[dep]; !known {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []StageName
	for name := range byName {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var order []StageName
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(order) != len(stages) {
		return nil, fmt.Errorf("stage dependency cycle detected")
	}

	return &ExecutionPlan{Order: order, Graph: graph}, nil
}
