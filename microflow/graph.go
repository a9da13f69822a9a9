package microflow

import (
	"fmt"
	"sort"
)

// Levels groups the flow nodes by distance from the start event using
// Kahn's algorithm. It fails on unknown edge ends, cycles, nodes that are
// unreachable from the start, and fan-in.
func (t *Template) Levels() ([][]string, error) {
	nodes := t.FlowNodes()
	kinds := make(map[string]NodeKind, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)

	for _, n := range nodes {
		if _, dup := kinds[n.ID]; dup {
			return nil, fmt.Errorf("microflow: duplicate node %q", n.ID)
		}
		kinds[n.ID] = n.Kind
		inDegree[n.ID] = 0
	}

	for _, e := range t.Edges {
		if _, ok := kinds[e.From]; !ok {
			return nil, fmt.Errorf("microflow: edge references unknown node %q", e.From)
		}
		if _, ok := kinds[e.To]; !ok {
			return nil, fmt.Errorf("microflow: edge references unknown node %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []string
	for id, deg := range inDegree {
		switch {
		case deg > 1:
			return nil, fmt.Errorf("microflow: node %q has %d inbound flows", id, deg)
		case deg == 0 && kinds[id] != NodeStart:
			return nil, fmt.Errorf("microflow: node %q is not reachable from the start event", id)
		case deg == 0:
			queue = append(queue, id)
		}
	}
	if len(queue) != 1 {
		return nil, fmt.Errorf("microflow: expected one start event, found %d", len(queue))
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		sort.Strings(queue)
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, id := range queue {
			for _, dep := range dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(nodes) {
		return nil, fmt.Errorf("microflow: cycle detected, processed %d of %d nodes", visited, len(nodes))
	}
	return levels, nil
}

// Validate checks the template topology: an acyclic graph rooted at the
// start event without fan-in, where only the branch has two outbound flows,
// only branch flows carry a case, and end events have none.
func (t *Template) Validate() error {
	if _, err := t.Levels(); err != nil {
		return err
	}
	kinds := make(map[string]NodeKind)
	for _, n := range t.FlowNodes() {
		kinds[n.ID] = n.Kind
	}
	outbound := make(map[string][]Edge)
	for _, e := range t.Edges {
		outbound[e.From] = append(outbound[e.From], e)
	}
	for id, kind := range kinds {
		out := outbound[id]
		switch kind {
		case NodeEnd, NodeErrorEnd:
			if len(out) != 0 {
				return fmt.Errorf("microflow: end event %q has outbound flows", id)
			}
		case NodeBranch:
			if len(out) != 2 || !hasCases(out, "true", "false") {
				return fmt.Errorf("microflow: branch %q needs one true and one false flow", id)
			}
		default:
			if len(out) != 1 {
				return fmt.Errorf("microflow: node %q has %d outbound flows, want 1", id, len(out))
			}
			if out[0].Case != "" {
				return fmt.Errorf("microflow: flow from %q carries a case value", id)
			}
		}
	}
	return nil
}

func hasCases(edges []Edge, want ...string) bool {
	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		seen[e.Case] = true
	}
	for _, w := range want {
		if !seen[w] {
			return false
		}
	}
	return true
}
