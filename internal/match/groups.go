package match

import "sort"

// Edge records one direct pairwise comparison that passed the edge
// threshold. Groups are only ever assembled from direct edges; an edge
// is never inferred from two others.
type Edge struct {
	A   string  `json:"a"` // smaller item id
	B   string  `json:"b"` // larger item id
	Sim float64 `json:"sim"`
}

// rawGroup is a validated candidate group before it becomes a
// models.DuplicateGroup.
type rawGroup struct {
	members []string // sorted
	minSim  float64  // minimum over all pairs, not just discovery edges
}

// components builds connected components over the passing edges.
// Iteration is id-ordered throughout so output is deterministic.
func components(edges []Edge) [][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}

	ids := make([]string, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := make(map[string]bool, len(ids))
	var comps [][]string
	for _, start := range ids {
		if seen[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		seen[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			neighbors := append([]string(nil), adj[id]...)
			sort.Strings(neighbors)
			for _, nb := range neighbors {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Strings(comp)
		comps = append(comps, comp)
	}
	return comps
}

// splitComponent enforces the all-pairs group floor on one connected
// component. A component whose minimum pairwise similarity is below the
// floor is not accepted as-is: the member with the lowest aggregate
// similarity is peeled off and the remainder is re-clustered, until
// every emitted group passes the floor. This is what stops chains of
// barely-passing edges from merging dissimilar items.
func splitComponent(members []string, sim func(a, b string) float64, floor, edgeThreshold float64) []rawGroup {
	if len(members) < 2 {
		return nil
	}

	minSim := 1.0
	aggregate := make(map[string]float64, len(members))
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			s := sim(members[i], members[j])
			if s < minSim {
				minSim = s
			}
			aggregate[members[i]] += s
			aggregate[members[j]] += s
		}
	}

	if minSim >= floor {
		return []rawGroup{{members: append([]string(nil), members...), minSim: minSim}}
	}

	// Peel the weakest member. Ties peel the lexicographically larger
	// id so the outcome is stable.
	worst := members[0]
	for _, id := range members[1:] {
		if aggregate[id] < aggregate[worst] ||
			(aggregate[id] == aggregate[worst] && id > worst) {
			worst = id
		}
	}

	remaining := make([]string, 0, len(members)-1)
	for _, id := range members {
		if id != worst {
			remaining = append(remaining, id)
		}
	}

	// Removing a member can split the component; rebuild from the
	// surviving direct edges before validating again.
	var edges []Edge
	for i := 0; i < len(remaining); i++ {
		for j := i + 1; j < len(remaining); j++ {
			if s := sim(remaining[i], remaining[j]); s >= edgeThreshold {
				edges = append(edges, Edge{A: remaining[i], B: remaining[j], Sim: s})
			}
		}
	}

	var groups []rawGroup
	for _, comp := range components(edges) {
		groups = append(groups, splitComponent(comp, sim, floor, edgeThreshold)...)
	}
	return groups
}
