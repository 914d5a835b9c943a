package schema

import "sort"

// embeddingGraph maps an entity name to the entities it embeds through
// object entries. List entries are not edges: list items only exist when
// data provides them.
type embeddingGraph map[string][]string

// AnalyzeEmbedding finds groups of entities that embed each other through
// object entries, using Tarjan's strongly connected components. An entity
// embedding itself directly is reported as a two-element path.
func AnalyzeEmbedding(entities []*Entity) []*EmbeddingCycleError {
	graph := make(embeddingGraph, len(entities))
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name())
		graph[e.Name()] = []string{}
		for _, entry := range e.Entries() {
			if obj, ok := entry.(ObjectEntry); ok {
				graph[e.Name()] = append(graph[e.Name()], obj.EntityName)
			}
		}
	}

	var cycles []*EmbeddingCycleError
	for _, scc := range tarjanSCC(graph, names) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, &EmbeddingCycleError{Path: cyclePath(scc, graph)})
		}
	}
	return cycles
}

func hasSelfLoop(node string, graph embeddingGraph) bool {
	for _, n := range graph[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC visits nodes in the given order so results are deterministic.
func tarjanSCC(graph embeddingGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, known := graph[w]; !known {
				// unresolved reference, reported by Registry.Check
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath walks edges inside the component from its smallest name back to
// the start.
func cyclePath(scc []string, graph embeddingGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	sorted := append([]string(nil), scc...)
	sort.Strings(sorted)
	start := sorted[0]

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, n := range graph[current] {
			if members[n] && (n == start || !visited[n]) {
				next = n
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
