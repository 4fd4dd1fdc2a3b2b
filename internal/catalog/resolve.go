package catalog

import (
	"sort"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// ResolveRequiredServers returns the servers that the given tools depend
// on, in the order they appear in servers. A tool without a dependency
// contributes nothing, and a dependency that names no server in servers is
// ignored here; Check reports it as an integrity issue.
func ResolveRequiredServers(tools []domain.Tool, servers []domain.Server) []domain.Server {
	wanted := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t.DependsOnServer != "" {
			wanted[t.DependsOnServer] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var out []domain.Server
	seen := make(map[string]struct{}, len(wanted))
	for _, s := range servers {
		if _, ok := wanted[s.URN]; !ok {
			continue
		}
		if _, dup := seen[s.URN]; dup {
			continue
		}
		seen[s.URN] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DedupeTools drops repeated tools by identity, keeping the first.
func DedupeTools(tools []domain.Tool) []domain.Tool {
	return dedupe(tools, func(t domain.Tool) string { return t.Key() })
}

// DedupeKnowledgeBases drops repeated knowledge bases by identity.
func DedupeKnowledgeBases(kbs []domain.KnowledgeBase) []domain.KnowledgeBase {
	return dedupe(kbs, func(k domain.KnowledgeBase) string { return k.Key() })
}

func dedupe[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// sortByIndex stably orders items by their catalog position. Unknown items
// sort last in their original relative order.
func sortByIndex[T any](items []T, index func(T) int) {
	pos := func(i int) int {
		if n := index(items[i]); n >= 0 {
			return n
		}
		return int(^uint(0) >> 1)
	}
	sort.SliceStable(items, func(i, j int) bool { return pos(i) < pos(j) })
}
