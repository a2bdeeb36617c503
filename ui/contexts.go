package ui

import (
	"fmt"

	"github.com/ethereum-optimism/infra/peck/types"
)

// SpecificationNodes lays out contexts and the selected specifications as a
// tree. Contexts are expected in creation order, parents before children.
// A context is shown only when it, or one of its descendants, holds a
// selected specification.
func SpecificationNodes(contexts []*types.Context, selected []*types.Specification) []Node {
	keep := make(map[*types.Specification]bool, len(selected))
	for _, spec := range selected {
		keep[spec] = true
	}

	var nodes []Node
	for _, ctx := range contexts {
		if !holdsSelected(ctx, selected) {
			continue
		}
		parts := ctx.Description()
		depth := len(parts)
		text := ""
		if depth > 0 {
			text = fmt.Sprint(parts[depth-1])
		}
		nodes = append(nodes, Node{Depth: depth, Text: text})

		for _, spec := range ctx.Specifications() {
			if !keep[spec] {
				continue
			}
			text := spec.Description()
			if !spec.HasBody() {
				text += " (pending)"
			}
			nodes = append(nodes, Node{Depth: depth + 1, Text: text})
		}
	}
	return nodes
}

// holdsSelected reports whether a selected specification belongs to ctx or to
// a context nested in it.
func holdsSelected(ctx *types.Context, selected []*types.Specification) bool {
	parts := ctx.Description()
	for _, spec := range selected {
		if hasPrefix(spec.Context().Description(), parts) {
			return true
		}
	}
	return false
}

func hasPrefix(parts, prefix []any) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if fmt.Sprint(parts[i]) != fmt.Sprint(prefix[i]) {
			return false
		}
	}
	return true
}
