// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import "github.com/google/uuid"

// Assemble converts a flat node list into a nested forest. The input must
// already be ordered by (level, sort_order, created_at); each Children slice
// then comes out in sibling order without a separate sort step. Two passes:
// build the id map, then append every node to its parent's Children.
func Assemble[P any](flat []*Node[P]) []*Node[P] {
	byID := make(map[uuid.UUID]*Node[P], len(flat))
	for _, n := range flat {
		n.Children = nil
		byID[n.ID] = n
	}

	var roots []*Node[P]
	for _, n := range flat {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			// Parent filtered out of the input; surface the node at the top
			// rather than dropping it silently.
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

// Flatten walks a forest depth-first, returning nodes in display order.
// Useful for indented <select> dropdowns, with Node.Level as the indent.
func Flatten[P any](forest []*Node[P]) []*Node[P] {
	var result []*Node[P]
	var walk func(nodes []*Node[P])
	walk = func(nodes []*Node[P]) {
		for _, n := range nodes {
			result = append(result, n)
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(forest)
	return result
}
