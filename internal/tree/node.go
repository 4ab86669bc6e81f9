// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree implements the generic hierarchical-tree engine shared by the
// content-category and navigation-menu subsystems. Trees are stored in a flat
// relational table using a materialized-path representation: every node
// carries its parent id, its depth level, the /-joined chain of ancestor ids,
// and a dense per-sibling-group sort order. This package holds the node
// model, the pure level/path calculator, and the flat-list-to-forest
// assembler; the SQL side lives in internal/store.
package tree

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Node is a single tree record. P is the domain payload (category fields,
// menu-item fields); the engine never inspects it.
type Node[P any] struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Level     int        `json:"level"`
	Path      string     `json:"path"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Payload   P          `json:"payload"`

	// Children is populated by Assemble; flat query results leave it empty.
	Children []*Node[P] `json:"children,omitempty"`
}

// Placement is a node's computed position in the hierarchy: its depth level
// and materialized path. Roots sit at level 0 with an empty path.
type Placement struct {
	Level int
	Path  string
}

// ComputeHierarchy returns the placement of a node inserted under parent.
// A nil parent means root level.
func ComputeHierarchy[P any](parent *Node[P]) Placement {
	if parent == nil {
		return Placement{Level: 0, Path: ""}
	}
	return Placement{
		Level: parent.Level + 1,
		Path:  ChildPath(parent.Path, parent.ID),
	}
}

// ChildPath returns the materialized path of a child of the node identified
// by parentID, given that node's own path.
func ChildPath(parentPath string, parentID uuid.UUID) string {
	if parentPath == "" {
		return parentID.String()
	}
	return parentPath + "/" + parentID.String()
}

// Segments splits a materialized path into its ancestor ids, root first.
// An empty path yields nil.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// PathContains reports whether id appears as a segment of path — that is,
// whether the node owning path descends from id. Matching is per segment,
// never by substring.
func PathContains(path string, id uuid.UUID) bool {
	want := id.String()
	for _, seg := range Segments(path) {
		if seg == want {
			return true
		}
	}
	return false
}

// SameParent compares two parent references (both nil, or same id).
func SameParent(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
