// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the domain payloads carried by tree nodes. The tree
// engine itself (internal/tree, internal/store) treats these as opaque.
package models

// Category is the payload of a node in the content-category tree.
// Posts can have at most one category assigned.
type Category struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}
