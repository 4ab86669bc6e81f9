// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import "errors"

// Mutation failure taxonomy. All of these are expected, caller-correctable
// conditions; the store wraps them with the offending id so callers can match
// with errors.Is and still see which node failed.
var (
	// ErrNotFound means the referenced node id does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrParentNotFound means a supplied parent id does not resolve.
	ErrParentNotFound = errors.New("parent not found")

	// ErrCyclicMove means the requested reparent would make a node its own
	// ancestor.
	ErrCyclicMove = errors.New("move would create a cycle")

	// ErrHasChildren blocks deleting a node that still has children.
	ErrHasChildren = errors.New("node has children")

	// ErrHasDependents blocks deleting a node that domain records still
	// reference (e.g. posts in a category).
	ErrHasDependents = errors.New("node has dependent records")

	// ErrInvalidBulkAction means the bulk action name is not recognized, or
	// not supported by the target tree.
	ErrInvalidBulkAction = errors.New("unsupported bulk action")
)
