// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides SQL-backed access to the category and menu trees.
// NodeStore is the generic engine: repository queries, sibling-order
// maintenance and the mutation API, bound to a concrete table by a TableSpec.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"treepress/internal/cache"
	"treepress/internal/tree"
)

// Querier is the subset of *sql.DB and *sql.Tx the store queries through,
// so every helper works both inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TableSpec binds the generic node store to one table.
type TableSpec[P any] struct {
	// Table is the SQL table name.
	Table string

	// PayloadColumns lists the domain columns, in the order PayloadValues
	// and PayloadFields produce them.
	PayloadColumns []string

	// PayloadValues returns insert/update arguments for a payload.
	PayloadValues func(p *P) []any

	// PayloadFields returns scan destinations for a payload.
	PayloadFields func(p *P) []any

	// ActiveColumn names the boolean column toggled by the activate and
	// deactivate bulk actions. Empty disables those actions for this tree.
	ActiveColumn string
}

// DependentCounter reports how many domain records outside the tree still
// reference the node (e.g. posts in a category). A non-zero count blocks
// deletion.
type DependentCounter func(ctx context.Context, q Querier, id uuid.UUID) (int, error)

// NodeStore maintains one tree instance. Every multi-step mutation runs
// inside a single serializable transaction, so two concurrent rewrites of the
// same sibling group cannot interleave their read-modify-write cycles and
// leave a duplicate or missing sort_order.
type NodeStore[P any] struct {
	db         *sql.DB
	spec       TableSpec[P]
	dependents DependentCounter

	cache    *cache.TreeCache
	cacheKey string
}

// NewNodeStore returns a NodeStore bound to the table described by spec.
func NewNodeStore[P any](db *sql.DB, spec TableSpec[P]) *NodeStore[P] {
	return &NodeStore[P]{db: db, spec: spec}
}

// WithDependents installs the delete precondition check for domain records
// referencing a node.
func (s *NodeStore[P]) WithDependents(fn DependentCounter) *NodeStore[P] {
	s.dependents = fn
	return s
}

// WithCache serves Tree from c under key, invalidating it on every mutation.
func (s *NodeStore[P]) WithCache(c *cache.TreeCache, key string) *NodeStore[P] {
	s.cache = c
	s.cacheKey = key
	return s
}

// structuralColumns come first in every SELECT/INSERT; payload columns follow.
var structuralColumns = []string{
	"id", "parent_id", "level", "path", "sort_order", "created_at", "updated_at",
}

// columns returns the full column list for this table.
func (s *NodeStore[P]) columns() string {
	cols := append(append([]string{}, structuralColumns...), s.spec.PayloadColumns...)
	return strings.Join(cols, ", ")
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ", ")
}

// scanNode scans a row into a Node, structural fields first.
func (s *NodeStore[P]) scanNode(scanner interface{ Scan(...any) error }) (*tree.Node[P], error) {
	var n tree.Node[P]
	dest := []any{
		&n.ID, &n.ParentID, &n.Level, &n.Path,
		&n.SortOrder, &n.CreatedAt, &n.UpdatedAt,
	}
	dest = append(dest, s.spec.PayloadFields(&n.Payload)...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	return &n, nil
}

// scanNodes drains rows into a slice.
func (s *NodeStore[P]) scanNodes(rows *sql.Rows) ([]*tree.Node[P], error) {
	defer rows.Close()
	var items []*tree.Node[P]
	for rows.Next() {
		n, err := s.scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// find retrieves a node by id through q. Returns nil if not found.
func (s *NodeStore[P]) find(ctx context.Context, q Querier, id uuid.UUID) (*tree.Node[P], error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+s.columns()+` FROM `+s.spec.Table+` WHERE id = $1`, id)
	n, err := s.scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// FindByID retrieves a node by id.
func (s *NodeStore[P]) FindByID(ctx context.Context, id uuid.UUID) (*tree.Node[P], error) {
	n, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("find node by id: %w", err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}
	return n, nil
}

// List returns every node ordered by (level, sort_order, created_at) — the
// ordering Assemble relies on for deterministic nested output.
func (s *NodeStore[P]) List(ctx context.Context) ([]*tree.Node[P], error) {
	return s.list(ctx, s.db)
}

func (s *NodeStore[P]) list(ctx context.Context, q Querier) ([]*tree.Node[P], error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+s.columns()+` FROM `+s.spec.Table+`
		 ORDER BY level, sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return s.scanNodes(rows)
}

// ListChildren returns the direct children of parentID (nil for root level)
// in sibling order.
func (s *NodeStore[P]) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]*tree.Node[P], error) {
	return s.listChildren(ctx, s.db, parentID)
}

func (s *NodeStore[P]) listChildren(ctx context.Context, q Querier, parentID *uuid.UUID) ([]*tree.Node[P], error) {
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = q.QueryContext(ctx,
			`SELECT `+s.columns()+` FROM `+s.spec.Table+`
			 WHERE parent_id IS NULL ORDER BY sort_order, created_at`)
	} else {
		rows, err = q.QueryContext(ctx,
			`SELECT `+s.columns()+` FROM `+s.spec.Table+`
			 WHERE parent_id = $1 ORDER BY sort_order, created_at`, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return s.scanNodes(rows)
}

// Descendants returns every node below id, found by materialized-path prefix
// match instead of graph traversal, ordered like List.
func (s *NodeStore[P]) Descendants(ctx context.Context, id uuid.UUID) ([]*tree.Node[P], error) {
	n, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Every descendant's path starts with the path a direct child would have.
	prefix := tree.ChildPath(n.Path, n.ID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.columns()+` FROM `+s.spec.Table+`
		 WHERE path = $1 OR path LIKE $2
		 ORDER BY level, sort_order, created_at`,
		prefix, prefix+"/%")
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	return s.scanNodes(rows)
}

// inTx runs fn inside a serializable transaction and commits on success.
func (s *NodeStore[P]) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// invalidate drops the cached forest after a successful mutation.
func (s *NodeStore[P]) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.cacheKey)
	}
}

// Create inserts a new node under parentID (nil for root level), computing
// level, path and the next sort_order at insertion time.
func (s *NodeStore[P]) Create(ctx context.Context, payload *P, parentID *uuid.UUID) (*tree.Node[P], error) {
	var created *tree.Node[P]
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var parent *tree.Node[P]
		if parentID != nil {
			p, err := s.find(ctx, tx, *parentID)
			if err != nil {
				return fmt.Errorf("resolve parent: %w", err)
			}
			if p == nil {
				return fmt.Errorf("%w: %s", tree.ErrParentNotFound, *parentID)
			}
			parent = p
		}

		place := tree.ComputeHierarchy(parent)
		order, err := s.nextSortOrder(ctx, tx, parentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		n := &tree.Node[P]{
			ID:        uuid.New(),
			ParentID:  parentID,
			Level:     place.Level,
			Path:      place.Path,
			SortOrder: order,
			CreatedAt: now,
			UpdatedAt: now,
			Payload:   *payload,
		}

		args := []any{n.ID, n.ParentID, n.Level, n.Path, n.SortOrder, n.CreatedAt, n.UpdatedAt}
		args = append(args, s.spec.PayloadValues(&n.Payload)...)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO `+s.spec.Table+` (`+s.columns()+`)
			 VALUES (`+placeholders(len(args))+`)`, args...)
		if err != nil {
			return fmt.Errorf("create node: %w", err)
		}
		created = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// MoveTarget names the parent a node should move under; a nil ParentID means
// root level. A nil *MoveTarget passed to Update leaves the node in place.
type MoveTarget struct {
	ParentID *uuid.UUID
}

// Update rewrites a node's payload and, when move names a parent other than
// the current one, reparents it: the node's level/path are recomputed, the
// change is propagated through every descendant, the node joins the end of
// the new sibling group and its old group is renumbered to close the gap.
func (s *NodeStore[P]) Update(ctx context.Context, id uuid.UUID, payload *P, move *MoveTarget) (*tree.Node[P], error) {
	var updated *tree.Node[P]
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := s.find(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("find node: %w", err)
		}
		if n == nil {
			return fmt.Errorf("%w: %s", tree.ErrNotFound, id)
		}

		if move != nil && !tree.SameParent(move.ParentID, n.ParentID) {
			if err := s.reparent(ctx, tx, n, move.ParentID); err != nil {
				return err
			}
		}

		set := make([]string, 0, len(s.spec.PayloadColumns)+1)
		args := make([]any, 0, len(s.spec.PayloadColumns)+2)
		for i, col := range s.spec.PayloadColumns {
			set = append(set, col+" = $"+strconv.Itoa(i+1))
		}
		args = append(args, s.spec.PayloadValues(payload)...)
		set = append(set, "updated_at = $"+strconv.Itoa(len(args)+1))
		args = append(args, time.Now().UTC())
		args = append(args, id)

		_, err = tx.ExecContext(ctx,
			`UPDATE `+s.spec.Table+` SET `+strings.Join(set, ", ")+
				` WHERE id = $`+strconv.Itoa(len(args)), args...)
		if err != nil {
			return fmt.Errorf("update node: %w", err)
		}

		updated, err = s.find(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("reread node: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// reparent performs the structural half of a move, in order: cycle check,
// new placement, descendant propagation, node rewrite at the end of the new
// sibling group, gap closure in the old group.
func (s *NodeStore[P]) reparent(ctx context.Context, tx *sql.Tx, n *tree.Node[P], newParentID *uuid.UUID) error {
	var parent *tree.Node[P]
	if newParentID != nil {
		if *newParentID == n.ID {
			return fmt.Errorf("%w: %s cannot be its own parent", tree.ErrCyclicMove, n.ID)
		}
		p, err := s.find(ctx, tx, *newParentID)
		if err != nil {
			return fmt.Errorf("resolve new parent: %w", err)
		}
		if p == nil {
			return fmt.Errorf("%w: %s", tree.ErrParentNotFound, *newParentID)
		}
		if tree.PathContains(p.Path, n.ID) {
			return fmt.Errorf("%w: %s descends from %s", tree.ErrCyclicMove, p.ID, n.ID)
		}
		parent = p
	}

	place := tree.ComputeHierarchy(parent)

	if err := s.propagate(ctx, tx, n.ID, place); err != nil {
		return err
	}

	// Position must be computed before the node's row joins the new group,
	// or its old sort_order would contaminate the MAX.
	order, err := s.nextSortOrder(ctx, tx, newParentID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE `+s.spec.Table+`
		 SET parent_id = $1, level = $2, path = $3, sort_order = $4, updated_at = $5
		 WHERE id = $6`,
		newParentID, place.Level, place.Path, order, time.Now().UTC(), n.ID)
	if err != nil {
		return fmt.Errorf("reparent node %s: %w", n.ID, err)
	}

	return s.closeGap(ctx, tx, n.ParentID, n.SortOrder)
}

// propagate rewrites level/path across a node's entire subtree from an
// explicit FIFO worklist — breadth-first, so pathologically deep trees cannot
// exhaust the call stack. The node itself is not touched; place is its
// already-decided new placement.
func (s *NodeStore[P]) propagate(ctx context.Context, tx *sql.Tx, id uuid.UUID, place tree.Placement) error {
	type item struct {
		id    uuid.UUID
		place tree.Placement
	}
	queue := []item{{id: id, place: place}}
	now := time.Now().UTC()

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := s.listChildren(ctx, tx, &cur.id)
		if err != nil {
			return err
		}
		for _, child := range children {
			childPlace := tree.Placement{
				Level: cur.place.Level + 1,
				Path:  tree.ChildPath(cur.place.Path, cur.id),
			}
			_, err := tx.ExecContext(ctx,
				`UPDATE `+s.spec.Table+` SET level = $1, path = $2, updated_at = $3 WHERE id = $4`,
				childPlace.Level, childPlace.Path, now, child.ID)
			if err != nil {
				return fmt.Errorf("propagate to %s: %w", child.ID, err)
			}
			queue = append(queue, item{id: child.ID, place: childPlace})
		}
	}
	return nil
}

// ReorderRequest positions one node at a target order under a target parent
// (nil for root level).
type ReorderRequest struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder applies requests strictly in the given order, all inside one
// transaction. A request naming a parent other than the node's current one
// reparents first, then positions the node among its new siblings.
func (s *NodeStore[P]) Reorder(ctx context.Context, requests []ReorderRequest) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, req := range requests {
			n, err := s.find(ctx, tx, req.ID)
			if err != nil {
				return fmt.Errorf("find node: %w", err)
			}
			if n == nil {
				return fmt.Errorf("%w: %s", tree.ErrNotFound, req.ID)
			}
			if !tree.SameParent(req.ParentID, n.ParentID) {
				if err := s.reparent(ctx, tx, n, req.ParentID); err != nil {
					return err
				}
			}
			if err := s.moveTo(ctx, tx, req.ID, req.ParentID, req.Order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// moveTo repositions a node among parentID's children at index newOrder
// (clamped to the valid range). The whole sibling sequence is rewritten in a
// single pass: O(siblings) per move, but the group can never end up with a
// gap or a duplicate, whatever state it started in. Rows already holding the
// right position are left untouched.
func (s *NodeStore[P]) moveTo(ctx context.Context, tx *sql.Tx, nodeID uuid.UUID, parentID *uuid.UUID, newOrder int) error {
	siblings, err := s.listChildren(ctx, tx, parentID)
	if err != nil {
		return err
	}

	sequence := make([]*tree.Node[P], 0, len(siblings))
	var moving *tree.Node[P]
	for _, sib := range siblings {
		if sib.ID == nodeID {
			moving = sib
			continue
		}
		sequence = append(sequence, sib)
	}
	if moving == nil {
		return fmt.Errorf("%w: %s is not a child of the target parent", tree.ErrNotFound, nodeID)
	}

	if newOrder < 0 {
		newOrder = 0
	}
	if newOrder > len(sequence) {
		newOrder = len(sequence)
	}
	sequence = append(sequence, nil)
	copy(sequence[newOrder+1:], sequence[newOrder:])
	sequence[newOrder] = moving

	now := time.Now().UTC()
	for i, sib := range sequence {
		if sib.SortOrder == i {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE `+s.spec.Table+` SET sort_order = $1, updated_at = $2 WHERE id = $3`,
			i, now, sib.ID)
		if err != nil {
			return fmt.Errorf("renumber sibling %s: %w", sib.ID, err)
		}
	}
	return nil
}

// Delete removes a leaf node and renumbers its former siblings. Nodes that
// still have children or dependent records are refused.
func (s *NodeStore[P]) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return s.deleteOne(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *NodeStore[P]) deleteOne(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	n, err := s.find(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("find node: %w", err)
	}
	if n == nil {
		return fmt.Errorf("%w: %s", tree.ErrNotFound, id)
	}

	var children int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+s.spec.Table+` WHERE parent_id = $1`, id).Scan(&children); err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("%w: %s has %d children", tree.ErrHasChildren, id, children)
	}

	if s.dependents != nil {
		count, err := s.dependents(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("count dependents: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s has %d dependent records", tree.ErrHasDependents, id, count)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+s.spec.Table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	return s.closeGap(ctx, tx, n.ParentID, n.SortOrder)
}

// closeGap shifts down every sibling that sat after a vacated position so the
// group stays densely numbered 0..n-1.
func (s *NodeStore[P]) closeGap(ctx context.Context, tx *sql.Tx, parentID *uuid.UUID, removedOrder int) error {
	var err error
	now := time.Now().UTC()
	if parentID == nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE `+s.spec.Table+`
			 SET sort_order = sort_order - 1, updated_at = $1
			 WHERE parent_id IS NULL AND sort_order > $2`, now, removedOrder)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE `+s.spec.Table+`
			 SET sort_order = sort_order - 1, updated_at = $1
			 WHERE parent_id = $2 AND sort_order > $3`, now, *parentID, removedOrder)
	}
	if err != nil {
		return fmt.Errorf("close sibling gap: %w", err)
	}
	return nil
}

// nextSortOrder returns max(sort_order)+1 among parentID's children, or 0
// when the group is empty.
func (s *NodeStore[P]) nextSortOrder(ctx context.Context, q Querier, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = q.QueryRowContext(ctx,
			`SELECT MAX(sort_order) FROM `+s.spec.Table+` WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = q.QueryRowContext(ctx,
			`SELECT MAX(sort_order) FROM `+s.spec.Table+` WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// Bulk action names accepted by BulkAction.
const (
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
	ActionDelete     = "delete"
)

// BulkAction applies one action to every id, all-or-nothing: the whole batch
// runs in a single transaction and the first per-id failure rolls everything
// back. Returns the number of nodes affected.
func (s *NodeStore[P]) BulkAction(ctx context.Context, action string, ids []uuid.UUID) (int, error) {
	switch action {
	case ActionActivate, ActionDeactivate:
		if s.spec.ActiveColumn == "" {
			return 0, fmt.Errorf("%w: %q not supported by %s", tree.ErrInvalidBulkAction, action, s.spec.Table)
		}
	case ActionDelete:
	default:
		return 0, fmt.Errorf("%w: %q", tree.ErrInvalidBulkAction, action)
	}

	affected := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if action == ActionDelete {
				if err := s.deleteOne(ctx, tx, id); err != nil {
					return err
				}
				affected++
				continue
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE `+s.spec.Table+` SET `+s.spec.ActiveColumn+` = $1, updated_at = $2 WHERE id = $3`,
				action == ActionActivate, time.Now().UTC(), id)
			if err != nil {
				return fmt.Errorf("bulk %s %s: %w", action, id, err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("bulk %s %s: %w", action, id, err)
			}
			if rows == 0 {
				return fmt.Errorf("%w: %s", tree.ErrNotFound, id)
			}
			affected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return affected, nil
}

// Tree returns the full forest, nested and in sibling order. With a cache
// attached, the assembled forest is served from Valkey until the next
// mutation invalidates it.
func (s *NodeStore[P]) Tree(ctx context.Context) ([]*tree.Node[P], error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, s.cacheKey); ok {
			var forest []*tree.Node[P]
			if err := json.Unmarshal(data, &forest); err == nil {
				return forest, nil
			}
			// Corrupt cache entry: fall through and rebuild from the table.
		}
	}

	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	forest := tree.Assemble(flat)

	if s.cache != nil {
		if data, err := json.Marshal(forest); err == nil {
			s.cache.Set(ctx, s.cacheKey, data)
		}
	}
	return forest, nil
}

// FlatTree returns the forest flattened depth-first — display order, with
// Node.Level available for indentation in dropdowns.
func (s *NodeStore[P]) FlatTree(ctx context.Context) ([]*tree.Node[P], error) {
	forest, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Flatten(forest), nil
}
