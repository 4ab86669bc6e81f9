// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"treepress/internal/models"
	"treepress/internal/tree"
)

// CategoryStore maintains the content-category tree.
type CategoryStore struct {
	*NodeStore[models.Category]
}

// NewCategoryStore returns a CategoryStore backed by the categories table.
// Deleting a category is blocked while posts still reference it.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	spec := TableSpec[models.Category]{
		Table:          "categories",
		PayloadColumns: []string{"name", "slug", "description", "active"},
		PayloadValues: func(c *models.Category) []any {
			return []any{c.Name, c.Slug, c.Description, c.Active}
		},
		PayloadFields: func(c *models.Category) []any {
			return []any{&c.Name, &c.Slug, &c.Description, &c.Active}
		},
		ActiveColumn: "active",
	}
	return &CategoryStore{
		NodeStore: NewNodeStore(db, spec).WithDependents(countCategoryPosts),
	}
}

// FindBySlug retrieves a category node by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*tree.Node[models.Category], error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+s.columns()+` FROM categories WHERE slug = $1`, slug)
	n, err := s.scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return n, nil
}

// countCategoryPosts reports how many posts reference the category.
func countCategoryPosts(ctx context.Context, q Querier, id uuid.UUID) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count category posts: %w", err)
	}
	return count, nil
}
