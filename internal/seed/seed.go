// Package seed populates empty category and menu trees with initial
// development data. It sits above both the database and store packages so
// neither depends on the other.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"treepress/internal/models"
	"treepress/internal/slug"
	"treepress/internal/store"
	"treepress/internal/tree"
)

// Run seeds the category and menu trees. Nodes are created through the
// stores so every level/path/sort_order invariant holds in the seeded data.
// A database that already holds categories is left untouched.
func Run(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	ctx := context.Background()
	categories := store.NewCategoryStore(db)
	menu := store.NewMenuStore(db)

	news, err := seedCategory(ctx, categories, "News", "Site announcements and updates", nil)
	if err != nil {
		return err
	}
	if _, err := seedCategory(ctx, categories, "Releases", "Product release notes", &news.ID); err != nil {
		return err
	}
	guides, err := seedCategory(ctx, categories, "Guides", "Long-form how-to articles", nil)
	if err != nil {
		return err
	}
	if _, err := seedCategory(ctx, categories, "Getting Started", "", &guides.ID); err != nil {
		return err
	}
	if _, err := seedCategory(ctx, categories, "Advanced", "", &guides.ID); err != nil {
		return err
	}

	if _, err := menu.Create(ctx, &models.MenuItem{
		Label: "Home", URL: "/", LinkType: models.LinkInternal, Active: true,
	}, nil); err != nil {
		return fmt.Errorf("seed menu item: %w", err)
	}
	blog, err := menu.Create(ctx, &models.MenuItem{
		Label: "Blog", URL: "/blog", LinkType: models.LinkInternal, Active: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("seed menu item: %w", err)
	}
	if _, err := menu.Create(ctx, &models.MenuItem{
		Label: "Archive", URL: "/blog/archive", LinkType: models.LinkInternal, Active: true,
	}, &blog.ID); err != nil {
		return fmt.Errorf("seed menu item: %w", err)
	}

	slog.Info("database seeded with sample category and menu trees")
	return nil
}

// seedCategory creates one category node with a slug derived from its name.
func seedCategory(ctx context.Context, s *store.CategoryStore, name, description string, parentID *uuid.UUID) (*tree.Node[models.Category], error) {
	n, err := s.Create(ctx, &models.Category{
		Name:        name,
		Slug:        slug.Generate(name),
		Description: description,
		Active:      true,
	}, parentID)
	if err != nil {
		return nil, fmt.Errorf("seed category %q: %w", name, err)
	}
	return n, nil
}
