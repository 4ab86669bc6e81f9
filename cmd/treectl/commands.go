package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"treepress/internal/models"
	"treepress/internal/seed"
	"treepress/internal/slug"
	"treepress/internal/store"
	"treepress/internal/tree"
)

// Tree kinds addressable from the command line.
const (
	kindCategories = "categories"
	kindMenu       = "menu"
)

func parseKind(arg string) (string, error) {
	switch arg {
	case kindCategories, kindMenu:
		return arg, nil
	default:
		return "", fmt.Errorf("unknown tree %q (want %s or %s)", arg, kindCategories, kindMenu)
	}
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid node id %q: %w", arg, err)
	}
	return id, nil
}

// optionalID parses a flag value into a parent reference; empty means root.
func optionalID(arg string) (*uuid.UUID, error) {
	if arg == "" {
		return nil, nil
	}
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// printForest prints a forest with two-space indentation per level.
func printForest[P any](nodes []*tree.Node[P], label func(*tree.Node[P]) string) {
	var walk func(ns []*tree.Node[P])
	walk = func(ns []*tree.Node[P]) {
		for _, n := range ns {
			fmt.Printf("%s%s  id=%s order=%d\n",
				strings.Repeat("  ", n.Level), label(n), n.ID, n.SortOrder)
			walk(n.Children)
		}
	}
	walk(nodes)
}

func categoryLabel(n *tree.Node[models.Category]) string { return n.Payload.Name }
func menuLabel(n *tree.Node[models.MenuItem]) string     { return n.Payload.Label }

var treeCmd = &cobra.Command{
	Use:   "tree [categories|menu]",
	Short: "Print a tree as a nested hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if kind == kindCategories {
			forest, err := a.categories.Tree(ctx)
			if err != nil {
				return err
			}
			printForest(forest, categoryLabel)
			return nil
		}
		forest, err := a.menu.Tree(ctx)
		if err != nil {
			return err
		}
		printForest(forest, menuLabel)
		return nil
	},
}

var flatCmd = &cobra.Command{
	Use:   "flat [categories|menu]",
	Short: "Print a tree as a flat, display-ordered list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if kind == kindCategories {
			flat, err := a.categories.FlatTree(ctx)
			if err != nil {
				return err
			}
			for _, n := range flat {
				fmt.Printf("%d\t%s\t%s\n", n.Level, n.ID, n.Payload.Name)
			}
			return nil
		}
		flat, err := a.menu.FlatTree(ctx)
		if err != nil {
			return err
		}
		for _, n := range flat {
			fmt.Printf("%d\t%s\t%s\n", n.Level, n.ID, n.Payload.Label)
		}
		return nil
	},
}

var (
	addParent      string
	addDescription string
	addURL         string
	addLinkType    string
)

var addCmd = &cobra.Command{
	Use:   "add [categories|menu] NAME",
	Short: "Create a node, appended to its parent's children",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		parentID, err := optionalID(addParent)
		if err != nil {
			return err
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		name := args[1]
		if kind == kindCategories {
			n, err := a.categories.Create(ctx, &models.Category{
				Name:        name,
				Slug:        slug.GenerateWithFallback(name, uuid.NewString()[:8]),
				Description: addDescription,
				Active:      true,
			}, parentID)
			if err != nil {
				return err
			}
			fmt.Printf("created %s level=%d order=%d\n", n.ID, n.Level, n.SortOrder)
			return nil
		}
		n, err := a.menu.Create(ctx, &models.MenuItem{
			Label:    name,
			URL:      addURL,
			LinkType: addLinkType,
			Active:   true,
		}, parentID)
		if err != nil {
			return err
		}
		fmt.Printf("created %s level=%d order=%d\n", n.ID, n.Level, n.SortOrder)
		return nil
	},
}

var moveTo string

var moveCmd = &cobra.Command{
	Use:   "move [categories|menu] ID",
	Short: "Reparent a node (and its whole subtree) under --to, or to root level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		target, err := optionalID(moveTo)
		if err != nil {
			return err
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		move := &store.MoveTarget{ParentID: target}
		if kind == kindCategories {
			n, err := a.categories.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if _, err := a.categories.Update(ctx, id, &n.Payload, move); err != nil {
				return err
			}
		} else {
			n, err := a.menu.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if _, err := a.menu.Update(ctx, id, &n.Payload, move); err != nil {
				return err
			}
		}
		fmt.Println("moved", id)
		return nil
	},
}

var reorderParent string

var reorderCmd = &cobra.Command{
	Use:   "reorder [categories|menu] ID ORDER",
	Short: "Reposition a node among its siblings (or under --parent)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		order, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid order %q: %w", args[2], err)
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		var parentID *uuid.UUID
		if cmd.Flags().Changed("parent") {
			parentID, err = optionalID(reorderParent)
			if err != nil {
				return err
			}
		} else if kind == kindCategories {
			n, err := a.categories.FindByID(ctx, id)
			if err != nil {
				return err
			}
			parentID = n.ParentID
		} else {
			n, err := a.menu.FindByID(ctx, id)
			if err != nil {
				return err
			}
			parentID = n.ParentID
		}

		req := []store.ReorderRequest{{ID: id, ParentID: parentID, Order: order}}
		if kind == kindCategories {
			err = a.categories.Reorder(ctx, req)
		} else {
			err = a.menu.Reorder(ctx, req)
		}
		if err != nil {
			return err
		}
		fmt.Println("reordered", id)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm [categories|menu] ID",
	Short: "Delete a leaf node and close the sibling gap",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if kind == kindCategories {
			err = a.categories.Delete(ctx, id)
		} else {
			err = a.menu.Delete(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Println("deleted", id)
		return nil
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk [categories|menu] [activate|deactivate|delete] ID...",
	Short: "Apply one action to several nodes, all-or-nothing",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		action := args[1]
		ids := make([]uuid.UUID, 0, len(args)-2)
		for _, arg := range args[2:] {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		var affected int
		if kind == kindCategories {
			affected, err = a.categories.BulkAction(ctx, action, ids)
		} else {
			affected, err = a.menu.BulkAction(ctx, action, ids)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s applied to %d nodes\n", action, affected)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate empty trees with sample development data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp()
		if err != nil {
			return err
		}
		defer cleanup()
		return seed.Run(a.db)
	},
}

func init() {
	addCmd.Flags().StringVar(&addParent, "parent", "", "parent node id (omit for root level)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "category description")
	addCmd.Flags().StringVar(&addURL, "url", "", "menu item target URL")
	addCmd.Flags().StringVar(&addLinkType, "type", models.LinkInternal, "menu item link type")
	moveCmd.Flags().StringVar(&moveTo, "to", "", "new parent id (omit for root level)")
	reorderCmd.Flags().StringVar(&reorderParent, "parent", "", "target parent id (omit to keep the current parent)")
}
