// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"

	"treepress/internal/models"
)

// MenuStore maintains the navigation-menu tree. Menu items have no dependent
// records, so only the has-children check guards deletion.
type MenuStore struct {
	*NodeStore[models.MenuItem]
}

// NewMenuStore returns a MenuStore backed by the menu_items table.
func NewMenuStore(db *sql.DB) *MenuStore {
	spec := TableSpec[models.MenuItem]{
		Table:          "menu_items",
		PayloadColumns: []string{"label", "url", "link_type", "active"},
		PayloadValues: func(m *models.MenuItem) []any {
			return []any{m.Label, m.URL, m.LinkType, m.Active}
		},
		PayloadFields: func(m *models.MenuItem) []any {
			return []any{&m.Label, &m.URL, &m.LinkType, &m.Active}
		},
		ActiveColumn: "active",
	}
	return &MenuStore{NodeStore: NewNodeStore(db, spec)}
}
