// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Menu-item link types.
const (
	LinkInternal = "internal" // path within the site
	LinkExternal = "external" // absolute URL
	LinkAnchor   = "anchor"   // fragment on the current page
)

// MenuItem is the payload of a node in the navigation-menu tree.
type MenuItem struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	LinkType string `json:"link_type"`
	Active   bool   `json:"active"`
}
