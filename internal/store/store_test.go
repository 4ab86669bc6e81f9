// store_test.go provides a shared test database helper for all store tests.
// By default each test gets a fresh embedded SQLite database in a temp
// directory, so the suite is hermetic; set TREEPRESS_TEST_DSN to a PostgreSQL
// connection string to run the same tests against Postgres instead.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"

	"treepress/internal/database"
)

// testDB opens a test database and runs migrations. A cleanup function is
// registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	driver := database.DriverSQLite
	dsn := "file:" + filepath.Join(t.TempDir(), "treepress_test.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if env := os.Getenv("TREEPRESS_TEST_DSN"); env != "" {
		driver = database.DriverPostgres
		dsn = env
	}

	db, err := database.Connect(driver, dsn)
	if err != nil {
		if driver == database.DriverPostgres {
			t.Skipf("skipping integration test: DB not reachable: %v", err)
		}
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db, driver); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	// Postgres databases are shared between runs; start from empty trees.
	if driver == database.DriverPostgres {
		for _, table := range []string{"posts", "menu_items", "categories"} {
			if _, err := db.Exec("DELETE FROM " + table); err != nil {
				db.Close()
				t.Fatalf("failed to reset %s: %v", table, err)
			}
		}
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// treeRow is the structural slice of a node used by the invariant checkers.
type treeRow struct {
	id     string
	parent sql.NullString
	level  int
	path   string
	order  int
}

func readRows(t *testing.T, db *sql.DB, table string) []treeRow {
	t.Helper()
	rows, err := db.Query(`SELECT id, parent_id, level, path, sort_order FROM ` + table)
	if err != nil {
		t.Fatalf("read %s: %v", table, err)
	}
	defer rows.Close()

	var result []treeRow
	for rows.Next() {
		var r treeRow
		if err := rows.Scan(&r.id, &r.parent, &r.level, &r.path, &r.order); err != nil {
			t.Fatalf("scan %s: %v", table, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("read %s: %v", table, err)
	}
	return result
}

// verifyTreeInvariants asserts, for every row of table: dense 0..n-1 orders
// per sibling group, level equal to the path's segment count, empty path iff
// root, path consistent with the parent's path, and no node inside its own
// path.
func verifyTreeInvariants(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	all := readRows(t, db, table)
	byID := make(map[string]treeRow, len(all))
	for _, r := range all {
		byID[r.id] = r
	}

	groups := make(map[string][]int)
	for _, r := range all {
		key := ""
		if r.parent.Valid {
			key = r.parent.String
		}
		groups[key] = append(groups[key], r.order)

		segments := 0
		if r.path != "" {
			segments = 1
			for _, ch := range r.path {
				if ch == '/' {
					segments++
				}
			}
		}
		if r.level != segments {
			t.Errorf("%s %s: level %d but path %q has %d segments", table, r.id, r.level, r.path, segments)
		}
		if (r.path == "") != !r.parent.Valid {
			t.Errorf("%s %s: path %q inconsistent with parent_id null=%v", table, r.id, r.path, !r.parent.Valid)
		}
		if r.parent.Valid {
			parent, ok := byID[r.parent.String]
			if !ok {
				t.Errorf("%s %s: parent %s missing", table, r.id, r.parent.String)
			} else {
				want := parent.path
				if want == "" {
					want = parent.id
				} else {
					want = want + "/" + parent.id
				}
				if r.path != want {
					t.Errorf("%s %s: path %q, want %q", table, r.id, r.path, want)
				}
			}
		}
		// A node must never appear inside its own ancestry chain.
		for _, seg := range splitPath(r.path) {
			if seg == r.id {
				t.Errorf("%s %s: cycle — node appears in its own path %q", table, r.id, r.path)
			}
		}
	}

	for parent, orders := range groups {
		seen := make(map[int]bool, len(orders))
		for _, o := range orders {
			if o < 0 || o >= len(orders) {
				t.Errorf("%s parent %q: order %d outside 0..%d", table, parent, o, len(orders)-1)
			}
			if seen[o] {
				t.Errorf("%s parent %q: duplicate order %d", table, parent, o)
			}
			seen[o] = true
		}
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	return segs
}

// siblingOrders returns id → sort_order for the children of parent ("" for
// root level).
func siblingOrders(t *testing.T, db *sql.DB, table, parent string) map[string]int {
	t.Helper()
	result := make(map[string]int)
	for _, r := range readRows(t, db, table) {
		key := ""
		if r.parent.Valid {
			key = r.parent.String
		}
		if key == parent {
			result[r.id] = r.order
		}
	}
	return result
}
