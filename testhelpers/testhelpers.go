// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"propertyqr/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProperty creates a property record with the given name and returns it.
func CreateTestProperty(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("properties")
	if err != nil {
		t.Fatalf("failed to find properties collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("address", "1 Test Street")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test property: %v", err)
	}

	return record
}

// CreateTestItem creates an item record linked to a property and returns it.
func CreateTestItem(t *testing.T, app *pocketbase.PocketBase, propertyID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		t.Fatalf("failed to find items collection: %v", err)
	}

	existing, _ := app.FindRecordsByFilter(col, "property = {:p}", "", 0, 0, map[string]any{"p": propertyID})

	record := core.NewRecord(col)
	record.Set("property", propertyID)
	record.Set("name", name)
	record.Set("sort_order", len(existing)+1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test item: %v", err)
	}

	return record
}

// CreateTestVisit records one visit to an item.
func CreateTestVisit(t *testing.T, app *pocketbase.PocketBase, itemID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("item_visits")
	if err != nil {
		t.Fatalf("failed to find item_visits collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("item", itemID)
	record.Set("user_agent", "testhelpers")
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test visit: %v", err)
	}
	return record
}

// CreateTestReaction records one reaction on an item.
func CreateTestReaction(t *testing.T, app *pocketbase.PocketBase, itemID, reaction string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("item_reactions")
	if err != nil {
		t.Fatalf("failed to find item_reactions collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("item", itemID)
	record.Set("reaction", reaction)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test reaction: %v", err)
	}
	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
