package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ItemRow is an item as exported to sheets and reports.
type ItemRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func itemRowFromRecord(r *core.Record) ItemRow {
	return ItemRow{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		SortOrder:   r.GetInt("sort_order"),
	}
}

// LoadPropertyItems returns a property's items in display order. When ids is
// non-empty only those items are returned, still in display order; ids that
// do not belong to the property are ignored.
func LoadPropertyItems(app *pocketbase.PocketBase, propertyID string, ids []string) ([]ItemRow, error) {
	records, err := app.FindRecordsByFilter(
		"items",
		"property = {:propertyId}",
		"sort_order,created",
		0, 0,
		map[string]any{"propertyId": propertyID},
	)
	if err != nil {
		return nil, fmt.Errorf("load items for property %s: %w", propertyID, err)
	}

	var wanted map[string]bool
	if len(ids) > 0 {
		wanted = make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
	}

	rows := make([]ItemRow, 0, len(records))
	for _, r := range records {
		if wanted != nil && !wanted[r.Id] {
			continue
		}
		rows = append(rows, itemRowFromRecord(r))
	}
	return rows, nil
}

// CreateItems appends items to a property inside one transaction, continuing
// the property's sort order. Either every item is saved or none is.
func CreateItems(app *pocketbase.PocketBase, propertyID string, inputs []ItemInput) ([]ItemRow, error) {
	col, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		return nil, fmt.Errorf("items collection: %w", err)
	}

	created := make([]ItemRow, 0, len(inputs))
	err = app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindRecordsByFilter(
			"items",
			"property = {:propertyId}",
			"-sort_order",
			1, 0,
			map[string]any{"propertyId": propertyID},
		)
		if err != nil {
			return fmt.Errorf("find last item: %w", err)
		}
		next := 1
		if len(existing) > 0 {
			next = existing[0].GetInt("sort_order") + 1
		}

		for i, in := range inputs {
			rec := core.NewRecord(col)
			rec.Set("property", propertyID)
			rec.Set("name", in.Name)
			rec.Set("description", in.Description)
			rec.Set("sort_order", next+i)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("save item %q: %w", in.Name, err)
			}
			created = append(created, itemRowFromRecord(rec))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// VisitURL is the public URL encoded into an item's QR code.
func VisitURL(baseURL, itemID string) string {
	return strings.TrimRight(baseURL, "/") + "/i/" + itemID
}

// BuildQRItems encodes a QR bitmap for every item. An item whose code cannot
// be encoded keeps a nil image and is drawn as a placeholder.
func BuildQRItems(rows []ItemRow, baseURL string, pixels int) []QRItem {
	contents := make([]string, len(rows))
	for i, r := range rows {
		contents[i] = VisitURL(baseURL, r.ID)
	}

	images, err := EncodeQRCodes(contents, pixels)
	if err != nil {
		log.Printf("qr_export: some QR codes failed to encode: %v", err)
	}

	items := make([]QRItem, len(rows))
	for i, r := range rows {
		items[i] = QRItem{ID: r.ID, Name: r.Name, RasterImage: images[i]}
	}
	return items
}
