package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type itemDef struct {
	name        string
	description string
}

type propertyDef struct {
	name        string
	address     string
	description string
	items       []itemDef
}

var seedProperties = []propertyDef{
	{
		name:        "Harbour View Apartments",
		address:     "12 Marine Drive, Mumbai",
		description: "Serviced apartments with shared amenities.",
		items: []itemDef{
			{"Lobby", "Reception and concierge desk"},
			{"Gym", "Ground floor fitness room"},
			{"Pool", "Rooftop pool deck"},
			{"Laundry", "Basement laundry room"},
			{"Parking B1", "Visitor parking level"},
			{"Unit 101", "Two-bedroom, sea facing"},
			{"Unit 102", "One-bedroom studio"},
		},
	},
}

// Seed populates a demo property with items when the database has no
// properties yet. It is safe to call on every start.
func Seed(app *pocketbase.PocketBase) error {
	propertiesCol, err := app.FindCollectionByNameOrId("properties")
	if err != nil {
		return fmt.Errorf("seed: properties collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		return fmt.Errorf("seed: items collection: %w", err)
	}

	existing, err := app.FindAllRecords(propertiesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query properties: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: properties collection is empty – inserting seed data …")

	for _, pd := range seedProperties {
		property := core.NewRecord(propertiesCol)
		property.Set("name", pd.name)
		property.Set("address", pd.address)
		property.Set("description", pd.description)
		if err := app.Save(property); err != nil {
			return fmt.Errorf("seed: save property %q: %w", pd.name, err)
		}

		for i, id := range pd.items {
			item := core.NewRecord(itemsCol)
			item.Set("property", property.Id)
			item.Set("name", id.name)
			item.Set("description", id.description)
			item.Set("sort_order", i+1)
			if err := app.Save(item); err != nil {
				return fmt.Errorf("seed: save item %q: %w", id.name, err)
			}
		}
		log.Printf("seed: property %q with %d items", pd.name, len(pd.items))
	}
	return nil
}
