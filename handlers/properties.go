package handlers

import (
	"log"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"propertyqr/services"
)

// PropertyInput is the body accepted when creating a property.
type PropertyInput struct {
	Name        string `json:"name" form:"name"`
	Address     string `json:"address" form:"address"`
	Description string `json:"description" form:"description"`
}

// Validate checks the property input.
func (in PropertyInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Address, validation.Length(0, 500)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}

// PropertySummary is a property as listed by the API.
type PropertySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	ItemCount   int    `json:"item_count"`
}

func propertySummary(app *pocketbase.PocketBase, rec *core.Record) PropertySummary {
	count, err := app.CountRecords("items", dbx.HashExp{"property": rec.Id})
	if err != nil {
		log.Printf("properties: count items for %s: %v", rec.Id, err)
	}
	return PropertySummary{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Address:     rec.GetString("address"),
		Description: rec.GetString("description"),
		ItemCount:   int(count),
	}
}

// HandlePropertyList returns all properties ordered by name.
func HandlePropertyList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("properties", "id != ''", "name", 0, 0)
		if err != nil {
			log.Printf("properties: list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load properties")
		}

		out := make([]PropertySummary, 0, len(records))
		for _, rec := range records {
			out = append(out, propertySummary(app, rec))
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandlePropertyCreate validates the body and creates a property.
func HandlePropertyCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in PropertyInput
		if err := e.BindBody(&in); err != nil {
			return badRequest(e, err)
		}
		in.Name = strings.TrimSpace(in.Name)
		in.Address = strings.TrimSpace(in.Address)
		if err := in.Validate(); err != nil {
			return badRequest(e, err)
		}

		col, err := app.FindCollectionByNameOrId("properties")
		if err != nil {
			log.Printf("properties: collection not found: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		rec := core.NewRecord(col)
		rec.Set("name", in.Name)
		rec.Set("address", in.Address)
		rec.Set("description", in.Description)
		if err := app.Save(rec); err != nil {
			log.Printf("properties: create: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to create property")
		}

		return e.JSON(http.StatusCreated, propertySummary(app, rec))
	}
}

// HandlePropertyView returns one property with its items in display order.
func HandlePropertyView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		rec, err := app.FindRecordById("properties", propertyID)
		if err != nil {
			return e.String(http.StatusNotFound, "Property not found")
		}

		items, err := services.LoadPropertyItems(app, propertyID, nil)
		if err != nil {
			log.Printf("properties: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load items")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"property": propertySummary(app, rec),
			"items":    items,
		})
	}
}

// HandlePropertyDelete deletes a property; its items, visits and reactions
// go with it through cascading relations.
func HandlePropertyDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		rec, err := app.FindRecordById("properties", propertyID)
		if err != nil {
			return e.String(http.StatusNotFound, "Property not found")
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("properties: delete %s: %v", propertyID, err)
			return e.String(http.StatusInternalServerError, "Failed to delete property")
		}

		if active := GetActiveProperty(e.Request); active != nil && active.ID == propertyID {
			clearActivePropertyCookie(e)
		}
		return e.NoContent(http.StatusNoContent)
	}
}
