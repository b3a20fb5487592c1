package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"propertyqr/services"
)

// HandleItemList returns a property's items in display order.
func HandleItemList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("properties", propertyID); err != nil {
			return e.String(http.StatusNotFound, "Property not found")
		}

		items, err := services.LoadPropertyItems(app, propertyID, nil)
		if err != nil {
			log.Printf("items: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load items")
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleItemCreate adds one item at the end of a property's list.
func HandleItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("properties", propertyID); err != nil {
			return e.String(http.StatusNotFound, "Property not found")
		}

		var in services.ItemInput
		if err := e.BindBody(&in); err != nil {
			return badRequest(e, err)
		}
		in.Name = strings.TrimSpace(in.Name)
		if err := in.Validate(); err != nil {
			return badRequest(e, err)
		}

		created, err := services.CreateItems(app, propertyID, []services.ItemInput{in})
		if err != nil {
			log.Printf("items: create: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to create item")
		}
		return e.JSON(http.StatusCreated, created[0])
	}
}

// HandleItemDelete removes an item that belongs to the property in the path.
func HandleItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		itemID := e.Request.PathValue("itemId")

		rec, err := app.FindRecordById("items", itemID)
		if err != nil || rec.GetString("property") != propertyID {
			return e.String(http.StatusNotFound, "Item not found")
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("items: delete %s: %v", itemID, err)
			return e.String(http.StatusInternalServerError, "Failed to delete item")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleItemImport accepts a .csv or .xlsx upload in the "file" field and
// creates every valid row. Invalid rows are reported and skipped; an upload
// with no valid rows is rejected.
func HandleItemImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("properties", propertyID); err != nil {
			return e.String(http.StatusNotFound, "Property not found")
		}

		// 10MB
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return e.String(http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.String(http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseItemFile(file, header.Filename)
		if err != nil {
			return badRequest(e, err)
		}
		if len(result.Items) == 0 {
			return e.JSON(http.StatusBadRequest, result)
		}

		if _, err := services.CreateItems(app, propertyID, result.Items); err != nil {
			log.Printf("items: import into %s: %v", propertyID, err)
			return e.String(http.StatusInternalServerError, "Failed to import items")
		}

		log.Printf("items: imported %d of %d rows into %s", result.ValidRows, result.TotalRows, propertyID)
		return e.JSON(http.StatusOK, result)
	}
}

// HandleItemImportTemplate downloads an empty import spreadsheet.
func HandleItemImportTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateImportTemplate()
		if err != nil {
			log.Printf("items: import template: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate template")
		}
		return sendAttachment(e, contentTypeXLSX, "item_import_template.xlsx", data)
	}
}
