package handlers

import (
	"log"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"propertyqr/collections"
	"propertyqr/services"
)

// ReactionInput is the body accepted by the reaction endpoint.
type ReactionInput struct {
	Reaction string `json:"reaction" form:"reaction"`
}

// Validate checks that the reaction is one of the known kinds.
func (in ReactionInput) Validate() error {
	allowed := make([]any, len(collections.ReactionValues))
	for i, v := range collections.ReactionValues {
		allowed[i] = v
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Reaction, validation.Required, validation.In(allowed...)),
	)
}

// HandleItemVisit is the target of every printed QR code. It records a visit
// and returns the item with its property.
func HandleItemVisit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")
		item, err := app.FindRecordById("items", itemID)
		if err != nil {
			return e.String(http.StatusNotFound, "Item not found")
		}

		visits, err := app.FindCollectionByNameOrId("item_visits")
		if err != nil {
			log.Printf("visits: collection not found: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		visit := core.NewRecord(visits)
		visit.Set("item", item.Id)
		visit.Set("user_agent", truncate(e.Request.UserAgent(), 500))
		visit.Set("referrer", truncate(e.Request.Referer(), 500))
		if err := app.Save(visit); err != nil {
			// The visitor still gets the item.
			log.Printf("visits: record visit for %s: %v", item.Id, err)
		}

		resp := map[string]any{
			"item": map[string]any{
				"id":          item.Id,
				"name":        item.GetString("name"),
				"description": item.GetString("description"),
			},
		}
		if property, err := app.FindRecordById("properties", item.GetString("property")); err == nil {
			resp["property"] = map[string]any{
				"id":      property.Id,
				"name":    property.GetString("name"),
				"address": property.GetString("address"),
			}
		}
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleItemReaction records a like, dislike or love for an item.
func HandleItemReaction(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("itemId")
		item, err := app.FindRecordById("items", itemID)
		if err != nil {
			return e.String(http.StatusNotFound, "Item not found")
		}

		var in ReactionInput
		if err := e.BindBody(&in); err != nil {
			return badRequest(e, err)
		}
		in.Reaction = strings.ToLower(strings.TrimSpace(in.Reaction))
		if err := in.Validate(); err != nil {
			return badRequest(e, err)
		}

		col, err := app.FindCollectionByNameOrId("item_reactions")
		if err != nil {
			log.Printf("reactions: collection not found: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}
		rec := core.NewRecord(col)
		rec.Set("item", item.Id)
		rec.Set("reaction", in.Reaction)
		if err := app.Save(rec); err != nil {
			log.Printf("reactions: save for %s: %v", item.Id, err)
			return e.String(http.StatusInternalServerError, "Failed to save reaction")
		}
		return e.JSON(http.StatusCreated, map[string]string{"item": item.Id, "reaction": in.Reaction})
	}
}

// HandleAnalytics returns per-item visit and reaction counts for a property.
func HandleAnalytics(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildAnalyticsData(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("analytics: %v", err)
			return e.String(http.StatusNotFound, "Property not found")
		}
		return e.JSON(http.StatusOK, data)
	}
}

// HandleAnalyticsExportPDF downloads the analytics report as a PDF.
func HandleAnalyticsExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildAnalyticsData(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("analytics_pdf: %v", err)
			return e.String(http.StatusNotFound, "Property not found")
		}

		doc, err := services.GenerateAnalyticsPDF(data)
		if err != nil {
			log.Printf("analytics_pdf: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF")
		}
		return sendAttachment(e, contentTypePDF, downloadName(data.PropertyName, "analytics", "pdf"), doc)
	}
}

// HandleAnalyticsExportExcel downloads the analytics report as a spreadsheet.
func HandleAnalyticsExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildAnalyticsData(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("analytics_excel: %v", err)
			return e.String(http.StatusNotFound, "Property not found")
		}

		doc, err := services.GenerateAnalyticsExcel(data)
		if err != nil {
			log.Printf("analytics_excel: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return sendAttachment(e, contentTypeXLSX, downloadName(data.PropertyName, "analytics", "xlsx"), doc)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
