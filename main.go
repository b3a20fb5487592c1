package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"propertyqr/collections"
	"propertyqr/commands"
	"propertyqr/handlers"
)

func main() {
	app := pocketbase.New()

	var publicURL string
	app.RootCmd.PersistentFlags().StringVar(
		&publicURL,
		"publicURL",
		"",
		"the public base URL printed QR codes point at (defaults to the request host)",
	)
	app.RootCmd.AddCommand(commands.NewQRSheetCommand())

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.ActivePropertyMiddleware(app))

		// ── Property activation ─────────────────────────────────
		se.Router.POST("/properties/{id}/activate", handlers.HandlePropertyActivate(app))
		se.Router.POST("/properties/deactivate", handlers.HandlePropertyDeactivate(app))

		// ── Property CRUD ───────────────────────────────────────
		se.Router.GET("/api/properties", handlers.HandlePropertyList(app))
		se.Router.POST("/api/properties", handlers.HandlePropertyCreate(app))
		se.Router.GET("/api/properties/{id}", handlers.HandlePropertyView(app))
		se.Router.DELETE("/api/properties/{id}", handlers.HandlePropertyDelete(app))

		// ── Items ───────────────────────────────────────────────
		se.Router.GET("/api/items/import/template", handlers.HandleItemImportTemplate())
		se.Router.GET("/api/properties/{id}/items", handlers.HandleItemList(app))
		se.Router.POST("/api/properties/{id}/items", handlers.HandleItemCreate(app))
		se.Router.POST("/api/properties/{id}/items/import", handlers.HandleItemImport(app))
		se.Router.DELETE("/api/properties/{id}/items/{itemId}", handlers.HandleItemDelete(app))

		// ── Visits, reactions, analytics ────────────────────────
		se.Router.GET("/i/{itemId}", handlers.HandleItemVisit(app))
		se.Router.POST("/i/{itemId}/reactions", handlers.HandleItemReaction(app))
		se.Router.GET("/api/properties/{id}/analytics", handlers.HandleAnalytics(app))
		se.Router.GET("/api/properties/{id}/analytics/export/pdf", handlers.HandleAnalyticsExportPDF(app))
		se.Router.GET("/api/properties/{id}/analytics/export/excel", handlers.HandleAnalyticsExportExcel(app))

		// ── QR export ───────────────────────────────────────────
		se.Router.GET("/properties/{id}/qr/export", handlers.HandleQRExportPage(app))
		se.Router.POST("/properties/{id}/qr/export", handlers.HandleQRExport(app, publicURL))
		se.Router.POST("/properties/{id}/qr/manifest", handlers.HandleQRManifest(app))

		// Home goes to the active property's export page when one is set
		se.Router.GET("/", func(e *core.RequestEvent) error {
			if active := handlers.GetActiveProperty(e.Request); active != nil {
				return e.Redirect(http.StatusFound, "/properties/"+active.ID+"/qr/export")
			}
			return e.Redirect(http.StatusFound, "/api/properties")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
