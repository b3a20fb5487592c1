package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandlePropertyActivate sets the active property cookie and sends the
// browser to the property's QR export page.
func HandlePropertyActivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("properties", propertyID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Property not found")
		}

		// 30 days
		http.SetCookie(e.Response, &http.Cookie{
			Name:     activePropertyCookie,
			Value:    propertyID,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		SetToast(e, "success", "Property activated")
		e.Response.Header().Set("HX-Redirect", "/properties/"+propertyID+"/qr/export")
		return e.String(http.StatusOK, "OK")
	}
}

// HandlePropertyDeactivate clears the active property cookie.
func HandlePropertyDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clearActivePropertyCookie(e)
		SetToast(e, "success", "Property deactivated")
		e.Response.Header().Set("HX-Redirect", "/")
		return e.String(http.StatusOK, "OK")
	}
}
