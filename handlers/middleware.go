package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type contextKey string

const ActivePropertyKey contextKey = "activeProperty"

const activePropertyCookie = "active_property"

// ActiveProperty is the property selected with the property switcher.
type ActiveProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetActiveProperty extracts the active property from the request context.
func GetActiveProperty(r *http.Request) *ActiveProperty {
	if val, ok := r.Context().Value(ActivePropertyKey).(*ActiveProperty); ok {
		return val
	}
	return nil
}

// ActivePropertyMiddleware reads the "active_property" cookie, loads the
// property record and stores it in the request context. A cookie pointing at
// a deleted property is cleared.
func ActivePropertyMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var active *ActiveProperty

		cookie, err := e.Request.Cookie(activePropertyCookie)
		if err == nil && cookie.Value != "" {
			rec, err := app.FindRecordById("properties", cookie.Value)
			if err == nil {
				active = &ActiveProperty{ID: rec.Id, Name: rec.GetString("name")}
			} else {
				log.Printf("middleware: active property %s not found, clearing cookie", cookie.Value)
				clearActivePropertyCookie(e)
			}
		}

		ctx := context.WithValue(e.Request.Context(), ActivePropertyKey, active)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

func clearActivePropertyCookie(e *core.RequestEvent) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:   activePropertyCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
