package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"propertyqr/services"
	"propertyqr/templates"
)

// HandleQRExportPage renders the QR sheet settings form for a property.
func HandleQRExportPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		propertyID := e.Request.PathValue("id")
		property, err := app.FindRecordById("properties", propertyID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Property not found")
		}

		rows, err := services.LoadPropertyItems(app, propertyID, nil)
		if err != nil {
			log.Printf("qr_export: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to load items")
		}

		data := templates.QRExportData{
			PropertyID:   property.Id,
			PropertyName: property.GetString("name"),
			Items:        make([]templates.QRExportItem, 0, len(rows)),
			Settings:     services.DefaultExportSettings(),
			Formats:      services.PageFormats(),
		}
		for _, r := range rows {
			data.Items = append(data.Items, templates.QRExportItem{ID: r.ID, Name: r.Name})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.QRExportContent(data)
		} else {
			component = templates.QRExportPage(data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleQRExport renders the selected items of a property onto a printable
// QR sheet and returns it as a PDF download. QR codes point at
// publicURL + "/i/{itemId}"; an empty publicURL falls back to the request host.
func HandleQRExport(app *pocketbase.PocketBase, publicURL string) func(*core.RequestEvent) error {
	generator := services.NewGenerator()

	return func(e *core.RequestEvent) error {
		req, respErr := loadQRExportRequest(app, e)
		if req == nil {
			return respErr
		}

		items := services.BuildQRItems(req.rows, resolveBaseURL(e, publicURL), services.DefaultQRPixels)
		result := generator.Generate(items, req.settings, nil)
		if !result.Success {
			log.Printf("qr_export: property %s: %s", req.propertyID, result.Error)
			return e.String(http.StatusInternalServerError, "Failed to generate QR sheet: "+result.Error)
		}

		log.Printf("qr_export: property %s: %d items on %d page(s), %s in %dms",
			req.propertyID, result.ItemCount, result.PageCount,
			humanize.Bytes(uint64(len(result.Document))), result.ProcessingTimeMs)

		h := e.Response.Header()
		h.Set("X-QR-Item-Count", strconv.Itoa(result.ItemCount))
		h.Set("X-QR-Page-Count", strconv.Itoa(result.PageCount))
		h.Set("X-QR-Processing-Ms", strconv.FormatInt(result.ProcessingTimeMs, 10))
		return sendAttachment(e, contentTypePDF, downloadName(req.propertyName, "qr-codes", "pdf"), result.Document)
	}
}

// HandleQRManifest returns the layout manifest spreadsheet for the same
// inputs as HandleQRExport.
func HandleQRManifest(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, respErr := loadQRExportRequest(app, e)
		if req == nil {
			return respErr
		}

		items := make([]services.QRItem, len(req.rows))
		for i, r := range req.rows {
			items[i] = services.QRItem{ID: r.ID, Name: r.Name}
		}

		data, err := services.GenerateLayoutManifest(items, req.settings)
		if err != nil {
			log.Printf("qr_manifest: property %s: %v", req.propertyID, err)
			return e.String(http.StatusInternalServerError, "Failed to generate layout manifest")
		}
		return sendAttachment(e, contentTypeXLSX, downloadName(req.propertyName, "qr-layout", "xlsx"), data)
	}
}

type qrExportRequest struct {
	propertyID   string
	propertyName string
	settings     services.ExportSettings
	rows         []services.ItemRow
}

// loadQRExportRequest resolves the property, settings and item selection of
// an export. On failure it returns a nil request, the response has already
// been written and the returned error is the handler's result.
func loadQRExportRequest(app *pocketbase.PocketBase, e *core.RequestEvent) (*qrExportRequest, error) {
	propertyID := e.Request.PathValue("id")
	property, err := app.FindRecordById("properties", propertyID)
	if err != nil {
		return nil, e.String(http.StatusNotFound, "Property not found")
	}

	if err := e.Request.ParseForm(); err != nil {
		return nil, e.String(http.StatusBadRequest, "Invalid form data")
	}

	settings, err := parseExportSettings(e.Request.Form)
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		return nil, badRequest(e, err)
	}

	rows, err := services.LoadPropertyItems(app, propertyID, e.Request.Form["item"])
	if err != nil {
		log.Printf("qr_export: %v", err)
		return nil, e.String(http.StatusInternalServerError, "Failed to load items")
	}

	return &qrExportRequest{
		propertyID:   property.Id,
		propertyName: property.GetString("name"),
		settings:     settings,
		rows:         rows,
	}, nil
}

// parseExportSettings reads export settings from submitted form values.
// Missing numeric fields and the page format keep their defaults; a missing
// checkbox means false.
func parseExportSettings(form map[string][]string) (services.ExportSettings, error) {
	s := services.DefaultExportSettings()
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	errs := validation.Errors{}
	if v := get("pageFormat"); v != "" {
		s.PageFormat = services.PageFormat(v)
	}
	if v := get("marginMm"); v != "" {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			errs["marginMm"] = errors.New("must be a number")
		}
		s.MarginMm = f
	}
	if v := get("qrSizeMm"); v != "" {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			errs["qrSizeMm"] = errors.New("must be a number")
		}
		s.QRSizeMm = f
	}
	if v := get("itemsPerRow"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			errs["itemsPerRow"] = errors.New("must be a whole number")
		}
		s.ItemsPerRow = n
	}
	s.IncludeCutlines = formBool(get("includeCutlines"))
	s.IncludeLabels = formBool(get("includeLabels"))

	if len(errs) > 0 {
		return s, errs
	}
	return s, nil
}

func formBool(v string) bool {
	if strings.EqualFold(v, "on") {
		return true
	}
	return cast.ToBool(v)
}

// resolveBaseURL returns the configured public URL, or the scheme and host
// the request arrived on.
func resolveBaseURL(e *core.RequestEvent, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if e.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := e.Request.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + e.Request.Host
}
