package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"propertyqr/services"
)

// QRExportItem is one selectable item on the export form.
type QRExportItem struct {
	ID   string
	Name string
}

// QRExportData drives the QR export settings form.
type QRExportData struct {
	PropertyID   string
	PropertyName string
	Items        []QRExportItem
	Settings     services.ExportSettings
	Formats      []services.PageFormat
	Errors       map[string]string
}

func (d QRExportData) action() string {
	return "/properties/" + d.PropertyID + "/qr/export"
}

// QRExportContent renders the settings form on its own, for HTMX swaps.
func QRExportContent(data QRExportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<section id="qr-export" class="qr-export">`)
		p.raw(`<h1>QR codes: `)
		p.text(data.PropertyName)
		p.raw(`</h1>`)

		p.raw(`<form method="post" action="`)
		p.text(data.action())
		p.raw(`" hx-post="`)
		p.text(data.action())
		p.raw(`" hx-swap="none">`)

		p.raw(`<label>Page format <select name="pageFormat">`)
		for _, f := range data.Formats {
			p.raw(`<option value="`)
			p.text(string(f))
			p.raw(`"`)
			if f == data.Settings.PageFormat {
				p.raw(` selected`)
			}
			p.raw(`>`)
			p.text(string(f))
			p.raw(`</option>`)
		}
		p.raw(`</select></label>`)
		p.fieldError(data.Errors, "pageFormat")

		p.number("Margin (mm)", "marginMm", data.Settings.MarginMm, "0", "0.5")
		p.fieldError(data.Errors, "marginMm")
		p.number("QR size (mm)", "qrSizeMm", data.Settings.QRSizeMm, "1", "0.5")
		p.fieldError(data.Errors, "qrSizeMm")
		p.number("Items per row", "itemsPerRow", float64(data.Settings.ItemsPerRow), "1", "1")
		p.fieldError(data.Errors, "itemsPerRow")

		p.checkbox("Cut lines", "includeCutlines", data.Settings.IncludeCutlines)
		p.checkbox("Labels", "includeLabels", data.Settings.IncludeLabels)

		if len(data.Items) == 0 {
			p.raw(`<p class="empty">This property has no items yet.</p>`)
		} else {
			p.raw(`<fieldset><legend>Items (none selected exports all)</legend>`)
			for _, it := range data.Items {
				p.raw(`<label><input type="checkbox" name="item" value="`)
				p.text(it.ID)
				p.raw(`"> `)
				p.text(it.Name)
				p.raw(`</label>`)
			}
			p.raw(`</fieldset>`)
		}

		p.raw(`<button type="submit">Download PDF</button>`)
		p.raw(`<button type="submit" formaction="/properties/`)
		p.text(data.PropertyID)
		p.raw(`/qr/manifest">Download layout manifest</button>`)
		p.raw(`</form></section>`)
		return p.err
	})
}

// QRExportPage renders the settings form inside a full HTML document.
func QRExportPage(data QRExportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text(data.PropertyName)
		p.raw(` - QR export</title><script src="https://unpkg.com/htmx.org@2.0.4"></script></head><body>`)
		if p.err != nil {
			return p.err
		}
		if err := QRExportContent(data).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</body></html>`)
		return p.err
	})
}

// printer writes markup and remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) number(label, name string, value float64, minValue, step string) {
	p.raw(fmt.Sprintf(`<label>%s <input type="number" name="%s" min="%s" step="%s" value="`,
		templ.EscapeString(label), name, minValue, step))
	p.text(strconv.FormatFloat(value, 'f', -1, 64))
	p.raw(`"></label>`)
}

func (p *printer) checkbox(label, name string, checked bool) {
	p.raw(`<label><input type="checkbox" name="` + name + `" value="true"`)
	if checked {
		p.raw(` checked`)
	}
	p.raw(`> `)
	p.text(label)
	p.raw(`</label>`)
}

func (p *printer) fieldError(errs map[string]string, field string) {
	if msg, ok := errs[field]; ok {
		p.raw(`<p class="error" data-field="` + field + `">`)
		p.text(msg)
		p.raw(`</p>`)
	}
}
