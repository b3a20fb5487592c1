package services

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

const labelFontFamily = "Helvetica"

// composePage draws the page border and, when there is a margin, the lighter
// margin guide. It runs once before any item is placed.
func composePage(dc *DrawContext, layout Layout) {
	page := layout.Page
	s := dc.Surface()

	dc.WithStroke(pageBorderStroke, func() {
		s.Rect(0, 0, page.Width, page.Height, "D")
	})

	if page.Margin > 0 {
		dc.WithStroke(marginGuideStroke, func() {
			s.Rect(page.Margin, page.Margin, page.ContentWidth, page.ContentHeight, "D")
		})
	}
}

// composeItems places every item's artwork (or a placeholder) and optional
// label. progress receives the number of items placed so far.
func composeItems(dc *DrawContext, layout Layout, items []QRItem, includeLabels bool, progress func(done int)) {
	if includeLabels {
		dc.Surface().SetFont(labelFontFamily, "", layout.LabelFontSize)
		dc.Surface().SetTextColor(labelColor.R, labelColor.G, labelColor.B)
	}

	for i, item := range items {
		p := layout.Placements[i]
		drawArtwork(dc, fmt.Sprintf("qr-%d", i), item.RasterImage, p.QRX, p.QRY, layout.QRSize)
		if includeLabels {
			drawLabel(dc, item.Name, p, layout.QRSize)
		}
		if progress != nil {
			progress(i + 1)
		}
	}
}

// drawArtwork embeds the decoded artwork, falling back to a placeholder when
// the payload is missing or cannot be decoded or embedded.
func drawArtwork(dc *DrawContext, name string, payload []byte, x, y, size float64) {
	s := dc.Surface()

	if png, ok := prepareArtwork(payload); ok {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		s.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		if s.Ok() {
			s.ImageOptions(name, x, y, size, size, false, opts, 0, "")
			return
		}
		// The writer latches errors; a rejected image must not fail the sheet.
		s.ClearError()
	}

	drawPlaceholder(dc, x, y, size)
}

func prepareArtwork(payload []byte) ([]byte, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	img, err := DecodeArtwork(payload)
	if err != nil {
		return nil, false
	}
	png, err := encodeArtworkPNG(img)
	if err != nil {
		return nil, false
	}
	return png, true
}

func drawPlaceholder(dc *DrawContext, x, y, size float64) {
	dc.WithFill(placeholderFill, func() {
		dc.WithStroke(placeholderStroke, func() {
			dc.Surface().Rect(x, y, size, size, "FD")
		})
	})
}

// drawLabel writes the item name on a single line, centred under the artwork.
// Long names are allowed to overflow the cell.
func drawLabel(dc *DrawContext, name string, p Placement, qrSize float64) {
	if name == "" {
		return
	}
	s := dc.Surface()
	text := toWinAnsi(name)
	width := s.GetStringWidth(text)
	s.Text(p.QRX+(qrSize-width)/2, p.QRY+qrSize+LabelGap, text)
}

// toWinAnsi transcodes UTF-8 to the single-byte encoding of the PDF core
// fonts. Characters outside Windows-1252 become '?'.
func toWinAnsi(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return string(out)
}
