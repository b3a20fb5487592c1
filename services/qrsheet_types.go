package services

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PageFormat names a supported paper size.
type PageFormat string

const (
	PageFormatA0      PageFormat = "A0"
	PageFormatA1      PageFormat = "A1"
	PageFormatA2      PageFormat = "A2"
	PageFormatA3      PageFormat = "A3"
	PageFormatA4      PageFormat = "A4"
	PageFormatA5      PageFormat = "A5"
	PageFormatA6      PageFormat = "A6"
	PageFormatLetter  PageFormat = "Letter"
	PageFormatLegal   PageFormat = "Legal"
	PageFormatTabloid PageFormat = "Tabloid"
	PageFormatLedger  PageFormat = "Ledger"
)

// ExportSettings controls how a QR sheet is laid out. It is immutable for one
// generation run.
type ExportSettings struct {
	PageFormat      PageFormat `json:"pageFormat"`
	MarginMm        float64    `json:"marginMm"`
	QRSizeMm        float64    `json:"qrSizeMm"`
	ItemsPerRow     int        `json:"itemsPerRow"`
	IncludeCutlines bool       `json:"includeCutlines"`
	IncludeLabels   bool       `json:"includeLabels"`
}

// DefaultExportSettings returns the settings used when a caller supplies none.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		PageFormat:      PageFormatA4,
		MarginMm:        10,
		QRSizeMm:        40,
		ItemsPerRow:     4,
		IncludeCutlines: true,
		IncludeLabels:   true,
	}
}

var errNoContentArea = errors.New("margin leaves no printable area on the page")

var errNotFinite = errors.New("must be a finite number")

func finiteNumber(value interface{}) error {
	if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return errNotFinite
	}
	return nil
}

// Validate checks the settings before they are handed to the generator. The
// generator itself renders whatever it is given.
func (s ExportSettings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.PageFormat, validation.Required, validation.In(pageFormatValues()...)),
		validation.Field(&s.MarginMm, validation.By(finiteNumber), validation.Min(0.0)),
		validation.Field(&s.QRSizeMm, validation.By(finiteNumber), validation.Required, validation.Min(0.1)),
		validation.Field(&s.ItemsPerRow, validation.Required, validation.Min(1), validation.Max(50)),
	)
	if err != nil {
		return err
	}

	page := ResolvePage(s)
	if page.ContentWidth <= 0 || page.ContentHeight <= 0 {
		return validation.Errors{"marginMm": errNoContentArea}
	}
	return nil
}

// QRItem is one entry of a sheet. RasterImage holds the encoded QR artwork as
// raw image bytes, bare base64, or a data URL; it may be nil.
type QRItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RasterImage []byte `json:"-"`
}

// GenerationResult is returned by Generator.Generate. On failure only Success
// and Error are set.
type GenerationResult struct {
	Success          bool   `json:"success"`
	Document         []byte `json:"-"`
	PageCount        int    `json:"pageCount"`
	ItemCount        int    `json:"itemCount"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Error            string `json:"error,omitempty"`
}

// ProgressFunc receives coarse progress milestones. It is called synchronously
// from the generating goroutine and must not block.
type ProgressFunc func(step string, percentage int)
