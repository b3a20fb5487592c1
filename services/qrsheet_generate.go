package services

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Progress milestones reported by Generator.Generate.
const (
	StepInit     = "init"
	StepDocument = "document"
	StepPage     = "page"
	StepItems    = "items"
	StepCutlines = "cutlines"
	StepFinalize = "finalize"
	StepComplete = "complete"
)

const (
	itemsProgressStart = 20
	itemsProgressEnd   = 80
	sheetPageCount     = 1
)

// Generator renders QR sheets. It holds no per-run state, so one Generator may
// serve concurrent calls.
type Generator struct {
	now     func() time.Time
	creator string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock replaces the wall clock used for timing and document metadata.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithCreator sets the PDF creator metadata.
func WithCreator(creator string) GeneratorOption {
	return func(g *Generator) { g.creator = creator }
}

// NewGenerator returns a Generator with the given options applied.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{now: time.Now, creator: "propertyqr"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate lays out items on a single page and returns the finished PDF.
// Items with missing or bad artwork get a placeholder; any other failure
// yields Success false with no document.
func (g *Generator) Generate(items []QRItem, settings ExportSettings, onProgress ProgressFunc) GenerationResult {
	start := g.now()
	report := func(step string, pct int) {
		if onProgress != nil {
			onProgress(step, pct)
		}
	}

	report(StepInit, 0)
	doc, err := g.render(items, settings, start, report)
	if err != nil {
		return GenerationResult{Success: false, Error: err.Error()}
	}
	report(StepComplete, 100)

	return GenerationResult{
		Success:          true,
		Document:         doc,
		PageCount:        sheetPageCount,
		ItemCount:        len(items),
		ProcessingTimeMs: g.now().Sub(start).Milliseconds(),
	}
}

func (g *Generator) render(items []QRItem, settings ExportSettings, start time.Time, report func(string, int)) (doc []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("generate QR sheet: %v", r)
		}
	}()

	if settings.ItemsPerRow < 1 {
		return nil, errors.New("generate QR sheet: items per row must be at least 1")
	}

	layout := ComputeLayout(len(items), settings)

	pdf := g.newDocument(layout.Page, start)
	report(StepDocument, 10)

	dc := NewDrawContext(pdf)
	composePage(dc, layout)
	report(StepPage, itemsProgressStart)

	n := len(items)
	composeItems(dc, layout, items, settings.IncludeLabels, func(done int) {
		report(StepItems, itemsProgressStart+(itemsProgressEnd-itemsProgressStart)*done/n)
	})

	if settings.IncludeCutlines {
		renderCutlines(dc, layout)
	}
	report(StepCutlines, 85)

	report(StepFinalize, 95)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("generate QR sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate QR sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) newDocument(page PageGeometry, created time.Time) *gofpdf.Fpdf {
	// Portrait keeps Size as given; "L" would swap width and height.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(g.creator, false)
	pdf.SetTitle("QR code sheet", false)
	pdf.SetCreationDate(created)
	pdf.SetCatalogSort(true)
	pdf.AddPage()
	return pdf
}
