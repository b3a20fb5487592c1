package services

import (
	"reflect"
	"testing"
)

func composeSettings() ExportSettings {
	return ExportSettings{PageFormat: PageFormatA4, MarginMm: 10, QRSizeMm: 30, ItemsPerRow: 3}
}

func TestComposePage_BorderAndMarginGuide(t *testing.T) {
	s := newRecordingSurface()
	dc := NewDrawContext(s)
	layout := ComputeLayout(3, composeSettings())

	composePage(dc, layout)

	if got := s.count("rect", nil); got != 2 {
		t.Fatalf("rects = %d, want 2 (border + margin guide)", got)
	}
	border := s.ops[0]
	if border.x != 0 || border.y != 0 || border.w != layout.Page.Width || border.h != layout.Page.Height {
		t.Errorf("border = %+v", border)
	}
	guide := s.ops[1]
	if guide.color != marginGuideStroke.Color {
		t.Errorf("margin guide colour = %v, want %v", guide.color, marginGuideStroke.Color)
	}
}

func TestComposePage_NoMarginGuideWithoutMargin(t *testing.T) {
	s := newRecordingSurface()
	settings := composeSettings()
	settings.MarginMm = 0

	composePage(NewDrawContext(s), ComputeLayout(3, settings))

	if got := s.count("rect", nil); got != 1 {
		t.Errorf("rects = %d, want 1 (border only)", got)
	}
}

func TestComposeItems_ArtworkAndPlaceholders(t *testing.T) {
	s := newRecordingSurface()
	dc := NewDrawContext(s)
	png := testPNG(t)
	items := []QRItem{
		{ID: "a", Name: "Kitchen", RasterImage: png},
		{ID: "b", Name: "Garage", RasterImage: nil},
		{ID: "c", Name: "Porch", RasterImage: []byte("not an image at all!")},
	}
	layout := ComputeLayout(len(items), composeSettings())

	var done []int
	composeItems(dc, layout, items, false, func(n int) { done = append(done, n) })

	if got := s.count("image", nil); got != 1 {
		t.Errorf("images = %d, want 1", got)
	}
	placeholders := s.count("rect", func(op drawOp) bool { return op.style == "FD" })
	if placeholders != 2 {
		t.Errorf("placeholders = %d, want 2", placeholders)
	}
	for _, op := range s.ops {
		if op.kind == "rect" && op.fill != placeholderFill {
			t.Errorf("placeholder fill = %v, want %v", op.fill, placeholderFill)
		}
	}
	if !reflect.DeepEqual(done, []int{1, 2, 3}) {
		t.Errorf("progress = %v, want [1 2 3]", done)
	}

	img := s.ops[0]
	p := layout.Placements[0]
	if img.x != p.QRX || img.y != p.QRY || img.w != layout.QRSize || img.h != layout.QRSize {
		t.Errorf("image op = %+v, want at (%v, %v) size %v", img, p.QRX, p.QRY, layout.QRSize)
	}
	if s.fill != defaultFill || s.dash != nil {
		t.Errorf("pen not restored: fill %v dash %v", s.fill, s.dash)
	}
}

func TestComposeItems_RejectedImageFallsBack(t *testing.T) {
	s := newRecordingSurface()
	s.rejectPNG = true
	items := []QRItem{{ID: "a", Name: "A", RasterImage: testPNG(t)}}

	composeItems(NewDrawContext(s), ComputeLayout(1, composeSettings()), items, false, nil)

	if s.cleared != 1 {
		t.Errorf("ClearError calls = %d, want 1", s.cleared)
	}
	if !s.Ok() {
		t.Error("surface left in error state")
	}
	if got := s.count("rect", nil); got != 1 {
		t.Errorf("placeholders = %d, want 1", got)
	}
}

func TestComposeItems_Labels(t *testing.T) {
	s := newRecordingSurface()
	items := []QRItem{
		{ID: "1", Name: "Unit 1"},
		{ID: "2", Name: ""},
		{ID: "3", Name: "Café ☕"},
	}
	settings := composeSettings()
	settings.IncludeLabels = true
	layout := ComputeLayout(len(items), settings)

	composeItems(NewDrawContext(s), layout, items, true, nil)

	var texts []drawOp
	for _, op := range s.ops {
		if op.kind == "text" {
			texts = append(texts, op)
		}
	}
	if len(texts) != 2 {
		t.Fatalf("labels = %d, want 2", len(texts))
	}

	p := layout.Placements[0]
	wantX := p.QRX + (layout.QRSize-s.GetStringWidth("Unit 1"))/2
	wantY := p.QRY + layout.QRSize + LabelGap
	if !approxEqual(texts[0].x, wantX) || !approxEqual(texts[0].y, wantY) {
		t.Errorf("label at (%v, %v), want (%v, %v)", texts[0].x, texts[0].y, wantX, wantY)
	}
	if texts[1].text != "Caf\xe9 ?" {
		t.Errorf("label text = %q, want Windows-1252 with replacement", texts[1].text)
	}
}

func TestRenderCutlines_WithMargin(t *testing.T) {
	s := newRecordingSurface()
	dc := NewDrawContext(s)
	layout := ComputeLayout(7, composeSettings()) // 3 columns, 3 rows

	renderCutlines(dc, layout)

	if got := s.count("line", isDashed); got != 4 {
		t.Errorf("dashed lines = %d, want 4", got)
	}
	solid := s.count("line", isSolid)
	if solid != 4 {
		t.Errorf("solid frame lines = %d, want 4", solid)
	}
	for _, op := range s.ops {
		if op.kind == "line" && !op.dashed && op.color != outerCutStroke.Color {
			t.Errorf("frame colour = %v, want %v", op.color, outerCutStroke.Color)
		}
		if op.kind == "line" && op.dashed && op.color == outerCutStroke.Color {
			t.Error("internal cutline uses the outer frame colour")
		}
	}
	if !reflect.DeepEqual(dc.Stroke(), defaultStroke) || s.dash != nil {
		t.Errorf("stroke not restored: %+v dash %v", dc.Stroke(), s.dash)
	}
}

func TestRenderCutlines_ZeroMarginSkipsFrame(t *testing.T) {
	s := newRecordingSurface()
	settings := composeSettings()
	settings.MarginMm = 0
	layout := ComputeLayout(6, settings) // 3 columns, 2 rows

	renderCutlines(NewDrawContext(s), layout)

	if got := s.count("line", isDashed); got != 3 {
		t.Errorf("dashed lines = %d, want 3", got)
	}
	if got := s.count("line", isSolid); got != 0 {
		t.Errorf("solid lines = %d, want 0", got)
	}
}

func TestRenderCutlines_EmptySheetDrawsNothing(t *testing.T) {
	s := newRecordingSurface()
	dc := NewDrawContext(s)
	layout := ComputeLayout(0, DefaultExportSettings())

	composePage(dc, layout)
	renderCutlines(dc, layout)

	if got := s.count("line", nil); got != 0 {
		t.Errorf("lines = %d, want 0 on an empty sheet", got)
	}
	if got := s.count("rect", nil); got != 2 {
		t.Errorf("rects = %d, want 2 (border + margin guide)", got)
	}
}

func TestRenderCutlines_InternalLinesSpanContent(t *testing.T) {
	s := newRecordingSurface()
	layout := ComputeLayout(2, composeSettings()) // 3 columns, 1 row

	renderCutlines(NewDrawContext(s), layout)

	for _, op := range s.ops {
		if op.kind != "line" || !op.dashed {
			continue
		}
		if op.y != layout.Page.Margin || !approxEqual(op.h, layout.Page.ContentHeight) {
			t.Errorf("vertical cutline from y=%v len %v, want y=%v len %v", op.y, op.h, layout.Page.Margin, layout.Page.ContentHeight)
		}
	}
	if got := s.count("line", isDashed); got != 2 {
		t.Errorf("dashed lines = %d, want 2", got)
	}
}

func TestDrawContext_WithStrokeNests(t *testing.T) {
	s := newRecordingSurface()
	dc := NewDrawContext(s)

	dc.WithStroke(internalCutStroke, func() {
		dc.WithStroke(outerCutStroke, func() {
			if s.dash != nil {
				t.Error("inner solid stroke still dashed")
			}
		})
		if len(s.dash) == 0 {
			t.Error("outer dashed stroke not restored after inner scope")
		}
	})

	if s.dash != nil || s.color != defaultStroke.Color || s.lineWidth != defaultStroke.Width {
		t.Errorf("default pen not restored: dash %v colour %v width %v", s.dash, s.color, s.lineWidth)
	}
}
