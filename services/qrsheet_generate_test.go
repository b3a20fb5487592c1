package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func sampleItems(t *testing.T, n int) []QRItem {
	t.Helper()
	png := testPNG(t)
	items := make([]QRItem, n)
	for i := range items {
		items[i] = QRItem{ID: fmt.Sprintf("item-%d", i), Name: fmt.Sprintf("Unit %d", i+1), RasterImage: png}
	}
	return items
}

func assertPDF(t *testing.T, doc []byte) {
	t.Helper()
	if len(doc) < 5 {
		t.Fatalf("document too short: %d bytes", len(doc))
	}
	if string(doc[:5]) != "%PDF-" {
		t.Errorf("document does not start with PDF header, got %q", string(doc[:5]))
	}
}

func TestGenerate_Basic(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock()))
	result := g.Generate(sampleItems(t, 7), DefaultExportSettings(), nil)

	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
	assertPDF(t, result.Document)
	if result.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", result.PageCount)
	}
	if result.ItemCount != 7 {
		t.Errorf("ItemCount = %d, want 7", result.ItemCount)
	}
	if result.ProcessingTimeMs != 0 {
		t.Errorf("ProcessingTimeMs = %d with a frozen clock, want 0", result.ProcessingTimeMs)
	}
}

func TestGenerate_EmptyItems(t *testing.T) {
	result := NewGenerator().Generate(nil, DefaultExportSettings(), nil)

	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
	assertPDF(t, result.Document)
	if result.ItemCount != 0 || result.PageCount != 1 {
		t.Errorf("counts = %d items / %d pages, want 0 / 1", result.ItemCount, result.PageCount)
	}

	body, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	for _, want := range []string{`"itemCount":0`, `"pageCount":1`, `"processingTimeMs":`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("result JSON %s missing %s", body, want)
		}
	}
}

func TestGenerate_MissingArtworkKeepsCount(t *testing.T) {
	items := sampleItems(t, 3)
	items[1].RasterImage = nil
	items[2].RasterImage = []byte("data:image/png;base64,!!!!")

	result := NewGenerator().Generate(items, DefaultExportSettings(), nil)

	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
	if result.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", result.ItemCount)
	}
}

func TestGenerate_DataURLArtwork(t *testing.T) {
	png, err := EncodeQRCode("https://example.com/i/abc", 128)
	if err != nil {
		t.Fatalf("EncodeQRCode() error = %v", err)
	}
	items := []QRItem{
		{ID: "a", Name: "Data URL", RasterImage: []byte("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))},
		{ID: "b", Name: "Bare base64", RasterImage: []byte(base64.StdEncoding.EncodeToString(png))},
		{ID: "c", Name: "Raw", RasterImage: png},
	}

	result := NewGenerator().Generate(items, DefaultExportSettings(), nil)
	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
	assertPDF(t, result.Document)
}

func TestGenerate_AllFormatsAndToggles(t *testing.T) {
	items := sampleItems(t, 5)
	for _, format := range PageFormats() {
		for _, cut := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/cutlines=%v", format, cut), func(t *testing.T) {
				s := DefaultExportSettings()
				s.PageFormat = format
				s.IncludeCutlines = cut
				s.IncludeLabels = !cut
				result := NewGenerator().Generate(items, s, nil)
				if !result.Success {
					t.Fatalf("Generate() failed: %s", result.Error)
				}
			})
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	items := sampleItems(t, 9)
	s := DefaultExportSettings()
	g := NewGenerator(WithClock(fixedClock()))

	first := g.Generate(items, s, nil)
	second := g.Generate(items, s, nil)

	if !first.Success || !second.Success {
		t.Fatalf("Generate() failed: %q / %q", first.Error, second.Error)
	}
	if first.PageCount != second.PageCount || first.ItemCount != second.ItemCount {
		t.Errorf("counts differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(ComputeLayout(len(items), s), ComputeLayout(len(items), s)) {
		t.Error("layout differs between runs")
	}
}

func TestGenerate_Progress(t *testing.T) {
	type event struct {
		step string
		pct  int
	}
	var events []event
	NewGenerator().Generate(sampleItems(t, 4), DefaultExportSettings(), func(step string, pct int) {
		events = append(events, event{step, pct})
	})

	if len(events) == 0 {
		t.Fatal("no progress reported")
	}
	if first := events[0]; first.step != StepInit || first.pct != 0 {
		t.Errorf("first event = %+v, want init/0", first)
	}
	if last := events[len(events)-1]; last.step != StepComplete || last.pct != 100 {
		t.Errorf("last event = %+v, want complete/100", last)
	}

	items := 0
	for i, e := range events {
		if i > 0 && e.pct < events[i-1].pct {
			t.Errorf("progress went backwards: %+v after %+v", e, events[i-1])
		}
		if e.step == StepItems {
			items++
		}
	}
	if items != 4 {
		t.Errorf("item progress events = %d, want 4", items)
	}
}

func TestGenerate_InvalidColumnsFails(t *testing.T) {
	s := DefaultExportSettings()
	s.ItemsPerRow = 0
	var completed bool
	result := NewGenerator().Generate(sampleItems(t, 2), s, func(step string, _ int) {
		if step == StepComplete {
			completed = true
		}
	})

	if result.Success {
		t.Fatal("expected failure for zero columns")
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
	if result.Document != nil {
		t.Error("failed run returned a document")
	}
	if completed {
		t.Error("failed run reported completion")
	}
}

func TestGenerate_OversizedMarginStillRenders(t *testing.T) {
	s := DefaultExportSettings()
	s.PageFormat = PageFormatA6
	s.MarginMm = 80
	result := NewGenerator().Generate(sampleItems(t, 3), s, nil)
	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
}

func TestGenerate_StressManyItems(t *testing.T) {
	png := testPNG(t)
	items := make([]QRItem, 200)
	for i := range items {
		items[i] = QRItem{ID: fmt.Sprint(i), Name: fmt.Sprint(i), RasterImage: png}
	}
	s := DefaultExportSettings()
	result := NewGenerator().Generate(items, s, nil)
	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Error)
	}
	if result.PageCount != 1 || result.ItemCount != 200 {
		t.Errorf("counts = %d pages / %d items", result.PageCount, result.ItemCount)
	}
}

func TestGenerate_DocumentParsesAsOnePage(t *testing.T) {
	model.ConfigPath = "disable"

	for _, n := range []int{0, 1, 60} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			result := NewGenerator().Generate(sampleItems(t, n), DefaultExportSettings(), nil)
			if !result.Success {
				t.Fatalf("Generate() failed: %s", result.Error)
			}
			pages, err := api.PageCount(bytes.NewReader(result.Document), model.NewDefaultConfiguration())
			if err != nil {
				t.Fatalf("document does not parse: %v", err)
			}
			if pages != result.PageCount {
				t.Errorf("parsed %d pages, result reports %d", pages, result.PageCount)
			}
		})
	}
}
