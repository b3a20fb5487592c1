package services

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
)

// drawOp is one recorded drawing call together with the pen in effect.
type drawOp struct {
	kind   string // rect, line, image, text
	style  string
	x, y   float64
	w, h   float64
	text   string
	dashed bool
	color  RGB
	fill   RGB
}

// recordingSurface is a Surface that records draw calls instead of writing a
// PDF.
type recordingSurface struct {
	ops        []drawOp
	dash       []float64
	color      RGB
	fill       RGB
	lineWidth  float64
	err        error
	rejectPNG  bool
	registered map[string]int
	cleared    int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{registered: map[string]int{}}
}

func (s *recordingSurface) SetDrawColor(r, g, b int) { s.color = RGB{r, g, b} }
func (s *recordingSurface) SetFillColor(r, g, b int) { s.fill = RGB{r, g, b} }
func (s *recordingSurface) SetTextColor(r, g, b int) {}
func (s *recordingSurface) SetLineWidth(w float64)   { s.lineWidth = w }
func (s *recordingSurface) SetDashPattern(dash []float64, phase float64) {
	s.dash = dash
}
func (s *recordingSurface) SetFont(family, style string, size float64) {}
func (s *recordingSurface) GetStringWidth(str string) float64 {
	return float64(len(str)) * 4
}

func (s *recordingSurface) record(op drawOp) {
	op.dashed = len(s.dash) > 0
	op.color = s.color
	op.fill = s.fill
	s.ops = append(s.ops, op)
}

func (s *recordingSurface) Rect(x, y, w, h float64, style string) {
	s.record(drawOp{kind: "rect", style: style, x: x, y: y, w: w, h: h})
}

func (s *recordingSurface) Line(x1, y1, x2, y2 float64) {
	s.record(drawOp{kind: "line", x: x1, y: y1, w: x2 - x1, h: y2 - y1})
}

func (s *recordingSurface) Text(x, y float64, txt string) {
	s.record(drawOp{kind: "text", x: x, y: y, text: txt})
}

func (s *recordingSurface) RegisterImageOptionsReader(name string, opts gofpdf.ImageOptions, r io.Reader) *gofpdf.ImageInfoType {
	data, _ := io.ReadAll(r)
	if s.rejectPNG {
		s.err = errors.New("unsupported PNG")
		return nil
	}
	s.registered[name] = len(data)
	return &gofpdf.ImageInfoType{}
}

func (s *recordingSurface) ImageOptions(name string, x, y, w, h float64, flow bool, opts gofpdf.ImageOptions, link int, linkStr string) {
	s.record(drawOp{kind: "image", text: name, x: x, y: y, w: w, h: h})
}

func (s *recordingSurface) Ok() bool     { return s.err == nil }
func (s *recordingSurface) Error() error { return s.err }
func (s *recordingSurface) ClearError() {
	s.err = nil
	s.cleared++
}

func (s *recordingSurface) count(kind string, match func(drawOp) bool) int {
	n := 0
	for _, op := range s.ops {
		if op.kind == kind && (match == nil || match(op)) {
			n++
		}
	}
	return n
}

func isDashed(op drawOp) bool { return op.dashed }
func isSolid(op drawOp) bool  { return !op.dashed }

// testPNG returns a small opaque PNG.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(16, 16, color.Black)
	img.Set(3, 3, color.White)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test PNG: %v", err)
	}
	return buf.Bytes()
}

var _ Surface = (*recordingSurface)(nil)
