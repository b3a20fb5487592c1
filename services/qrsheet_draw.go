package services

import (
	"io"

	"github.com/phpdave11/gofpdf"
)

// Surface is the subset of *gofpdf.Fpdf the sheet renderer draws with.
type Surface interface {
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	SetTextColor(r, g, b int)
	SetLineWidth(width float64)
	SetDashPattern(dashArray []float64, dashPhase float64)
	SetFont(familyStr, styleStr string, size float64)
	GetStringWidth(s string) float64
	Rect(x, y, w, h float64, styleStr string)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, txtStr string)
	RegisterImageOptionsReader(imgName string, options gofpdf.ImageOptions, r io.Reader) *gofpdf.ImageInfoType
	ImageOptions(imageNameStr string, x, y, w, h float64, flow bool, options gofpdf.ImageOptions, link int, linkStr string)
	Ok() bool
	Error() error
	ClearError()
}

var _ Surface = (*gofpdf.Fpdf)(nil)

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B int
}

// StrokeStyle is the pen used for lines and rectangle outlines. A nil Dash is
// a solid line.
type StrokeStyle struct {
	Color RGB
	Width float64
	Dash  []float64
}

var (
	defaultStroke     = StrokeStyle{Color: RGB{0, 0, 0}, Width: 1}
	pageBorderStroke  = StrokeStyle{Color: RGB{0, 0, 0}, Width: 1}
	marginGuideStroke = StrokeStyle{Color: RGB{210, 210, 210}, Width: 0.5}
	placeholderStroke = StrokeStyle{Color: RGB{170, 170, 170}, Width: 0.5}
	internalCutStroke = StrokeStyle{Color: RGB{140, 140, 140}, Width: 0.5, Dash: []float64{4, 3}}
	outerCutStroke    = StrokeStyle{Color: RGB{220, 38, 38}, Width: 0.75}

	placeholderFill = RGB{240, 240, 240}
	labelColor      = RGB{33, 37, 41}
	defaultFill     = RGB{255, 255, 255}
)

// DrawContext owns the pen state of one document. Stroke and fill changes are
// scoped to WithStroke / WithFill and undone before they return.
type DrawContext struct {
	surface Surface
	stroke  StrokeStyle
	fill    RGB
}

// NewDrawContext wraps a surface and puts it into the default pen state.
func NewDrawContext(s Surface) *DrawContext {
	dc := &DrawContext{surface: s}
	dc.applyStroke(defaultStroke)
	dc.applyFill(defaultFill)
	return dc
}

// Surface returns the wrapped surface for drawing calls that need no pen
// changes.
func (dc *DrawContext) Surface() Surface {
	return dc.surface
}

// Stroke reports the pen currently in effect.
func (dc *DrawContext) Stroke() StrokeStyle {
	return dc.stroke
}

// WithStroke runs fn with style applied and restores the previous pen after.
func (dc *DrawContext) WithStroke(style StrokeStyle, fn func()) {
	prev := dc.stroke
	dc.applyStroke(style)
	defer dc.applyStroke(prev)
	fn()
}

// WithFill runs fn with the fill colour set and restores the previous one after.
func (dc *DrawContext) WithFill(c RGB, fn func()) {
	prev := dc.fill
	dc.applyFill(c)
	defer dc.applyFill(prev)
	fn()
}

func (dc *DrawContext) applyStroke(style StrokeStyle) {
	dc.surface.SetDrawColor(style.Color.R, style.Color.G, style.Color.B)
	dc.surface.SetLineWidth(style.Width)
	dc.surface.SetDashPattern(style.Dash, 0)
	dc.stroke = style
}

func (dc *DrawContext) applyFill(c RGB) {
	dc.surface.SetFillColor(c.R, c.G, c.B)
	dc.fill = c
}
