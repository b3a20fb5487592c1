package services

import "math"

// PointsPerMillimetre converts millimetres to PDF points (1in = 25.4mm = 72pt).
// Every millimetre input goes through this one constant.
const PointsPerMillimetre = 72.0 / 25.4

// Fixed cell geometry, in points.
const (
	LabelBand        = 9.0
	CellPadding      = 10.0
	LabelGap         = 8.0
	MinLabelFontSize = 5.0
	MaxLabelFontSize = 11.0
	labelFontRatio   = 0.08
)

// pageSizes holds portrait width x height in points.
var pageSizes = map[PageFormat][2]float64{
	PageFormatA0:      {2383.94, 3370.39},
	PageFormatA1:      {1683.78, 2383.94},
	PageFormatA2:      {1190.55, 1683.78},
	PageFormatA3:      {841.89, 1190.55},
	PageFormatA4:      {595.28, 841.89},
	PageFormatA5:      {419.53, 595.28},
	PageFormatA6:      {297.64, 419.53},
	PageFormatLetter:  {612, 792},
	PageFormatLegal:   {612, 1008},
	PageFormatTabloid: {792, 1224},
	PageFormatLedger:  {1224, 792},
}

// pageFormatOrder is the display order used by forms and validation.
var pageFormatOrder = []PageFormat{
	PageFormatA0, PageFormatA1, PageFormatA2, PageFormatA3, PageFormatA4, PageFormatA5, PageFormatA6,
	PageFormatLetter, PageFormatLegal, PageFormatTabloid, PageFormatLedger,
}

// PageFormats returns every supported paper format.
func PageFormats() []PageFormat {
	out := make([]PageFormat, len(pageFormatOrder))
	copy(out, pageFormatOrder)
	return out
}

func pageFormatValues() []interface{} {
	values := make([]interface{}, len(pageFormatOrder))
	for i, f := range pageFormatOrder {
		values[i] = f
	}
	return values
}

// MillimetresToPoints converts a length in millimetres to points.
func MillimetresToPoints(mm float64) float64 {
	return mm * PointsPerMillimetre
}

// PointsToMillimetres is the inverse of MillimetresToPoints.
func PointsToMillimetres(pt float64) float64 {
	return pt / PointsPerMillimetre
}

// PageSize looks up a paper format. Unknown formats fall back to A4.
func PageSize(format PageFormat) (width, height float64) {
	size, ok := pageSizes[format]
	if !ok {
		size = pageSizes[PageFormatA4]
	}
	return size[0], size[1]
}

// PageGeometry is the resolved page in points.
type PageGeometry struct {
	Width         float64
	Height        float64
	Margin        float64
	ContentWidth  float64
	ContentHeight float64
}

// ResolvePage converts the page format and margin to points. The margin is not
// clamped: a margin that swallows the page yields a non-positive content area.
func ResolvePage(settings ExportSettings) PageGeometry {
	w, h := PageSize(settings.PageFormat)
	margin := MillimetresToPoints(settings.MarginMm)
	return PageGeometry{
		Width:         w,
		Height:        h,
		Margin:        margin,
		ContentWidth:  w - 2*margin,
		ContentHeight: h - 2*margin,
	}
}

// Grid is the row/column arrangement for one run.
type Grid struct {
	Columns    int
	Rows       int
	CellWidth  float64
	CellHeight float64
}

// ResolveGrid sizes the cells so that every row fits on the page. An empty
// item list yields zero rows and a zero cell height.
func ResolveGrid(page PageGeometry, itemCount, itemsPerRow int) Grid {
	g := Grid{
		Columns:   itemsPerRow,
		CellWidth: page.ContentWidth / float64(itemsPerRow),
	}
	if itemCount > 0 {
		g.Rows = (itemCount + itemsPerRow - 1) / itemsPerRow
		g.CellHeight = page.ContentHeight / float64(g.Rows)
	}
	return g
}

// CellPosition maps an item index to its row-major grid position.
func CellPosition(index, columns int) (row, col int) {
	return index / columns, index % columns
}

// Placement is the computed geometry of one item on the sheet.
type Placement struct {
	Index int
	Row   int
	Col   int
	CellX float64
	CellY float64
	QRX   float64
	QRY   float64
}

// Layout is the full geometry of one generation run.
type Layout struct {
	Page          PageGeometry
	Grid          Grid
	QRSize        float64
	LabelBand     float64
	LabelFontSize float64
	Placements    []Placement
}

// LabelFontSize scales the label font with the artwork, bounded to a legible
// range.
func LabelFontSize(qrSize float64) float64 {
	return math.Min(MaxLabelFontSize, math.Max(MinLabelFontSize, qrSize*labelFontRatio))
}

// ComputeLayout resolves page, grid and every item placement. It is pure: the
// same inputs always give the same layout.
func ComputeLayout(itemCount int, settings ExportSettings) Layout {
	page := ResolvePage(settings)
	grid := ResolveGrid(page, itemCount, settings.ItemsPerRow)
	qrSize := MillimetresToPoints(settings.QRSizeMm)

	band := 0.0
	if settings.IncludeLabels {
		band = LabelBand
	}

	l := Layout{
		Page:          page,
		Grid:          grid,
		QRSize:        qrSize,
		LabelBand:     band,
		LabelFontSize: LabelFontSize(qrSize),
		Placements:    make([]Placement, itemCount),
	}
	for i := 0; i < itemCount; i++ {
		l.Placements[i] = place(page, grid, qrSize, band, i)
	}
	return l
}

func place(page PageGeometry, grid Grid, qrSize, band float64, index int) Placement {
	row, col := CellPosition(index, grid.Columns)
	cellX := page.Margin + float64(col)*grid.CellWidth
	cellY := page.Margin + float64(row)*grid.CellHeight

	qrX := cellX + (grid.CellWidth-qrSize)/2
	qrY := cellY + (grid.CellHeight-qrSize-band)/2

	return Placement{
		Index: index,
		Row:   row,
		Col:   col,
		CellX: cellX,
		CellY: cellY,
		QRX:   qrX,
		QRY:   clampArtworkY(qrY, cellY, grid.CellHeight, qrSize, band),
	}
}

// clampArtworkY keeps the artwork clear of the cell padding and label band.
// When the cell is too small for that, the origin is still kept inside the
// cell; the artwork itself may overflow.
func clampArtworkY(y, cellY, cellHeight, qrSize, band float64) float64 {
	lo := cellY + CellPadding
	hi := cellY + cellHeight - qrSize - band - CellPadding
	y = math.Max(lo, math.Min(y, hi))

	top := math.Max(cellY, cellY+cellHeight-qrSize)
	return math.Max(cellY, math.Min(y, top))
}
