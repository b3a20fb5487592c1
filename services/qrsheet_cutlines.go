package services

// renderCutlines overlays the trimming guides: dashed lines on every internal
// cell boundary, then a solid outer frame on the margin boundary. The frame is
// skipped without a margin since it would coincide with the page edge. An empty
// sheet gets no guides at all.
func renderCutlines(dc *DrawContext, layout Layout) {
	page, grid := layout.Page, layout.Grid
	if grid.Rows == 0 {
		return
	}
	s := dc.Surface()

	left, top := page.Margin, page.Margin
	right, bottom := page.Width-page.Margin, page.Height-page.Margin

	dc.WithStroke(internalCutStroke, func() {
		for c := 1; c < grid.Columns; c++ {
			x := left + float64(c)*grid.CellWidth
			s.Line(x, top, x, bottom)
		}
		for r := 1; r < grid.Rows; r++ {
			y := top + float64(r)*grid.CellHeight
			s.Line(left, y, right, y)
		}
	})

	if page.Margin <= 0 {
		return
	}
	dc.WithStroke(outerCutStroke, func() {
		s.Line(left, top, right, top)
		s.Line(right, top, right, bottom)
		s.Line(right, bottom, left, bottom)
		s.Line(left, bottom, left, top)
	})
}
