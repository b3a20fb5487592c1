package services

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// GenerateLayoutManifest writes an Excel workbook describing where every item
// lands on the sheet, in millimetres from the top-left page corner. It uses the
// same geometry as Generator.Generate.
func GenerateLayoutManifest(items []QRItem, settings ExportSettings) ([]byte, error) {
	layout := ComputeLayout(len(items), settings)

	f := excelize.NewFile()
	defer f.Close()

	const layoutSheet = "Layout"
	if err := f.SetSheetName(f.GetSheetName(0), layoutSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{"#", "ID", "Name", "Row", "Column", "X (mm)", "Y (mm)", "Size (mm)"}
	widths := []float64{6, 24, 36, 8, 8, 10, 10, 10}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(layoutSheet, col+"1", h)
		if err := f.SetColWidth(layoutSheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	f.SetCellStyle(layoutSheet, "A1", "H1", headerStyle)

	sizeMm := roundMm(PointsToMillimetres(layout.QRSize))
	for i, item := range items {
		p := layout.Placements[i]
		row := i + 2
		values := []any{
			i + 1,
			sanitizeExcelCell(item.ID),
			sanitizeExcelCell(item.Name),
			p.Row + 1,
			p.Col + 1,
			roundMm(PointsToMillimetres(p.QRX)),
			roundMm(PointsToMillimetres(p.QRY)),
			sizeMm,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(layoutSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	const settingsSheet = "Settings"
	if _, err := f.NewSheet(settingsSheet); err != nil {
		return nil, fmt.Errorf("create settings sheet: %w", err)
	}
	summary := [][]any{
		{"Page format", string(settings.PageFormat)},
		{"Margin (mm)", settings.MarginMm},
		{"QR size (mm)", settings.QRSizeMm},
		{"Items per row", settings.ItemsPerRow},
		{"Rows", layout.Grid.Rows},
		{"Cell width (mm)", roundMm(PointsToMillimetres(layout.Grid.CellWidth))},
		{"Cell height (mm)", roundMm(PointsToMillimetres(layout.Grid.CellHeight))},
		{"Cutlines", settings.IncludeCutlines},
		{"Labels", settings.IncludeLabels},
		{"Items", len(items)},
	}
	for i, r := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := r
		if err := f.SetSheetRow(settingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write settings row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(settingsSheet, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("set settings width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func roundMm(v float64) float64 {
	return math.Round(v*100) / 100
}
