package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateAnalyticsExcel creates an Excel file from the given AnalyticsData and
// returns the file contents as a byte slice.
func GenerateAnalyticsExcel(data *AnalyticsData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := data.PropertyName
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Analytics"
	}

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headers := []string{"#", "Item", "Visits"}
	for _, kind := range reactionColumns {
		headers = append(headers, kind)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))

	widths := []float64{6, 40, 10, 10, 10, 10}
	for i := range headers {
		c, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
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

	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	// ── Header Rows (1-2) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.PropertyName))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Generated: "+data.GeneratedDate)

	// ── Row 4: Column Headers ───────────────────────────────────────────

	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A4", &hdr); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", headerStyle)

	// ── Data Rows (starting row 5) ──────────────────────────────────────

	rowNum := 5
	for _, r := range data.Rows {
		values := []any{r.Index, sanitizeExcelCell(r.Name), r.Visits}
		for _, kind := range reactionColumns {
			values = append(values, r.Reactions[kind])
		}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowNum, err)
		}
		f.SetCellStyle(sheetName, cell, fmt.Sprintf("%s%d", lastCol, rowNum), rowStyle)
		rowNum++
	}

	// ── Totals ──────────────────────────────────────────────────────────

	totals := []any{"", "Total", data.TotalVisits}
	for _, kind := range reactionColumns {
		totals = append(totals, data.TotalReactions[kind])
	}
	cell := fmt.Sprintf("A%d", rowNum)
	if err := f.SetSheetRow(sheetName, cell, &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	f.SetCellStyle(sheetName, cell, fmt.Sprintf("%s%d", lastCol, rowNum), totalStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
