package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/xuri/excelize/v2"
)

// ItemInput is one item row submitted by a user, by form or file import.
type ItemInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// Validate checks a single item input.
func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
	)
}

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating an uploaded item file.
type ImportResult struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Items     []ItemInput       `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// headerIndex returns the column index of each wanted header, or -1.
func headerIndex(headers []string, wanted ...string) map[string]int {
	idx := make(map[string]int, len(wanted))
	for _, w := range wanted {
		idx[w] = -1
	}
	for i, h := range headers {
		norm := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), " *")
		if _, ok := idx[norm]; ok && idx[norm] < 0 {
			idx[norm] = i
		}
	}
	return idx
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseItemFile parses a .csv or .xlsx upload with "name" and optional
// "description" columns and validates every row.
func ParseItemFile(file io.Reader, fileName string) (*ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	cols := headerIndex(headers, "name", "description")
	if cols["name"] < 0 {
		return nil, fmt.Errorf("missing required column %q", "name")
	}

	result := &ImportResult{TotalRows: len(dataRows)}
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		in := ItemInput{
			Name:        cellAt(row, cols["name"]),
			Description: cellAt(row, cols["description"]),
		}
		if err := in.Validate(); err != nil {
			result.Errors = append(result.Errors, rowErrors(rowNum, err)...)
			continue
		}
		result.Items = append(result.Items, in)
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// rowErrors flattens an ozzo-validation error into per-field row errors.
func rowErrors(rowNum int, err error) []ValidationError {
	fieldErrs, ok := err.(validation.Errors)
	if !ok {
		return []ValidationError{{Row: rowNum, Message: err.Error()}}
	}
	var out []ValidationError
	for _, field := range []string{"name", "description"} {
		if fe, ok := fieldErrs[field]; ok {
			out = append(out, ValidationError{Row: rowNum, Field: field, Message: fe.Error()})
		}
	}
	return out
}

// GenerateImportTemplate returns an empty .xlsx with the import headers.
func GenerateImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Items"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	f.SetCellValue(sheet, "A1", "Name *")
	f.SetCellValue(sheet, "B1", "Description")
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 60)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
