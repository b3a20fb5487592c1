package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseItemFile_CSV(t *testing.T) {
	csv := "Name *,Description\nKitchen,Open plan\n,no name\nStudy,\n"
	result, err := ParseItemFile(strings.NewReader(csv), "items.CSV")
	if err != nil {
		t.Fatalf("ParseItemFile() error = %v", err)
	}

	if result.TotalRows != 3 || result.ValidRows != 2 || result.ErrorRows != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", result.TotalRows, result.ValidRows, result.ErrorRows)
	}
	if len(result.Items) != 2 || result.Items[0].Name != "Kitchen" || result.Items[0].Description != "Open plan" {
		t.Errorf("items = %+v", result.Items)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 || result.Errors[0].Field != "name" {
		t.Errorf("errors = %+v", result.Errors)
	}
}

func TestParseItemFile_Excel(t *testing.T) {
	tmpl, err := GenerateImportTemplate()
	if err != nil {
		t.Fatalf("GenerateImportTemplate() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(tmpl))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	f.SetCellValue("Items", "A2", "Boiler room")
	f.SetCellValue("Items", "B2", "Basement")
	f.SetCellValue("Items", "A3", strings.Repeat("x", 201))
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	result, err := ParseItemFile(&buf, "items.xlsx")
	if err != nil {
		t.Fatalf("ParseItemFile() error = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Boiler room" {
		t.Errorf("items = %+v", result.Items)
	}
	if result.ErrorRows != 1 {
		t.Errorf("ErrorRows = %d, want 1 for the over-long name", result.ErrorRows)
	}
}

func TestParseItemFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		fileName string
	}{
		{"unsupported extension", "name\nA\n", "items.txt"},
		{"header only", "name\n", "items.csv"},
		{"missing name column", "title,description\nA,B\n", "items.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseItemFile(strings.NewReader(tt.content), tt.fileName); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestHeaderIndex(t *testing.T) {
	idx := headerIndex([]string{" Description ", "NAME *", "name"}, "name", "description", "notes")
	if idx["name"] != 1 {
		t.Errorf("name = %d, want first match 1", idx["name"])
	}
	if idx["description"] != 0 {
		t.Errorf("description = %d, want 0", idx["description"])
	}
	if idx["notes"] != -1 {
		t.Errorf("notes = %d, want -1", idx["notes"])
	}
}
