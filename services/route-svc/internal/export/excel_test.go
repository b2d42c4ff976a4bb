package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNewExcelGenerator(t *testing.T) {
	g := NewExcelGenerator(testExportConfig())
	if g == nil {
		t.Fatal("NewExcelGenerator should not return nil")
	}
	if g.Format() != FormatExcel {
		t.Errorf("Format() = %v, want excel", g.Format())
	}
}

func TestExcelGenerator_Generate_Route(t *testing.T) {
	g := NewExcelGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), routeReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// XLSX начинается с zip-сигнатуры PK
	if len(result) < 4 || result[0] != 'P' || result[1] != 'K' {
		t.Fatal("result doesn't look like a valid XLSX file")
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	wantSheets := map[string]bool{"Route": false, "Roads": false, "Graph": false}
	for _, s := range sheets {
		if _, ok := wantSheets[s]; ok {
			wantSheets[s] = true
		}
	}
	for name, found := range wantSheets {
		if !found {
			t.Errorf("sheet %q missing, got %v", name, sheets)
		}
	}

	title, err := f.GetCellValue("Route", "A1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if title != "Route Report" {
		t.Errorf("Route!A1 = %v, want Route Report", title)
	}

	roadID, err := f.GetCellValue("Roads", "B2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if roadID != "r1" {
		t.Errorf("Roads!B2 = %v, want r1", roadID)
	}
}

func TestExcelGenerator_Generate_Comparison(t *testing.T) {
	g := NewExcelGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), comparisonReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	found := false
	for _, s := range f.GetSheetList() {
		if s == "Comparison" {
			found = true
		}
	}
	if !found {
		t.Errorf("Comparison sheet missing, got %v", f.GetSheetList())
	}
}

func TestExcelGenerator_Generate_Sweep(t *testing.T) {
	g := NewExcelGenerator(testExportConfig())

	result, err := g.Generate(context.Background(), sweepReportFixture())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	found := false
	for _, s := range f.GetSheetList() {
		if s == "Sweep" {
			found = true
		}
	}
	if !found {
		t.Errorf("Sweep sheet missing, got %v", f.GetSheetList())
	}
}

func TestExcelGenerator_Generate_NoGraph(t *testing.T) {
	g := NewExcelGenerator(testExportConfig())

	data := routeReportFixture()
	data.Graph = nil

	result, err := g.Generate(context.Background(), data)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	for _, s := range f.GetSheetList() {
		if s == "Graph" {
			t.Error("Graph sheet should be absent without graph data")
		}
	}
}
