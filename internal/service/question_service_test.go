package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportXLSXMissingColumns(t *testing.T) {
	svc := NewQuestionService(nil, zerolog.Nop())

	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{"empty sheet", nil},
		{"no model answer column", [][]interface{}{{"Question Text", "Points"}}},
		{"no question text column", [][]interface{}{{"Model Answer"}}},
		{"unrelated headers", [][]interface{}{{"A", "B", "C"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportXLSX(context.Background(), workbookBytes(t, tt.rows))
			if !errors.Is(err, ErrMissingColumns) {
				t.Errorf("got %v, want ErrMissingColumns", err)
			}
		})
	}
}

func TestImportXLSXNoImportableRows(t *testing.T) {
	svc := NewQuestionService(nil, zerolog.Nop())

	rows := [][]interface{}{
		{"Question Text", "Model Answer"},
		{"", ""},
		{"Only a question", ""},
		{"", "only an answer"},
	}

	_, err := svc.ImportXLSX(context.Background(), workbookBytes(t, rows))
	if !errors.Is(err, ErrNoImportableRows) {
		t.Errorf("got %v, want ErrNoImportableRows", err)
	}
}

func TestImportXLSXRejectsGarbage(t *testing.T) {
	svc := NewQuestionService(nil, zerolog.Nop())

	_, err := svc.ImportXLSX(context.Background(), bytes.NewReader([]byte("not a workbook")))
	if err == nil {
		t.Fatal("expected error for non-XLSX input")
	}
}
