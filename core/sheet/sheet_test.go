package sheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"kendala-hub/core/kendala"
)

func TestWriteKendalaRoundTrip(t *testing.T) {
	engine := kendala.NewEngine(2*time.Hour, time.UTC)
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	items := []kendala.Kendala{{
		ID:         1,
		Title:      "error kaset",
		CreatedAt:  created,
		Terminal:   &kendala.TerminalRef{TID: "A123", Lokasi: "KCP Sudirman", KCSupervisi: "KC Jakarta"},
		OperatorID: 7,
		Operator:   "budi",
	}}
	rows := engine.ExportRows(items, created.Add(time.Hour))

	var buf bytes.Buffer
	if err := WriteKendala(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	got, err := f.GetRows("Kendala")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(got))
	}
	for i, want := range kendala.ExportHeader {
		if got[0][i] != want {
			t.Fatalf("header col %d: expected %q, got %q", i, want, got[0][i])
		}
	}
	row := got[1]
	if row[1] != "A123" || row[5] != "error kaset" || row[7] != "Proses" {
		t.Fatalf("unexpected row: %v", row)
	}
	if !strings.HasPrefix(row[11], "sisa ") {
		t.Fatalf("expected remaining-time deadline text, got %q", row[11])
	}
}

func buildBulkWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"TID", "Pengelola", "Status", "Est. Tgl. Problem"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	return &buf
}

func TestParseBulkImport(t *testing.T) {
	buf := buildBulkWorkbook(t, [][]any{
		{"A123", "T A G", "error kaset", "10/03/2025 08:30"},
		{"", "ignored", "blank tid", "10/03/2025 08:30"},
		{"B456", "cko", "jaringan putus", "2/1/2025 09:00"},
	})
	rows, err := ParseBulkImport(buf, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank TID skipped), got %d", len(rows))
	}
	if rows[0].TID != "A123" || rows[0].Pengelola != "TAG" || rows[0].Title != "error kaset" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	want := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	if !rows[0].CreatedAt.Equal(want) {
		t.Fatalf("expected %s, got %s", want, rows[0].CreatedAt)
	}
	if rows[1].Pengelola != "CKO" {
		t.Fatalf("pengelola not normalized: %q", rows[1].Pengelola)
	}
}

func TestParseBulkImportMissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"TID", "Status"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := ParseBulkImport(&buf, time.UTC)
	if err == nil || !strings.Contains(err.Error(), "Pengelola") {
		t.Fatalf("expected missing-column error naming Pengelola, got %v", err)
	}
}

func TestParseBulkImportBadTimestamp(t *testing.T) {
	buf := buildBulkWorkbook(t, [][]any{
		{"A123", "TAG", "error kaset", "bukan tanggal"},
	})
	if _, err := ParseBulkImport(buf, time.UTC); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}
