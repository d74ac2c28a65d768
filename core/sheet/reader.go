package sheet

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// BulkRow is one parsed row of a bulk-import workbook.
type BulkRow struct {
	TID string
	// Pengelola is normalized for username matching: internal whitespace
	// removed, upper-cased.
	Pengelola string
	Title     string
	CreatedAt time.Time
}

var requiredColumns = []string{"TID", "Pengelola", "Status", "Est. Tgl. Problem"}

var bulkTimeLayouts = []string{
	"02/01/2006 15:04",
	"2/1/2006 15:04",
	"2006-01-02 15:04:05",
	"01-02-06 15:04", // excelize default rendering of datetime cells
}

// ParseBulkImport reads a bulk-import workbook: the first sheet must carry
// the TID / Pengelola / Status / "Est. Tgl. Problem" columns. Timestamps
// are interpreted in loc. Rows with an empty TID are skipped; a row with an
// unparseable timestamp fails the whole import.
func ParseBulkImport(r io.Reader, loc *time.Location) ([]BulkRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("membaca file excel: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("file excel tidak memiliki sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file excel kosong")
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("kolom wajib tidak ditemukan: %s", strings.Join(missing, ", "))
	}

	if loc == nil {
		loc = time.UTC
	}
	var out []BulkRow
	for _, row := range rows[1:] {
		tid := strings.TrimSpace(cellAt(row, cols["TID"]))
		if tid == "" {
			continue
		}
		rawTime := strings.TrimSpace(cellAt(row, cols["Est. Tgl. Problem"]))
		created, err := parseBulkTime(rawTime, loc)
		if err != nil {
			return nil, fmt.Errorf("format tanggal tidak valid pada baris TID %s: %w", tid, err)
		}
		out = append(out, BulkRow{
			TID:       tid,
			Pengelola: normalizePengelola(cellAt(row, cols["Pengelola"])),
			Title:     strings.TrimSpace(cellAt(row, cols["Status"])),
			CreatedAt: created,
		})
	}
	return out, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseBulkTime(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("kosong")
	}
	for _, layout := range bulkTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("tidak dikenali: %q", raw)
}

func normalizePengelola(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
