package kendala

import (
	"testing"
)

func sampleItems() []Kendala {
	done := at("2025-03-01 09:30")
	return []Kendala{
		{
			ID: 1, Title: "Cash handler error", Description: "reject bin penuh",
			CreatedAt: at("2025-03-01 08:00"), CompletedAt: &done,
			Operator: "BUDI", Terminal: &TerminalRef{TID: "S1AB01", Lokasi: "KCP Sudirman", Pengelola: "PT Swadharma Sarana"},
		},
		{
			ID: 2, Title: "Layar blank", Description: "unit mati total",
			CreatedAt: at("2025-03-05 08:00"),
			Operator:  "SITI", Terminal: &TerminalRef{TID: "S1AB02", Lokasi: "KCP Thamrin", Pengelola: "PT Advantage"},
		},
		{
			ID: 3, Title: "Receipt habis", Description: "kertas struk kosong",
			CreatedAt: at("2025-03-05 10:00"),
			Operator:  "BUDI", Terminal: &TerminalRef{TID: "S1AB03", Lokasi: "KCP Kota", Pengelola: "PT Swadharma Sarana"},
		},
		{
			ID: 4, Title: "Kartu tertelan", Description: "card reader macet",
			CreatedAt: at("2024-03-05 10:00"),
			Operator:  "SITI", Terminal: &TerminalRef{TID: "S1AB04", Lokasi: "KCP Blok M", Pengelola: "PT Advantage"},
		},
	}
}

func ids(items []Kendala) []int64 {
	out := make([]int64, len(items))
	for i, k := range items {
		out[i] = k.ID
	}
	return out
}

func TestFilterSearchMatchesFields(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	items := sampleItems()

	got := e.FilterAndSort(items, Filter{Search: "layar"}, now)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("title search failed: %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Search: "s1ab03"}, now)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("tid search failed: %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Search: "thamrin"}, now)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("lokasi search failed: %v", ids(got))
	}
}

func TestFilterSearchPengelolaIgnoresWhitespace(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	got := e.FilterAndSort(sampleItems(), Filter{Search: "ptswadharma sarana"}, now)
	if len(got) != 2 {
		t.Fatalf("pengelola search must ignore internal whitespace, got %v", ids(got))
	}
}

func TestFilterStatusUsesDerivedState(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	items := sampleItems()
	// ID 2 was created at 08:00, deadline 10:00, so it is overdue at 11:00
	// regardless of what the store last persisted.
	items[1].StoredState = StatePending

	got := e.FilterAndSort(items, Filter{Status: "overdue"}, now)
	if len(got) != 2 {
		t.Fatalf("expected the two overdue kendala, got %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Status: "pending"}, now)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only the pending kendala, got %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Status: "all"}, now)
	if len(got) != 4 {
		t.Fatalf("status all must not filter, got %v", ids(got))
	}
}

func TestFilterMonthCurrentYearOnly(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	march := 2 // 0-indexed
	got := e.FilterAndSort(sampleItems(), Filter{Month: &march}, now)
	if len(got) != 3 {
		t.Fatalf("month filter must exclude other years, got %v", ids(got))
	}
	for _, k := range got {
		if k.ID == 4 {
			t.Fatalf("kendala from 2024 must never match a 2025 month filter")
		}
	}
}

func TestSortNewestOldestTitle(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	items := sampleItems()

	got := e.FilterAndSort(items, Filter{Sort: SortNewest}, now)
	if got[0].ID != 3 || got[len(got)-1].ID != 4 {
		t.Fatalf("newest sort wrong: %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Sort: SortOldest}, now)
	if got[0].ID != 4 {
		t.Fatalf("oldest sort wrong: %v", ids(got))
	}
	got = e.FilterAndSort(items, Filter{Sort: SortTitle}, now)
	if got[0].Title != "Cash handler error" {
		t.Fatalf("title sort wrong: %v", ids(got))
	}
}

func TestSortDeadlineBuckets(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	got := e.FilterAndSort(sampleItems(), Filter{Sort: SortDeadline}, now)
	// Overdue first by ascending deadline (4 then 2), then pending (3),
	// completed last (1).
	want := []int64{4, 2, 3, 1}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("deadline sort wrong: got %v want %v", ids(got), want)
		}
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	items := sampleItems()
	before := ids(items)
	_ = e.FilterAndSort(items, Filter{Sort: SortTitle}, now)
	after := ids(items)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input order mutated: %v -> %v", before, after)
		}
	}
}

func TestCountStats(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	st := e.CountStats(sampleItems(), now)
	if st.Total != 4 || st.Completed != 1 || st.Pending != 1 || st.Overdue != 2 || st.CompletedLate != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestExportRows(t *testing.T) {
	e := testEngine()
	now := at("2025-03-05 11:00")
	items := sampleItems()
	items[0].EvidenceURL = "/files/bukti.jpg"
	rows := e.ExportRows(items[:2], now)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].Cells()
	if len(first) != len(ExportHeader) {
		t.Fatalf("row width %d does not match header width %d", len(first), len(ExportHeader))
	}
	if first[0] != "1" || first[1] != "S1AB01" || first[7] != "Selesai" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[9] != "/files/bukti.jpg" {
		t.Fatalf("evidence url expected in Hasil_Submit, got %q", first[9])
	}
	if first[8] != "01/03/2025 08:00" || first[10] != "01/03/2025 09:30" {
		t.Fatalf("unexpected timestamps: %q / %q", first[8], first[10])
	}
	second := rows[1].Cells()
	if second[9] != "Kosong" || second[10] != Placeholder {
		t.Fatalf("placeholders missing on unsubmitted row: %v", second)
	}
	if second[11] != "lewat 1 jam 0 menit" {
		t.Fatalf("unexpected deadline text on overdue row: %q", second[11])
	}

	var it int64
	for _, row := range rows {
		if row.ID <= it {
			t.Fatalf("rows must preserve input order")
		}
		it = row.ID
	}
}
