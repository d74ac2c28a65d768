package kendala

import (
	"strconv"
	"time"
)

// ExportHeader is the fixed, fully-labeled column order of the flat export
// row shape handed to the spreadsheet writer.
var ExportHeader = []string{
	"ID", "TID", "Lokasi", "KC_Supervisi", "Pengelola",
	"Judul", "Deskripsi", "Status", "Dibuat",
	"Hasil_Submit", "Diselesaikan", "Deadline",
}

const exportTimeLayout = "02/01/2006 15:04"

// ExportRow is one kendala projected to the tabular export shape.
type ExportRow struct {
	ID           int64
	TID          string
	Lokasi       string
	KCSupervisi  string
	Pengelola    string
	Judul        string
	Deskripsi    string
	Status       string
	Dibuat       string
	HasilSubmit  string
	Diselesaikan string
	Deadline     string
}

// Cells returns the row values in ExportHeader order.
func (r ExportRow) Cells() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.TID, r.Lokasi, r.KCSupervisi, r.Pengelola,
		r.Judul, r.Deskripsi, r.Status, r.Dibuat,
		r.HasilSubmit, r.Diselesaikan, r.Deadline,
	}
}

// ExportRows projects a collection to flat rows, deriving state and deadline
// text at the single captured instant now so the whole export classifies
// consistently.
func (e *Engine) ExportRows(items []Kendala, now time.Time) []ExportRow {
	rows := make([]ExportRow, 0, len(items))
	for i := range items {
		k := &items[i]
		state, deadlineText := e.DeriveState(k, now)
		row := ExportRow{
			ID:           k.ID,
			TID:          Placeholder,
			Lokasi:       Placeholder,
			KCSupervisi:  Placeholder,
			Pengelola:    k.Operator,
			Judul:        k.Title,
			Deskripsi:    k.Description,
			Status:       state.Label(),
			Dibuat:       k.CreatedAt.In(e.loc).Format(exportTimeLayout),
			HasilSubmit:  "Kosong",
			Diselesaikan: Placeholder,
			Deadline:     deadlineText,
		}
		if k.Terminal != nil {
			if k.Terminal.TID != "" {
				row.TID = k.Terminal.TID
			}
			if k.Terminal.Lokasi != "" {
				row.Lokasi = k.Terminal.Lokasi
			}
			if k.Terminal.KCSupervisi != "" {
				row.KCSupervisi = k.Terminal.KCSupervisi
			}
		}
		if k.EvidenceURL != "" {
			row.HasilSubmit = k.EvidenceURL
		}
		if k.CompletedAt != nil {
			row.Diselesaikan = k.CompletedAt.In(e.loc).Format(exportTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// Stats counts a collection per effective state at the instant now.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Completed     int `json:"completed"`
	Overdue       int `json:"overdue"`
	CompletedLate int `json:"completed_but_overdue"`
}

func (e *Engine) CountStats(items []Kendala, now time.Time) Stats {
	st := Stats{Total: len(items)}
	for i := range items {
		state, _ := e.DeriveState(&items[i], now)
		switch state {
		case StatePending:
			st.Pending++
		case StateCompleted:
			st.Completed++
		case StateOverdue:
			st.Overdue++
		case StateCompletedLate:
			st.CompletedLate++
		}
	}
	return st
}
