package sheet

import (
	"io"

	"kendala-hub/core/kendala"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Kendala"

// WriteKendala renders export rows as an xlsx workbook with a single
// "Kendala" sheet: the fixed header followed by one row per kendala.
func WriteKendala(w io.Writer, rows []kendala.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	header := make([]any, len(kendala.ExportHeader))
	for i, h := range kendala.ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := row.Cells()
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
