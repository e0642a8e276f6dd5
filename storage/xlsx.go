package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"ewintr.nl/ytcollect/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Videos"

type XLSX struct {
	dir           string
	withFormatted bool
}

func NewXLSX(dir string, withFormatted bool) *XLSX {
	return &XLSX{
		dir:           dir,
		withFormatted: withFormatted,
	}
}

func (x *XLSX) Name() string {
	return "xlsx"
}

func (x *XLSX) Path(query string) string {
	return filepath.Join(x.dir, FileName(query, "xlsx"))
}

func (x *XLSX) Save(_ context.Context, ds model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", toCells(model.Header(x.withFormatted))); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}
	for i, row := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, toCells(row.Values(x.withFormatted))); err != nil {
			return fmt.Errorf("could not write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(x.Path(ds.Query)); err != nil {
		return fmt.Errorf("could not save workbook: %w", err)
	}

	return nil
}

// toCells converts values to cells, cutting off text that does not fit in
// a spreadsheet cell. Long transcripts do not.
func toCells(vals []string) *[]any {
	cells := make([]any, len(vals))
	for i, v := range vals {
		if utf8.RuneCountInString(v) > excelize.TotalCellChars {
			v = string([]rune(v)[:excelize.TotalCellChars])
		}
		cells[i] = v
	}
	return &cells
}
