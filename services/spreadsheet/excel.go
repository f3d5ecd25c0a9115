package spreadsheet

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/student"
)

const templateSheet = "Sheet1"

var errNoSheet = core.NewValidationError(errors.New("the workbook has no sheet"))

// Excel reads and writes .xlsx workbooks.
type Excel struct{}

var _ dashboard.Spreadsheets = Excel{}

// ReadTable decodes the first sheet of the workbook read from r; its first row is the header.
// Blank rows are skipped.
func (Excel) ReadTable(r io.Reader) (student.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return student.Table{}, core.NewValidationError(errors.Wrap(err, "opening workbook"))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return student.Table{}, errNoSheet
	}
	sheet := sheets[0]

	texts, err := f.GetRows(sheet)
	if err != nil {
		return student.Table{}, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	raws, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return student.Table{}, errors.Wrapf(err, "reading raw sheet %q", sheet)
	}
	return toTable(texts, raws), nil
}

func toTable(texts, raws [][]string) student.Table {
	var t student.Table
	if len(texts) == 0 {
		return t
	}
	t.Columns = make([]string, len(texts[0]))
	for i, c := range texts[0] {
		t.Columns[i] = core.CleanString(c)
	}

	for i := 1; i < len(texts); i++ {
		row := make([]student.Cell, len(t.Columns))
		blank := true
		for j := range row {
			txt := at(texts[i], j)
			raw := txt
			if i < len(raws) {
				raw = at(raws[i], j)
			}
			row[j] = student.Cell{Text: txt, Raw: raw}
			if strings.TrimSpace(txt) != "" {
				blank = false
			}
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func at(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// WriteTemplate writes an empty workbook holding the upload header.
func (Excel) WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeHeader(f, templateSheet, student.InputColumns); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing template")
}

// WriteProcessed writes every record of ds, derived columns included, to the ProcessedData sheet.
func (Excel) WriteProcessed(w io.Writer, ds student.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(templateSheet, dashboard.ProcessedSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	sheet := dashboard.ProcessedSheet
	cols := ds.ProcessedColumns()
	if err := writeHeader(f, sheet, cols); err != nil {
		return err
	}

	for i, rec := range ds.Records {
		for j, col := range cols {
			v := rec.Value(col)
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrapf(err, "setting %s", cell)
			}
		}
	}
	return errors.Wrap(f.Write(w), "writing processed data")
}

func writeHeader(f *excelize.File, sheet string, cols []string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return errors.Wrapf(err, "setting %s", cell)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return errors.Wrap(err, "styling header")
	}
	return nil
}
