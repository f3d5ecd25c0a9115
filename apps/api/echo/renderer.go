package echoapi

import (
	htmltmpl "html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/services/charts"
)

const (
	pageLogin     = "login"
	pageDashboard = "dashboard"
)

type (
	viewRenderer struct {
		views *core.ViewTemplates
	}

	// page is the data of every rendered page.
	page struct {
		Title        string
		AppName      string
		View         dashboard.ViewState
		Selected     student.Filter
		UploadPrompt string
		Charts       []chartLink
		Version      int64 // busts the browser cache of chart images
	}

	chartLink struct {
		Name  string
		Title string
	}

	filterField struct {
		Name    string
		Label   string
		Options []filterOption
	}

	filterOption struct {
		Value    string
		Selected bool
	}

	recordsTable struct {
		Columns []string
		Rows    [][]string
	}
)

var templateFuncs = htmltmpl.FuncMap{
	"filterField": newFilterField,
	"records":     newRecordsTable,
	"inputs":      newInputsTable,
}

func (r *viewRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.views.Render(w, name, data)
}

func newPage(appName string, v dashboard.ViewState) page {
	p := page{
		Title:        "Login",
		AppName:      appName,
		View:         v,
		UploadPrompt: dashboard.UploadPromptText,
		Version:      v.UpdatedAt.UnixNano(),
	}
	if v.Session.IsAuthenticated() {
		p.Title = "Dashboard"
		p.Selected = v.SelectedFilter()
		p.Charts = make([]chartLink, 0, len(charts.Names))
		for _, name := range charts.Names {
			p.Charts = append(p.Charts, chartLink{Name: name, Title: charts.Titles[name]})
		}
	}
	return p
}

func newFilterField(name, label string, options, selected []string) filterField {
	sel := make(map[string]bool, len(selected))
	for _, s := range selected {
		sel[s] = true
	}
	fld := filterField{Name: name, Label: label, Options: make([]filterOption, 0, len(options))}
	for _, o := range options {
		fld.Options = append(fld.Options, filterOption{Value: o, Selected: sel[o]})
	}
	return fld
}

// newRecordsTable shows the processed values of records.
func newRecordsTable(columns []string, records []student.Record) recordsTable {
	return newTable(columns, records, student.Record.Text)
}

// newInputsTable shows records as uploaded.
func newInputsTable(columns []string, records []student.Record) recordsTable {
	return newTable(columns, records, student.Record.InputText)
}

func newTable(columns []string, records []student.Record, cell func(student.Record, string) string) recordsTable {
	t := recordsTable{Columns: columns, Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cell(r, col)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
