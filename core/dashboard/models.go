package dashboard

import (
	"time"

	"github.com/trezcool/rekodi/core/session"
	"github.com/trezcool/rekodi/core/student"
)

const (
	TemplateFileName  = "student_data_template.xlsx"
	ProcessedFileName = "processed_student_data.xlsx"
	ProcessedSheet    = "ProcessedData"
	ContentTypeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// notices
	LoginSuccessText   = "Login successful!"
	LoginFailedText    = "Invalid username or password"
	LogoutText         = "Logged out successfully."
	UploadPromptText   = "Upload an Excel file to begin processing and see analytics."
	FilteredEmptyText  = "Filtered data is empty. Adjust filters or check your Excel file."
	uploadSuccessFmt   = "Processed %d records from %s."
	unexpectedErrorFmt = "Error: %v"
)

type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelSuccess NoticeLevel = "success"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a one-off message shown to the user.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// ViewState is everything the dashboard displays for one session.
// Values are never mutated in place: every action builds a new ViewState, sharing unchanged slices.
type ViewState struct {
	Session   session.Session       `json:"session"`
	Notice    *Notice               `json:"notice,omitempty"`
	FileName  string                `json:"file_name,omitempty"`
	Columns   []string              `json:"columns,omitempty"` // upload columns
	Records   []student.Record      `json:"records,omitempty"`
	Options   student.FilterOptions `json:"options"`
	Filter    student.Filter        `json:"filter"`
	Analytics *student.Analytics    `json:"analytics,omitempty"` // nil without data or when the filter matches nothing
	Warning   *Notice               `json:"warning,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func newView(s session.Session, n *Notice) ViewState {
	return ViewState{Session: s, Notice: n, UpdatedAt: nowFunc().UTC()}
}

func info(text string) *Notice    { return &Notice{Level: LevelInfo, Text: text} }
func success(text string) *Notice { return &Notice{Level: LevelSuccess, Text: text} }
func failure(text string) *Notice { return &Notice{Level: LevelError, Text: text} }

// HasData reports whether a spreadsheet has been processed.
func (v ViewState) HasData() bool {
	return len(v.Columns) > 0
}

// Dataset returns every processed record, unfiltered.
func (v ViewState) Dataset() student.Dataset {
	return student.Dataset{Columns: v.Columns, Records: v.Records}
}

func (v ViewState) ProcessedColumns() []string {
	if !v.HasData() {
		return nil
	}
	return student.ProcessedColumns(v.Columns)
}

// Filtered returns the records matching the current filter.
func (v ViewState) Filtered() []student.Record {
	return v.Filter.Apply(v.Records)
}

// SelectedFilter returns the values selected in each filter, for display.
func (v ViewState) SelectedFilter() student.Filter {
	return v.Filter.Selected(v.Options)
}

// WithNotice returns a copy of v showing n.
func (v ViewState) WithNotice(n *Notice) ViewState {
	v.Notice = n
	v.UpdatedAt = nowFunc().UTC()
	return v
}

// WithSession returns a copy of v bound to s.
func (v ViewState) WithSession(s session.Session) ViewState {
	v.Session = s
	v.UpdatedAt = nowFunc().UTC()
	return v
}

// WithDataset returns a copy of v displaying ds, with every filter option selected.
func (v ViewState) WithDataset(fileName string, ds student.Dataset) ViewState {
	v.FileName = fileName
	v.Columns = ds.Columns
	v.Records = ds.Records
	v.Options = student.Options(ds.Records)
	return v.WithFilter(student.Filter{})
}

// WithFilter returns a copy of v with f applied and the analytics recomputed.
func (v ViewState) WithFilter(f student.Filter) ViewState {
	v.Filter = f
	v.Analytics = nil
	v.Warning = nil
	if v.HasData() {
		if filtered := v.Filtered(); len(filtered) > 0 {
			a := student.Analyze(filtered)
			v.Analytics = &a
		} else {
			v.Warning = &Notice{Level: LevelWarning, Text: FilteredEmptyText}
		}
	}
	v.UpdatedAt = nowFunc().UTC()
	return v
}
