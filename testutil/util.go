package testutil

import (
	"bytes"
	"context"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/services/charts"
	logsvc "github.com/trezcool/rekodi/services/logger"
	"github.com/trezcool/rekodi/services/spreadsheet"
	inmemstore "github.com/trezcool/rekodi/storage/inmem"
)

// Deps is a fully wired in-memory application.
type Deps struct {
	Conf     *core.Config
	Logger   core.Logger
	Gate     *session.Gate
	Sessions session.Repository
	Views    dashboard.Repository
	Svc      *dashboard.Service
}

func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func NewDeps(t *testing.T) Deps {
	t.Helper()
	conf := core.NewTestConfig()
	db := inmemstore.Open()
	sessions := inmemstore.NewSessionRepository(db)
	views := inmemstore.NewViewRepository(db)
	logger := NewLogger()
	gate := session.NewGate(conf, sessions)
	return Deps{
		Conf:     conf,
		Logger:   logger,
		Gate:     gate,
		Sessions: sessions,
		Views:    views,
		Svc:      dashboard.NewService(gate, views, spreadsheet.Excel{}, charts.NewRenderer(), logger),
	}
}

// Workbook encodes table as an .xlsx file.
func Workbook(t *testing.T, table student.Table) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			t.Fatalf("Workbook() failed: %v", err)
		}
	}
	for r, row := range table.Rows {
		for c, v := range row {
			if v.Text == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var val interface{} = v.Text
			if c < len(table.Columns) && student.IsNumeric(table.Columns[c]) {
				// unparsable numbers are written as text, like a hand-typed cell
				if f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64); err == nil {
					val = f
				}
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatalf("Workbook() failed: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Workbook() failed: %v", err)
	}
	return buf.Bytes()
}

// Login returns a logged-in session.
func Login(t *testing.T, deps Deps) session.Session {
	t.Helper()
	v, err := deps.Svc.Login(context.Background(), session.New(), deps.Conf.Auth.Username, deps.Conf.Auth.Password)
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	return v.Session
}

// WithoutColumn returns a copy of table without col.
func WithoutColumn(table student.Table, col string) student.Table {
	out := student.Table{}
	keep := make([]int, 0, len(table.Columns))
	for i, c := range table.Columns {
		if c != col {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range table.Rows {
		r := make([]student.Cell, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				r = append(r, row[i])
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}
