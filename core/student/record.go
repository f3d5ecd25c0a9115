package student

import (
	"math"
	"strconv"
	"strings"
)

type (
	// Cell is a single spreadsheet value.
	// Text is what the spreadsheet displays; Raw is the unformatted value (e.g. "0.5" for "50%").
	Cell struct {
		Text string
		Raw  string
	}

	// Table is a decoded sheet: a header row followed by data rows.
	Table struct {
		Columns []string
		Rows    [][]Cell
	}

	// RawRecord is one uploaded row, typed.
	RawRecord struct {
		ID             string `json:"Stu_ID"`
		Name           string `json:"Stu_name"`
		Gender         string `json:"Stu_Gender"`
		DOB            string `json:"Stu_DOB"`
		Age            string `json:"Stu_AGE"`
		Email          string `json:"Stu_Email"`
		Phone          string `json:"Stu_Phone_No"`
		Address        string `json:"Stu_Address"`
		Department     string `json:"Stud_Department"`
		Program        string `json:"Stu_program"`
		Year           string `json:"Stu_Year"`
		EnrollmentYear string `json:"Stu_enrollment_year"`
		Semester       string `json:"Stu_Semester"`
		CourseCode     string `json:"Stu_Coure_code"`
		CourseName     string `json:"Stu_Coure_Name"`

		InternalMarks float64 `json:"Stu_Internal_marks"`
		ExternalMarks float64 `json:"Stu_external_Marks"`
		TotalClasses  float64 `json:"Stu_total_Classes"`
		Attended      float64 `json:"Stu_attended"`
		TuitionFees   float64 `json:"Stu_tution_Fees"`
		FeePaid       float64 `json:"Stu_fee_paid"`

		// Extra holds uploaded columns outside of the template.
		Extra map[string]string `json:"extra,omitempty"`
		// Input holds the uploaded text of the numeric columns, before coercion.
		Input map[string]string `json:"input,omitempty"`
	}

	Derived struct {
		TotalMarks           float64 `json:"Stu_Total_Marks"`
		Grade                string  `json:"Stu_Grade"`
		GPASub               int     `json:"Stu_GPA_Sub"`
		SGPA                 int     `json:"Stu_SGPA"`
		AttendancePercentage float64 `json:"Stu_attended_percentage"`
		AttendanceStatus     string  `json:"Stu_Attendance_status"`
		FeeDue               float64 `json:"Stu_fee_due"`
		PaymentStatus        string  `json:"Stu_payment_status"`
	}

	// Record is a processed row.
	Record struct {
		RawRecord
		Derived
	}

	// Dataset is a processed upload.
	Dataset struct {
		Columns []string // upload columns, in upload order, without derived columns
		Records []Record
	}
)

// ProcessedColumns returns the upload columns followed by the derived columns.
func (ds Dataset) ProcessedColumns() []string {
	return ProcessedColumns(ds.Columns)
}

// ProcessedColumns returns cols followed by the derived columns.
// Uploaded columns sharing a derived column's name are replaced by the derived value.
func ProcessedColumns(cols []string) []string {
	out := make([]string, 0, len(cols)+len(DerivedColumns))
	for _, c := range cols {
		if !IsDerived(c) {
			out = append(out, c)
		}
	}
	return append(out, DerivedColumns...)
}

func (r *RawRecord) set(col string, cell Cell) {
	switch col {
	case ColID:
		r.ID = cell.Text
	case ColName:
		r.Name = cell.Text
	case ColGender:
		r.Gender = cell.Text
	case ColDOB:
		r.DOB = cell.Text
	case ColAge:
		r.Age = cell.Text
	case ColEmail:
		r.Email = cell.Text
	case ColPhone:
		r.Phone = cell.Text
	case ColAddress:
		r.Address = cell.Text
	case ColDepartment:
		r.Department = cell.Text
	case ColProgram:
		r.Program = cell.Text
	case ColYear:
		r.Year = cell.Text
	case ColEnrollmentYear:
		r.EnrollmentYear = cell.Text
	case ColSemester:
		r.Semester = cell.Text
	case ColCourseCode:
		r.CourseCode = cell.Text
	case ColCourseName:
		r.CourseName = cell.Text
	case ColInternalMarks, ColExternalMarks, ColTotalClasses, ColAttended, ColTuitionFees, ColFeePaid:
		r.setNumber(col, cell)
	default:
		if cell.Text == "" {
			return
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[col] = cell.Text
	}
}

func (r *RawRecord) setNumber(col string, cell Cell) {
	n := cell.Number()
	switch col {
	case ColInternalMarks:
		r.InternalMarks = n
	case ColExternalMarks:
		r.ExternalMarks = n
	case ColTotalClasses:
		r.TotalClasses = n
	case ColAttended:
		r.Attended = n
	case ColTuitionFees:
		r.TuitionFees = n
	case ColFeePaid:
		r.FeePaid = n
	}
	if cell.Text == "" {
		return
	}
	if r.Input == nil {
		r.Input = make(map[string]string)
	}
	r.Input[col] = cell.Text
}

// Number returns the numeric value of the cell; blanks, non-numeric and non-finite values are 0.
func (c Cell) Number() float64 {
	s := c.Raw
	if s == "" {
		s = c.Text
	}
	return ParseNumber(s)
}

// ParseNumber coerces s to a finite float64, falling back to 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatNumber renders f without trailing zeros ("85", "72.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Value returns the typed value of col: float64 or int for numeric columns, string otherwise.
func (r Record) Value(col string) interface{} {
	switch col {
	case ColInternalMarks:
		return r.InternalMarks
	case ColExternalMarks:
		return r.ExternalMarks
	case ColTotalClasses:
		return r.TotalClasses
	case ColAttended:
		return r.Attended
	case ColTuitionFees:
		return r.TuitionFees
	case ColFeePaid:
		return r.FeePaid
	case ColTotalMarks:
		return r.TotalMarks
	case ColGrade:
		return r.Grade
	case ColGPASub:
		return r.GPASub
	case ColSGPA:
		return r.SGPA
	case ColAttendancePercentage:
		return r.AttendancePercentage
	case ColAttendanceStatus:
		return r.AttendanceStatus
	case ColFeeDue:
		return r.FeeDue
	case ColPaymentStatus:
		return r.PaymentStatus
	}
	return r.text(col)
}

func (r Record) number(col string) float64 {
	switch v := r.Value(col).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return ParseNumber(r.text(col))
}

// Text returns the value of col as displayed in tables.
func (r Record) Text(col string) string {
	switch v := r.Value(col).(type) {
	case float64:
		return FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}

// InputText returns the value of col as it was uploaded: numeric columns are shown before coercion.
func (r Record) InputText(col string) string {
	if IsNumeric(col) && !IsDerived(col) {
		return r.Input[col]
	}
	return r.Text(col)
}

func (r RawRecord) text(col string) string {
	switch col {
	case ColID:
		return r.ID
	case ColName:
		return r.Name
	case ColGender:
		return r.Gender
	case ColDOB:
		return r.DOB
	case ColAge:
		return r.Age
	case ColEmail:
		return r.Email
	case ColPhone:
		return r.Phone
	case ColAddress:
		return r.Address
	case ColDepartment:
		return r.Department
	case ColProgram:
		return r.Program
	case ColYear:
		return r.Year
	case ColEnrollmentYear:
		return r.EnrollmentYear
	case ColSemester:
		return r.Semester
	case ColCourseCode:
		return r.CourseCode
	case ColCourseName:
		return r.CourseName
	}
	return r.Extra[col]
}
