package student

// Input columns
const (
	ColID             = "Stu_ID"
	ColName           = "Stu_name"
	ColGender         = "Stu_Gender"
	ColDOB            = "Stu_DOB"
	ColAge            = "Stu_AGE"
	ColEmail          = "Stu_Email"
	ColPhone          = "Stu_Phone_No"
	ColAddress        = "Stu_Address"
	ColDepartment     = "Stud_Department"
	ColProgram        = "Stu_program"
	ColYear           = "Stu_Year"
	ColEnrollmentYear = "Stu_enrollment_year"
	ColSemester       = "Stu_Semester"
	ColCourseCode     = "Stu_Coure_code"
	ColCourseName     = "Stu_Coure_Name"
	ColInternalMarks  = "Stu_Internal_marks"
	ColExternalMarks  = "Stu_external_Marks"
	ColTotalClasses   = "Stu_total_Classes"
	ColAttended       = "Stu_attended"
	ColTuitionFees    = "Stu_tution_Fees"
	ColFeePaid        = "Stu_fee_paid"
)

// Derived columns
const (
	ColTotalMarks           = "Stu_Total_Marks"
	ColGrade                = "Stu_Grade"
	ColGPASub               = "Stu_GPA_Sub"
	ColSGPA                 = "Stu_SGPA"
	ColAttendancePercentage = "Stu_attended_percentage"
	ColAttendanceStatus     = "Stu_Attendance_status"
	ColFeeDue               = "Stu_fee_due"
	ColPaymentStatus        = "Stu_payment_status"
)

var (
	// InputColumns is the header of the upload template, in order.
	InputColumns = []string{
		ColID, ColName, ColGender, ColDOB, ColAge, ColEmail, ColPhone, ColAddress,
		ColDepartment, ColProgram, ColYear, ColEnrollmentYear, ColSemester,
		ColCourseCode, ColCourseName, ColInternalMarks, ColExternalMarks,
		ColTotalClasses, ColAttended, ColTuitionFees, ColFeePaid,
	}

	// RequiredColumns must all be present in an upload for it to be processed.
	RequiredColumns = []string{
		ColInternalMarks, ColExternalMarks, ColTotalClasses,
		ColAttended, ColTuitionFees, ColFeePaid,
	}

	// DerivedColumns are appended to the upload columns, in order.
	DerivedColumns = []string{
		ColTotalMarks, ColGrade, ColGPASub, ColSGPA,
		ColAttendancePercentage, ColAttendanceStatus, ColFeeDue, ColPaymentStatus,
	}

	numericColumns = toSet(RequiredColumns)
	derivedColumns = toSet(DerivedColumns)
	knownColumns   = toSet(InputColumns)
)

// IsNumeric reports whether col holds a number, either as input or as a derived value.
func IsNumeric(col string) bool {
	switch col {
	case ColTotalMarks, ColGPASub, ColSGPA, ColAttendancePercentage, ColFeeDue:
		return true
	}
	return numericColumns[col]
}

// IsDerived reports whether col is computed by Process.
func IsDerived(col string) bool {
	return derivedColumns[col]
}

func toSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}
