package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/student"
)

// form fields
const (
	filterMarker     = "filter"
	filterDepartment = "department"
	filterYear       = "year"
	filterName       = "name"
	filterSemester   = "semester"
	uploadFileField  = "file"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UploadRequest struct {
	FileName string `json:"file" validate:"required,spreadsheet"`
}

func (ur *UploadRequest) Validate(validate *validator.Validate) error {
	ur.FileName = core.CleanString(ur.FileName)
	return validate.Struct(ur)
}

// FilterRequest is the JSON body of a filter update.
// An absent (or null) list selects every option, an empty one selects none.
type FilterRequest struct {
	Departments []string `json:"departments"`
	Years       []string `json:"years"`
	Names       []string `json:"names"`
	Semesters   []string `json:"semesters"`
}

func (fr FilterRequest) Filter() student.Filter {
	return student.Filter{
		Departments: core.CleanStrings(fr.Departments),
		Years:       core.CleanStrings(fr.Years),
		Names:       core.CleanStrings(fr.Names),
		Semesters:   core.CleanStrings(fr.Semesters),
	}
}

// FilterForm is the filter sidebar as posted by the browser.
// A multi-select with nothing selected is not submitted at all, so every
// rendered select comes with a hidden `filter` marker naming it.
type FilterForm struct {
	student.Filter
}

func (ff *FilterForm) Bind(ctx echo.Context) error {
	form, err := ctx.FormParams()
	if err != nil {
		return errors.Wrap(err, "parsing form")
	}

	submitted := make(map[string]bool, 4)
	for _, name := range form[filterMarker] {
		submitted[name] = true
	}
	values := func(name string) []string {
		if !submitted[name] {
			return nil
		}
		if vals := core.CleanStrings(form[name]); vals != nil {
			return vals
		}
		return []string{}
	}

	ff.Filter = student.Filter{
		Departments: values(filterDepartment),
		Years:       values(filterYear),
		Names:       values(filterName),
		Semesters:   values(filterSemester),
	}
	return nil
}
