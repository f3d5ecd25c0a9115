package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/testutil"
)

func TestDashboard_index(t *testing.T) {
	app, _ := setup(t)

	req, rec := newPageRequest("/", "")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assertBodyContains(t, rec, "Login to Student Records Dashboard", `action="/login"`)
	assert.NotContains(t, rec.Body.String(), "Live Analytics")

	req, rec = newPageRequest("/static/style.css", "")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboard_login(t *testing.T) {
	app, deps := setup(t)

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
	}{
		{name: "blank", form: url.Values{}, wantCode: http.StatusUnauthorized},
		{name: "wrong password", form: url.Values{"username": {"admin"}, "password": {"nope"}}, wantCode: http.StatusUnauthorized},
		{name: "success", form: url.Values{"username": {deps.Conf.Auth.Username}, "password": {deps.Conf.Auth.Password}}, wantCode: http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newFormRequest("/login", "", tt.form)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized {
				assertBodyContains(t, rec, dashboard.LoginFailedText)
				return
			}

			assert.Equal(t, "/", rec.Header().Get("Location"))
			var token string
			for _, c := range rec.Result().Cookies() {
				if c.Name == sessionCookie {
					token = c.Value
					assert.True(t, c.HttpOnly)
				}
			}
			require.NotEmpty(t, token)

			// the notice is shown once
			req, rec = newPageRequest("/", token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assertBodyContains(t, rec, dashboard.LoginSuccessText, dashboard.UploadPromptText, `action="/upload"`)

			req, rec = newPageRequest("/", token)
			app.ServeHTTP(rec, req)
			assert.NotContains(t, rec.Body.String(), dashboard.LoginSuccessText)
		})
	}
}

func TestDashboard_loginRequired(t *testing.T) {
	app, _ := setup(t)

	for _, path := range []string{"/upload", "/filter"} {
		req, rec := newFormRequest(path, "", url.Values{})
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}
	for _, path := range []string{"/export", "/charts/grades.png"} {
		req, rec := newPageRequest(path, "")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
	}

	// the template is public
	req, rec := newPageRequest("/template", "")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ContentTypeXLSX, rec.Header().Get("Content-Type"))
}

func TestDashboard_upload(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	upload := func(fileName string, content []byte) {
		t.Helper()
		req, rec := newUploadRequest(t, "/upload", "", fileName, content)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	page := func() string {
		t.Helper()
		req, rec := newPageRequest("/", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	upload("students.xlsx", testutil.Workbook(t, student.SampleTable()))
	body := page()
	assert.Contains(t, body, "Processed 3 records from students.xlsx.")
	assert.Contains(t, body, "Amani")
	assert.Contains(t, body, student.ColPaymentStatus)
	assert.Contains(t, body, "/charts/grades.png")
	assert.Contains(t, body, `href="/export"`)

	upload("students.csv", []byte("a,b\n"))
	body = page()
	assert.Contains(t, body, "Error: only .xlsx spreadsheets are supported")
	assert.Contains(t, body, "Amani") // previous data is kept

	upload("students.xlsx", testutil.Workbook(t, testutil.WithoutColumn(student.SampleTable(), student.ColAttended)))
	body = page()
	assert.Contains(t, body, "Missing columns: [Stu_attended]")

	upload("", nil)
	assert.Contains(t, page(), "Error: no file uploaded")

	req, rec := newPageRequest("/charts/attendance-distribution.png", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestDashboard_rawInput(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	table := student.SampleTable()
	col := -1
	for i, c := range table.Columns {
		if c == student.ColInternalMarks {
			col = i
		}
	}
	require.NotEqual(t, -1, col)
	table.Rows[0][col] = student.Cell{Text: "abc", Raw: "abc"}

	req, rec := newUploadRequest(t, "/upload", "", "students.xlsx", testutil.Workbook(t, table))
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	req, rec = newPageRequest("/", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>abc</td>") // raw table keeps the uploaded text
}

func TestDashboard_filter(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	// without data, filtering is a no-op
	req, rec := newFormRequest("/filter", token, url.Values{"filter": {"department"}, "department": {"Arts"}})
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	req, rec = newUploadRequest(t, "/api/v1/upload", token, "students.xlsx", testutil.Workbook(t, student.SampleTable()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := func() dashboard.ViewState {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/view", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var v dashboard.ViewState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		return v
	}

	tests := []struct {
		name        string
		form        url.Values
		wantFilter  student.Filter
		wantRecords int
	}{
		{
			name:        "single department",
			form:        url.Values{"filter": {"department", "year", "name", "semester"}, "department": {"Arts"}, "year": {"1", "2"}, "name": {"Amani", "Baraka", "Chausiku"}, "semester": {"1", "2"}},
			wantFilter:  student.Filter{Departments: []string{"Arts"}, Years: []string{"1", "2"}, Names: []string{"Amani", "Baraka", "Chausiku"}, Semesters: []string{"1", "2"}},
			wantRecords: 1,
		},
		{
			name:        "nothing selected",
			form:        url.Values{"filter": {"department"}},
			wantFilter:  student.Filter{Departments: []string{}},
			wantRecords: 0,
		},
		{
			name:        "unsubmitted fields select everything",
			form:        url.Values{"semester": {"2"}},
			wantFilter:  student.Filter{},
			wantRecords: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newFormRequest("/filter", token, tt.form)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusSeeOther, rec.Code)

			v := view()
			assert.Equal(t, tt.wantFilter, v.Filter)
			if tt.wantRecords == 0 {
				assert.Nil(t, v.Analytics)
				assert.NotNil(t, v.Warning)
				return
			}
			require.NotNil(t, v.Analytics)
			assert.Equal(t, tt.wantRecords, v.Analytics.Records)
		})
	}
}

func TestDashboard_logout(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	req, rec := newFormRequest("/logout", token, url.Values{})
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assertBodyContains(t, rec, dashboard.LogoutText, "Login to Student Records Dashboard")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cleared = c.MaxAge < 0
		}
	}
	assert.True(t, cleared, "failed! session cookie not cleared")

	req, rec = newPageRequest("/", token)
	app.ServeHTTP(rec, req)
	assertBodyContains(t, rec, "Login to Student Records Dashboard")
}
