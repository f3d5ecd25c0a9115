package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/rekodi/apps/api/echo"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
	"github.com/trezcool/rekodi/core/student"
	"github.com/trezcool/rekodi/services/spreadsheet"
	"github.com/trezcool/rekodi/testutil"
)

func TestAPI_login(t *testing.T) {
	app, _ := setup(t)

	tests := []httpTest{
		{
			name:     "blank fields",
			body:     marchallObj(t, LoginRequest{Username: "  "}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: "admin", Password: "wrong"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errLoginFailed),
		},
		{
			name:     "wrong username",
			body:     marchallObj(t, LoginRequest{Username: "Admin", Password: "password123"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errLoginFailed),
		},
		{
			name:     "success",
			body:     marchallObj(t, LoginRequest{Username: " admin ", Password: "password123"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/v1/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestAPI_authRequired(t *testing.T) {
	app, deps := setup(t)
	anonToken, err := GenerateToken(deps.Conf, session.New())
	require.NoError(t, err)

	tests := []httpTest{
		{name: "view without token", method: http.MethodGet, path: "/api/v1/view"},
		{name: "view with garbage token", method: http.MethodGet, path: "/api/v1/view", token: "not.a.token"},
		{name: "view with unknown session", method: http.MethodGet, path: "/api/v1/view", token: anonToken},
		{name: "filter", method: http.MethodPost, path: "/api/v1/filter", body: []byte(`{}`)},
		{name: "export", method: http.MethodGet, path: "/api/v1/export"},
		{name: "chart", method: http.MethodGet, path: "/api/v1/charts/grades.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusUnauthorized
			tt.wantData = marchallObj(t, errUnauthenticated)
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAPI_upload(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)
	workbook := testutil.Workbook(t, student.SampleTable())

	tests := []struct {
		httpTest
		fileName string
		content  []byte
	}{
		{
			httpTest: httpTest{name: "no file", wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "no file uploaded"})},
		},
		{
			httpTest: httpTest{
				name:     "not a spreadsheet",
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"file": "only .xlsx spreadsheets are supported"}),
			},
			fileName: "students.csv",
			content:  []byte("Stu_ID,Stu_name\n"),
		},
		{
			httpTest: httpTest{
				name:     "missing column",
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]interface{}{
					"error":   "Missing columns: [Stu_fee_paid]",
					"missing": []string{student.ColFeePaid},
				}),
			},
			fileName: "students.xlsx",
			content:  testutil.Workbook(t, testutil.WithoutColumn(student.SampleTable(), student.ColFeePaid)),
		},
		{
			httpTest: httpTest{name: "corrupt workbook", wantCode: http.StatusBadRequest},
			fileName: "students.xlsx",
			content:  []byte("not a workbook"),
		},
		{
			httpTest: httpTest{name: "success", wantCode: http.StatusOK},
			fileName: "students.xlsx",
			content:  workbook,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, "/api/v1/upload", token, tt.fileName, tt.content)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt.httpTest, rec)

			if tt.wantCode == http.StatusOK {
				var v dashboard.ViewState
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
				assert.Equal(t, "students.xlsx", v.FileName)
				assert.Len(t, v.Records, 3)
				require.NotNil(t, v.Analytics)
				assert.Equal(t, 3, v.Analytics.Records)
			}
		})
	}
}

func TestAPI_filter(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/filter", token, []byte(`{"departments": ["Science"]}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "no spreadsheet uploaded yet"}),
	}, rec)

	req, rec = newUploadRequest(t, "/api/v1/upload", token, "students.xlsx", testutil.Workbook(t, student.SampleTable()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		httpTest
		wantRecords int // 0: empty selection warning
	}{
		{httpTest: httpTest{name: "department", body: []byte(`{"departments": [" Science "]}`)}, wantRecords: 2},
		{httpTest: httpTest{name: "year and semester", body: []byte(`{"years": ["2"], "semesters": ["1"]}`)}, wantRecords: 1},
		{httpTest: httpTest{name: "nothing selected", body: []byte(`{"names": []}`)}},
		{httpTest: httpTest{name: "reset", body: []byte(`{}`)}, wantRecords: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/v1/filter", token, tt.body)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var v dashboard.ViewState
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
			assert.Len(t, v.Records, 3)
			if tt.wantRecords == 0 {
				assert.Nil(t, v.Analytics)
				require.NotNil(t, v.Warning)
				assert.Equal(t, dashboard.FilteredEmptyText, v.Warning.Text)
				return
			}
			require.NotNil(t, v.Analytics)
			assert.Equal(t, tt.wantRecords, v.Analytics.Records)
		})
	}
}

func TestAPI_downloads(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	// the template is public
	req, rec := newRequest(http.MethodGet, "/api/v1/template")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), dashboard.TemplateFileName)
	table, err := spreadsheet.Excel{}.ReadTable(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, student.InputColumns, table.Columns)

	req, rec = newAuthRequest(http.MethodGet, "/api/v1/export", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "no spreadsheet uploaded yet"}),
	}, rec)

	req, rec = newUploadRequest(t, "/api/v1/upload", token, "students.xlsx", testutil.Workbook(t, student.SampleTable()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/api/v1/export", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), dashboard.ProcessedFileName)
	table, err = spreadsheet.Excel{}.ReadTable(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, student.ProcessedColumns(student.InputColumns), table.Columns)
	assert.Len(t, table.Rows, 3)

	tests := []httpTest{
		{name: "grades", path: "/api/v1/charts/grades.png", wantCode: http.StatusOK},
		{name: "fee summary", path: "/api/v1/charts/fee-summary.png", wantCode: http.StatusOK},
		{name: "unknown chart", path: "/api/v1/charts/lol.png", wantCode: http.StatusNotFound},
		{name: "no extension", path: "/api/v1/charts/grades", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
			}
		})
	}
}

func TestAPI_logout(t *testing.T) {
	app, deps := setup(t)
	token := getToken(t, app, deps)

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/view", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/logout", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the token outlives the session
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/view", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)}, rec)
}
