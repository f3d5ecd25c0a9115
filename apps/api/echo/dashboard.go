package echoapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/session"
)

// dashboardPage serves the browser UI. Every POST redirects back to `/`, where the
// notice left by the action is displayed once.
type dashboardPage struct {
	conf       *core.Config
	svc        *dashboard.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerDashboard(g *echo.Group, deps ServerDeps) {
	pg := dashboardPage{
		conf:       deps.Conf,
		svc:        deps.Svc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	// public
	g.GET("/", pg.index)
	g.POST("/login", pg.login)
	g.POST("/logout", pg.logout)
	g.GET("/template", downloadTemplate(deps.Svc))

	// logged-in
	g.POST("/upload", pg.upload, loginRequired)
	g.POST("/filter", pg.filter, loginRequired)
	g.GET("/export", exportProcessed(deps.Svc), loginRequired)
	g.GET("/charts/:file", renderChart(deps.Svc), loginRequired)
}

// Handlers

func (pg *dashboardPage) index(ctx echo.Context) error {
	v, err := pg.svc.View(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "getting view")
	}
	return pg.render(ctx, http.StatusOK, v)
}

func (pg *dashboardPage) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	// blank fields fail like any wrong pair
	data.Username = core.CleanString(data.Username)

	v, err := pg.svc.Login(ctx.Request().Context(), getContextSession(ctx), data.Username, data.Password)
	if err != nil {
		if _, ok := errors.Cause(err).(*session.AuthenticationError); ok {
			return pg.render(ctx, http.StatusUnauthorized, v)
		}
		return errors.Wrap(err, "logging in")
	}

	token, err := GenerateToken(pg.conf, v.Session)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, pg.conf, token)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (pg *dashboardPage) logout(ctx echo.Context) error {
	v, err := pg.svc.Logout(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "logging out")
	}
	clearSessionCookie(ctx, pg.conf)
	// the logged-out session is not stored: render the notice right away
	return pg.render(ctx, http.StatusOK, v)
}

func (pg *dashboardPage) upload(ctx echo.Context) error {
	s := getContextSession(ctx)

	fh, err := ctx.FormFile(uploadFileField)
	if err != nil {
		if !isMissingFile(err) {
			return errors.Wrap(err, "reading form file")
		}
		return pg.reject(ctx, s, errors.New(errMissingFile.Message.(string)))
	}

	data := UploadRequest{FileName: fh.Filename}
	if err = data.Validate(pg.validate); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return pg.reject(ctx, s, errors.New(firstMessage(core.TranslateValidationErrors(vErrs, pg.translator))))
		}
		return err
	}

	if err = pg.uploadFile(ctx, s, fh); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (pg *dashboardPage) uploadFile(ctx echo.Context, s session.Session, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening form file")
	}
	defer f.Close()

	v, err := pg.svc.Upload(ctx.Request().Context(), s, fh.Filename, f)
	if err != nil && v.Notice == nil { // the notice already tells the user what went wrong
		return errors.Wrap(err, "uploading")
	}
	return nil
}

func (pg *dashboardPage) filter(ctx echo.Context) error {
	var data FilterForm
	if err := data.Bind(ctx); err != nil {
		return errors.Wrap(err, "binding to FilterForm")
	}
	if _, err := pg.svc.ApplyFilter(ctx.Request().Context(), getContextSession(ctx), data.Filter); err != nil {
		if errors.Cause(err) != dashboard.ErrNoData {
			return errors.Wrap(err, "applying filter")
		}
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (pg *dashboardPage) reject(ctx echo.Context, s session.Session, reason error) error {
	if _, err := pg.svc.Reject(ctx.Request().Context(), s, reason); err != nil {
		return errors.Wrap(err, "rejecting upload")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (pg *dashboardPage) render(ctx echo.Context, code int, v dashboard.ViewState) error {
	name := pageLogin
	if v.Session.IsAuthenticated() {
		name = pageDashboard
	}
	return ctx.Render(code, name, newPage(pg.conf.AppName, v))
}

// Downloads, shared with the JSON API

func downloadTemplate(svc *dashboard.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var buf bytes.Buffer
		if err := svc.Template(&buf); err != nil {
			return err
		}
		return attachment(ctx, dashboard.TemplateFileName, dashboard.ContentTypeXLSX, buf.Bytes())
	}
}

func exportProcessed(svc *dashboard.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var buf bytes.Buffer
		if err := svc.Export(ctx.Request().Context(), getContextSession(ctx), &buf); err != nil {
			return err
		}
		return attachment(ctx, dashboard.ProcessedFileName, dashboard.ContentTypeXLSX, buf.Bytes())
	}
}

func renderChart(svc *dashboard.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		name := ctx.Param("file")
		if !strings.HasSuffix(name, ".png") {
			return errHttpNotFound
		}
		var buf bytes.Buffer
		if err := svc.Chart(ctx.Request().Context(), getContextSession(ctx), strings.TrimSuffix(name, ".png"), &buf); err != nil {
			return err
		}
		ctx.Response().Header().Set("Cache-Control", "no-store")
		return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
	}
}

func attachment(ctx echo.Context, fileName, contentType string, b []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Blob(http.StatusOK, contentType, b)
}

func isMissingFile(err error) bool {
	cause := errors.Cause(err)
	return cause == http.ErrMissingFile || cause == http.ErrNotMultipart
}

func firstMessage(flds map[string]string) string {
	for _, msg := range flds {
		return msg
	}
	return ""
}
