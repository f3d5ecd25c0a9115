package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
)

type dashboardApi struct {
	conf     *core.Config
	svc      *dashboard.Service
	validate *validator.Validate
}

func registerAPI(g *echo.Group, deps ServerDeps) {
	api := dashboardApi{
		conf:     deps.Conf,
		svc:      deps.Svc,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
	g.GET("/template", downloadTemplate(deps.Svc))

	// authed endpoints
	g.GET("/view", api.view, authRequired)
	g.POST("/upload", api.upload, authRequired)
	g.POST("/filter", api.filter, authRequired)
	g.GET("/export", exportProcessed(deps.Svc), authRequired)
	g.GET("/charts/:file", renderChart(deps.Svc), authRequired)
}

// Handlers

func (api *dashboardApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	v, err := api.svc.Login(ctx.Request().Context(), getContextSession(ctx), data.Username, data.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, v.Session)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *dashboardApi) logout(ctx echo.Context) error {
	if _, err := api.svc.Logout(ctx.Request().Context(), getContextSession(ctx)); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dashboardApi) view(ctx echo.Context) error {
	v, err := api.svc.View(ctx.Request().Context(), getContextSession(ctx))
	if err != nil {
		return errors.Wrap(err, "getting view")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *dashboardApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(uploadFileField)
	if err != nil {
		if isMissingFile(err) {
			return errMissingFile
		}
		return errors.Wrap(err, "reading form file")
	}
	data := UploadRequest{FileName: fh.Filename}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening form file")
	}
	defer f.Close()

	v, err := api.svc.Upload(ctx.Request().Context(), getContextSession(ctx), fh.Filename, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *dashboardApi) filter(ctx echo.Context) error {
	var data FilterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FilterRequest")
	}
	v, err := api.svc.ApplyFilter(ctx.Request().Context(), getContextSession(ctx), data.Filter())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}
