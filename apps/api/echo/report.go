package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/report"
	"github.com/kipawa/jaribio/core/user"
)

type reportApi struct {
	svc          report.ServiceInterface
	dashboardSvc *report.DashboardService
	userSvc      user.ServiceInterface
	cache        core.Cache
	validate     *validator.Validate
	translator   ut.Translator
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := reportApi{
		svc:          deps.ReportSvc,
		dashboardSvc: deps.DashboardSvc,
		userSvc:      deps.UserSvc,
		cache:        deps.Cache,
		validate:     deps.Validate,
		translator:   deps.Translator,
	}
	cached := cacheMiddleware(api.cache)

	rg := g.Group("/reports", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query, adminMiddleware(), cached)
	rg.GET("/:id", api.retrieve, adminMiddleware(), cached)
	rg.PUT("/:id", api.updateStatus, adminMiddleware())
	rg.DELETE("/:id", api.destroy, adminMiddleware())

	g.GET("/dashboard", api.dashboard, jwt, adminMiddleware(), cached)
}

func (api *reportApi) create(ctx echo.Context) error {
	var data report.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}

	// the reporter is always the authenticated user
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	data.ReporterID = ctxUsr.ID

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rpt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}

	api.cache.Delete("/v1/reports")
	api.cache.Delete("/v1/dashboard")
	return ctx.JSON(http.StatusCreated, rpt)
}

func (api *reportApi) query(ctx echo.Context) error {
	filter := report.QueryFilter{
		Status:        ctx.QueryParam("status"),
		ReportedModel: ctx.QueryParam("reported_model"),
	}
	reports, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []report.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	rpt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, report.ErrNotFound)
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *reportApi) updateStatus(ctx echo.Context) error {
	var data report.UpdateReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReport")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rpt, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, report.ErrNotFound)
	}

	api.cache.Delete("/v1/reports")
	api.cache.Delete("/v1/reports/" + rpt.ID)
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *reportApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, report.ErrNotFound)
	}

	api.cache.Delete("/v1/reports")
	api.cache.Delete("/v1/reports/" + ctx.Param("id"))
	api.cache.Delete("/v1/dashboard")
	return ctx.NoContent(http.StatusNoContent)
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	stats, err := api.dashboardSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
