package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/report"
)

type reportApi struct {
	svc *report.Service
	now func() time.Time
}

func registerReportAPI(g *echo.Group, svc *report.Service) {
	api := reportApi{svc: svc, now: time.Now}

	dg := g.Group("/dashboard")
	dg.GET("/stats", api.stats)
	dg.GET("/avvisi", api.alerts)
	dg.GET("/pagamenti-mensili", api.monthlyPayments)
	dg.GET("/entrate-uscite", api.incomeExpenses)
	dg.GET("/spese-generali", api.expensesByCategory)
	dg.GET("/ore-insegnate", api.teacherHours)

	rg := g.Group("/report")
	rg.GET("/mensile", api.monthly)
	rg.GET("/annuale/:anno", api.yearly)
	rg.GET("/insegnante", api.teacher)
}

// Handlers

func (api *reportApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) alerts(ctx echo.Context) error {
	alerts, err := api.svc.Alerts(ctx.Request().Context(), api.now())
	if err != nil {
		return errors.Wrap(err, "computing alerts")
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *reportApi) monthlyPayments(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	totals, err := api.svc.MonthlyPayments(ctx.Request().Context(), year)
	if err != nil {
		return errors.Wrap(err, "computing monthly payments")
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *reportApi) incomeExpenses(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.IncomeExpenses(ctx.Request().Context(), year)
	if err != nil {
		return errors.Wrap(err, "computing income and expenses")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) expensesByCategory(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	totals, err := api.svc.ExpensesByCategory(ctx.Request().Context(), year)
	if err != nil {
		return errors.Wrap(err, "computing expenses by category")
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *reportApi) teacherHours(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	month, err := queryInt(ctx, "mese", 0)
	if err != nil {
		return err
	}
	hours, err := api.svc.TeacherHours(ctx.Request().Context(), year, month)
	if err != nil {
		return errors.Wrap(err, "computing teacher hours")
	}
	return ctx.JSON(http.StatusOK, hours)
}

func (api *reportApi) monthly(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	month, err := queryInt(ctx, "mese", int(api.now().Month()))
	if err != nil {
		return err
	}
	rep, err := api.svc.Report(ctx.Request().Context(), year, month)
	if err != nil {
		return errors.Wrap(err, "building monthly report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) yearly(ctx echo.Context) error {
	year, err := paramID(ctx, "anno")
	if err != nil {
		return err
	}
	rep, err := api.svc.Report(ctx.Request().Context(), year, 0)
	if err != nil {
		return errors.Wrap(err, "building yearly report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) teacher(ctx echo.Context) error {
	year, err := queryYear(ctx)
	if err != nil {
		return err
	}
	month, err := queryInt(ctx, "mese", 0)
	if err != nil {
		return err
	}
	teacherID, err := queryInt(ctx, "insegnanteId", 0)
	if err != nil {
		return err
	}
	if teacherID <= 0 {
		return core.NewFieldError("insegnanteId", "this field is required")
	}
	rep, err := api.svc.TeacherReport(ctx.Request().Context(), year, month, teacherID)
	if err != nil {
		return errors.Wrap(err, "building teacher report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
