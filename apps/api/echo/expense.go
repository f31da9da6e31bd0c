package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core/expense"
)

type expenseApi struct {
	svc      *expense.Service
	validate *validator.Validate
}

func registerExpenseAPI(g *echo.Group, svc *expense.Service, validate *validator.Validate) {
	api := expenseApi{svc: svc, validate: validate}

	eg := g.Group("/spese")
	eg.GET("", api.query)
	eg.GET("/filtrate", api.query)
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *expenseApi) create(ctx echo.Context) error {
	var data expense.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to expense.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording expense")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *expenseApi) query(ctx echo.Context) error {
	var filter expense.Filter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []expense.Expense{})
	}
	filter.Clean()

	expenses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	if expenses == nil {
		expenses = []expense.Expense{}
	}
	return ctx.JSON(http.StatusOK, expenses)
}

func (api *expenseApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	e, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting expense")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *expenseApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting expense")
	}
	return ctx.NoContent(http.StatusNoContent)
}
