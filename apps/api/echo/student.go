package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
)

type studentApi struct {
	svc        *student.Service
	paymentSvc *payment.Service
	validate   *validator.Validate
}

func registerStudentAPI(g *echo.Group, svc *student.Service, paymentSvc *payment.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, paymentSvc: paymentSvc, validate: validate}

	sg := g.Group("/studenti")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/senza-corso", api.queryWithoutCourse)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.GET("/:id/pagamenti", api.payments)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) list(ctx echo.Context, filter student.QueryFilter) error {
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, student.OrderingFields)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Student{})
	}
	return api.list(ctx, filter)
}

func (api *studentApi) queryWithoutCourse(ctx echo.Context) error {
	return api.list(ctx, student.QueryFilter{WithoutCourse: true})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data student.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) payments(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	payments, err := api.paymentSvc.ByStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying student payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}
