package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
)

type roomApi struct {
	svc      *room.Service
	validate *validator.Validate
}

func registerRoomAPI(g *echo.Group, svc *room.Service, validate *validator.Validate) {
	api := roomApi{svc: svc, validate: validate}

	rg := g.Group("/aule")
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *roomApi) create(ctx echo.Context) error {
	var data room.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to room.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *roomApi) query(ctx echo.Context) error {
	rooms, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []school.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *roomApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	r, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *roomApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data room.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to room.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *roomApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}
