package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/school"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc *course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/corsi")
	cg.GET("", api.queryActive)
	cg.POST("", api.create)
	cg.GET("/all", api.query)
	cg.GET("/disattivati", api.queryInactive)
	cg.GET("/tipo/:tipo", api.queryByType)
	cg.GET("/insegnante/:id", api.queryByTeacher)
	cg.GET("/lista-attesa/studenti", api.waitlist)
	cg.POST("/compatibili", api.draftCandidates)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.PUT("/:id/interrompi", api.deactivate)
	cg.PUT("/:id/riattiva", api.reactivate)
	cg.POST("/:id/aggiungi-studente", api.addStudent)
	cg.GET("/:id/compatibili", api.candidates)

	g.DELETE("/studenti/:id/rimuovi-da-corso/:corsoId", api.removeStudent)
	g.GET("/calendario/corsi-programmati", api.calendar)
	g.GET("/livelli", api.levels)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) list(ctx echo.Context, filter course.QueryFilter) error {
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, course.OrderingFields)

	courses, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []school.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) bindFilter(ctx echo.Context) course.QueryFilter {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		// a malformed filter is ignored rather than rejected
		return course.QueryFilter{}
	}
	return filter
}

func (api *courseApi) query(ctx echo.Context) error {
	return api.list(ctx, api.bindFilter(ctx))
}

func (api *courseApi) queryActive(ctx echo.Context) error {
	filter := api.bindFilter(ctx)
	active := true
	filter.Active = &active
	return api.list(ctx, filter)
}

func (api *courseApi) queryInactive(ctx echo.Context) error {
	filter := api.bindFilter(ctx)
	active := false
	filter.Active = &active
	return api.list(ctx, filter)
}

func (api *courseApi) queryByType(ctx echo.Context) error {
	ct, err := school.ParseCourseType(ctx.Param("tipo"))
	if err != nil {
		return core.NewFieldError("tipo", err.Error())
	}
	filter := api.bindFilter(ctx)
	filter.Type = ct
	return api.list(ctx, filter)
}

func (api *courseApi) queryByTeacher(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	filter := api.bindFilter(ctx)
	filter.TeacherID = id
	return api.list(ctx, filter)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data course.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.Payload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) deactivate(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.Deactivate(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deactivating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) reactivate(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.Reactivate(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "reactivating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

type AddStudentRequest struct {
	StudentID int `json:"studenteId" validate:"required,gt=0"`
}

func (api *courseApi) addStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data AddStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddStudentRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	c, err := api.svc.AddStudent(ctx.Request().Context(), id, data.StudentID)
	if err != nil {
		return errors.Wrap(err, "adding student to course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) removeStudent(ctx echo.Context) error {
	studentID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	courseID, err := paramID(ctx, "corsoId")
	if err != nil {
		return err
	}
	if err := api.svc.RemoveStudent(ctx.Request().Context(), studentID, courseID); err != nil {
		return errors.Wrap(err, "removing student from course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) candidates(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	cands, err := api.svc.Eligible(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "computing candidates")
	}
	return ctx.JSON(http.StatusOK, cands)
}

// draftCandidates computes the candidates of a course form that is not saved yet.
// `?corso=` is the id of the edited course, if any.
func (api *courseApi) draftCandidates(ctx echo.Context) error {
	courseID, err := queryInt(ctx, "corso", 0)
	if err != nil {
		return err
	}

	var data course.Payload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to course.Payload")
	}

	cands, err := api.svc.EligibleFor(ctx.Request().Context(), courseID, data)
	if err != nil {
		return errors.Wrap(err, "computing candidates")
	}
	return ctx.JSON(http.StatusOK, cands)
}

func (api *courseApi) waitlist(ctx echo.Context) error {
	students, err := api.svc.Waitlist(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying waitlist")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) calendar(ctx echo.Context) error {
	var filter course.CalendarFilter
	if err := ctx.Bind(&filter); err != nil {
		filter = course.CalendarFilter{}
	}
	entries, err := api.svc.Calendar(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *courseApi) levels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Levels())
}
