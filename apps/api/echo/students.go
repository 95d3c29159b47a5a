package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/portal"
	"github.com/trezcool/academia/core/student"
)

type studentApi struct {
	portal *portal.Portal
}

func registerStudentAPI(g *echo.Group, p *portal.Portal) {
	api := studentApi{portal: p}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.PATCH("/me", api.updateOwnProfile)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/grades", api.grades)
	dg.GET("/attendance", api.attendance)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}

	students, err := api.portal.ListStudents(
		ctx.Request().Context(), token(ctx), filter,
		orderings(ctx, student.OrderingFields...)...,
	)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.portal.CreateStudent(ctx.Request().Context(), token(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.portal.GetStudent(ctx.Request().Context(), token(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err := api.portal.UpdateStudent(ctx.Request().Context(), token(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) updateOwnProfile(ctx echo.Context) error {
	var data student.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	std, err := api.portal.UpdateOwnProfile(ctx.Request().Context(), token(ctx), data)
	if err != nil {
		return errors.Wrap(err, "updating own profile")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.portal.DeleteStudent(ctx.Request().Context(), token(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) grades(ctx echo.Context) error {
	grades, err := api.portal.GetGradesForStudent(ctx.Request().Context(), token(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

type dateRange struct {
	From core.Date `query:"from"`
	To   core.Date `query:"to"`
}

func (api *studentApi) attendance(ctx echo.Context) error {
	var rng dateRange
	if err := bindQuery(ctx, &rng); err != nil {
		return err
	}

	records, err := api.portal.GetAttendanceForStudent(ctx.Request().Context(), token(ctx), ctx.Param("id"), rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "getting student attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}
