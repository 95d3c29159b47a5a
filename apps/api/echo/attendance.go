package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/portal"
)

type attendanceApi struct {
	portal *portal.Portal
}

func registerAttendanceAPI(g *echo.Group, p *portal.Portal) {
	api := attendanceApi{portal: p}

	ag := g.Group("/attendance")
	ag.GET("", api.query)
	ag.POST("", api.mark)
	ag.POST("/batch", api.markBatch)
	ag.GET("/date/:date", api.forDate)
	ag.PATCH("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}

	records, err := api.portal.ListAttendance(ctx.Request().Context(), token(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) forDate(ctx echo.Context) error {
	date, err := core.ParseDate(ctx.Param("date"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: err.Error()})
	}

	records, err := api.portal.GetAttendanceForDate(ctx.Request().Context(), token(ctx), date)
	if err != nil {
		return errors.Wrap(err, "getting attendance for date")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}

	a, err := api.portal.MarkAttendance(ctx.Request().Context(), token(ctx), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *attendanceApi) markBatch(ctx echo.Context) error {
	var data attendance.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}

	records, err := api.portal.MarkAttendanceBatch(ctx.Request().Context(), token(ctx), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance batch")
	}
	return ctx.JSON(http.StatusCreated, records)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}

	a, err := api.portal.UpdateAttendance(ctx.Request().Context(), token(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.portal.DeleteAttendance(ctx.Request().Context(), token(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}
