package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/portal"
)

type aggregateApi struct {
	portal *portal.Portal
}

func registerAggregateAPI(g *echo.Group, p *portal.Portal) {
	api := aggregateApi{portal: p}

	g.GET("/students/:id/aggregates/:kind", api.compute)
	g.GET("/overview", api.overview)
}

func (api *aggregateApi) compute(ctx echo.Context) error {
	var opts analytics.Options
	if err := bindQuery(ctx, &opts); err != nil {
		return err
	}

	res, err := api.portal.GetAggregates(
		ctx.Request().Context(), token(ctx),
		ctx.Param("id"), analytics.Kind(ctx.Param("kind")), opts,
	)
	if err != nil {
		return errors.Wrap(err, "computing aggregate")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *aggregateApi) overview(ctx echo.Context) error {
	ov, err := api.portal.GetClassOverview(ctx.Request().Context(), token(ctx))
	if err != nil {
		return errors.Wrap(err, "computing class overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}
