package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/portal"
)

type (
	LoginRequest struct {
		Role     account.Role `json:"role"`
		Handle   string       `json:"handle"`
		Password string       `json:"password"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

type accountApi struct {
	portal *portal.Portal
}

func registerAccountAPI(g *echo.Group, p *portal.Portal) {
	api := accountApi{portal: p}

	ag := g.Group("/accounts")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.GET("/me", api.me)
	ag.POST("/password", api.changePassword)
}

func (api *accountApi) register(ctx echo.Context) error {
	var data portal.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}

	id, err := api.portal.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusCreated, id)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	sess, err := api.portal.Login(ctx.Request().Context(), data.Role, data.Handle, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *accountApi) me(ctx echo.Context) error {
	id, err := api.portal.Me(ctx.Request().Context(), token(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, id)
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	var data account.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}

	if err := api.portal.ChangePassword(ctx.Request().Context(), token(ctx), data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}
