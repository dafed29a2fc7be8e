package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/service"
)

type AccountHandler struct {
	Svc *service.AccountService
}

func (h *AccountHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	u, err := h.Svc.Register(ctx, in)
	if err != nil {
		l.Warn("register_error", "error", err)
		return writeErr(c, err)
	}

	l.Info("user registered", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *AccountHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	token, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		l.Warn("login_error", "error", err)
		return writeErr(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": token})
}
