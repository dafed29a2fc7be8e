package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skorin/webshop/internal/payment"
	"github.com/skorin/webshop/internal/service"
)

// writeErr maps service errors onto status codes. Field-level validation
// failures keep their per-field detail.
func writeErr(c echo.Context, err error) error {
	var fields service.FieldErrors
	if errors.As(err, &fields) {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": fields})
	}
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, payment.ErrProvider):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
