package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/cart"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/repo"
)

type CartHandler struct {
	Repo  *repo.GormRepo
	Store cart.SessionStore
}

type cartMutation struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	sid := sessionID(c)
	cv, err := h.Store.Load(ctx, sid)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	products, err := h.Repo.AvailableProductsByIDs(ctx, cv.ProductIDs())
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": cv.Items(products),
		"qty":   cv.Len(),
		"total": cv.Total(),
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req cartMutation
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity <= 0 || req.ProductID == 0 {
		l.Warn("add_to_cart_error", "status", 400)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity>0 and product_id required"})
	}

	p, err := h.Repo.GetProduct(ctx, req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	sid := sessionID(c)
	cv, err := h.Store.Load(ctx, sid)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	cv.Add(p, req.Quantity)
	if err := h.Store.Save(ctx, sid, cv); err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	l.Info("item added to cart", "product_id", p.ID, "qty", cv.Len())
	return c.JSON(http.StatusOK, echo.Map{"qty": cv.Len(), "product": p.Title})
}

func (h *CartHandler) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	var req cartMutation
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	sid := sessionID(c)
	cv, err := h.Store.Load(ctx, sid)
	if err != nil {
		l.Error("update_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	cv.Update(req.ProductID, req.Quantity)
	if err := h.Store.Save(ctx, sid, cv); err != nil {
		l.Error("update_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"qty": cv.Len(), "total": cv.Total()})
}

func (h *CartHandler) DeleteFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	var req cartMutation
	if err := c.Bind(&req); err != nil {
		l.Warn("delete_from_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	sid := sessionID(c)
	cv, err := h.Store.Load(ctx, sid)
	if err != nil {
		l.Error("delete_from_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	cv.Delete(req.ProductID, req.Quantity)
	if err := h.Store.Save(ctx, sid, cv); err != nil {
		l.Error("delete_from_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"qty": cv.Len()})
}
