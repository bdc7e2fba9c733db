package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	authmw "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc    *service.CartService
	Orders *service.OrderService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.Get(ctx, authmw.UserID(c))
	if err != nil {
		return fail(l, "cart_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(view))
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "cart_add_error", err)
	}
	item, err := h.Svc.Add(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "cart_add_error", err)
	}
	l.Info("cart_add_success", "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.OK(item))
}

func (h *CartHTTP) ChangeQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.change_quantity")

	var req transport.ChangeQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "cart_quantity_error", err)
	}
	item, removed, err := h.Svc.ChangeQuantity(ctx, authmw.UserID(c), c.Param("id"), req)
	if err != nil {
		return fail(l, "cart_quantity_error", err)
	}
	if removed {
		return c.JSON(http.StatusOK, transport.OKMessage(nil, "item removed from cart"))
	}
	return c.JSON(http.StatusOK, transport.OK(item))
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	if err := h.Svc.Remove(ctx, authmw.UserID(c), c.Param("id")); err != nil {
		return fail(l, "cart_remove_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(nil, "item removed from cart"))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.Clear(ctx, authmw.UserID(c)); err != nil {
		return fail(l, "cart_clear_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(nil, "cart cleared"))
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "checkout_error", err)
	}
	o, err := h.Orders.Checkout(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	l.Info("checkout_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, transport.OKMessage(o, "order placed"))
}
