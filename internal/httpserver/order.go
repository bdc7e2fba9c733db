package httpserver

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mine")

	items, err := h.Svc.Mine(ctx, actor(c).ID)
	if err != nil {
		return fail(l, "order_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	o, err := h.Svc.Get(ctx, actor(c), c.Param("id"))
	if err != nil {
		return fail(l, "order_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(o))
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	o, err := h.Svc.Cancel(ctx, actor(c), c.Param("id"))
	if err != nil {
		return fail(l, "order_cancel_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(o, "order cancelled"))
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	items, err := h.Svc.List(ctx, c.QueryParam("status"))
	if err != nil {
		return fail(l, "order_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "order_status_error", err)
	}
	o, err := h.Svc.UpdateStatus(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "order_status_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(o, "order status updated"))
}

func (h *OrderHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.export")

	var buf bytes.Buffer
	if err := h.Svc.Export(ctx, &buf, c.QueryParam("status")); err != nil {
		return fail(l, "order_export_error", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	l.Info("order_export_success", "bytes", buf.Len())
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
