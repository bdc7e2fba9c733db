package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type OfferHTTP struct {
	Svc *service.OfferService
}

func (h *OfferHTTP) list(c echo.Context, includeInactive bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.list")

	items, err := h.Svc.List(ctx, includeInactive)
	if err != nil {
		return fail(l, "offer_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *OfferHTTP) List(c echo.Context) error    { return h.list(c, false) }
func (h *OfferHTTP) ListAll(c echo.Context) error { return h.list(c, true) }

func (h *OfferHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.get")

	o, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "offer_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(o))
}

func (h *OfferHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.create")

	var req transport.CreateOfferRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "offer_create_error", err)
	}
	o, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "offer_create_error", err)
	}
	return c.JSON(http.StatusCreated, transport.OKMessage(o, "special offer created"))
}

func (h *OfferHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.update")

	var req transport.PatchOfferRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "offer_update_error", err)
	}
	o, err := h.Svc.Update(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "offer_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(o, "special offer updated"))
}

func (h *OfferHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.delete")

	o, err := h.Svc.Delete(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "offer_delete_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(o, "special offer deleted"))
}

func (h *OfferHTTP) Restore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.restore")

	o, err := h.Svc.Restore(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "offer_restore_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(o, "special offer restored"))
}
