package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type FoodHTTP struct {
	Svc *service.FoodService
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *FoodHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.list")

	items, err := h.Svc.List(ctx, c.QueryParam("category"))
	if err != nil {
		return fail(l, "food_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *FoodHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.search")

	limit := parseIntDefault(c.QueryParam("limit"), service.DefaultSearchLimit)
	items, err := h.Svc.Search(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return fail(l, "food_search_error", err)
	}
	l.Info("food_search_success", "hits", len(items))
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *FoodHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.get")

	f, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "food_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(f))
}

func (h *FoodHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.create")

	var req transport.CreateFoodRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "food_create_error", err)
	}
	f, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "food_create_error", err)
	}
	l.Info("food_create_success", "food_id", f.ID)
	return c.JSON(http.StatusCreated, transport.OKMessage(f, "food item created"))
}

func (h *FoodHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.update")

	var req transport.PatchFoodRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "food_update_error", err)
	}
	f, err := h.Svc.Update(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "food_update_error", err)
	}
	l.Info("food_update_success", "food_id", f.ID)
	return c.JSON(http.StatusOK, transport.OKMessage(f, "food item updated"))
}

func (h *FoodHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.delete")

	id := c.Param("id")
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "food_delete_error", err)
	}
	l.Info("food_delete_success", "food_id", id)
	return c.JSON(http.StatusOK, transport.OKMessage(nil, "food item deleted"))
}

func (h *FoodHTTP) AddVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.add_variety")

	var req transport.VarietyRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "variety_create_error", err)
	}
	f, _, err := h.Svc.AddVariety(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "variety_create_error", err)
	}
	return c.JSON(http.StatusCreated, transport.OKMessage(f, "variety added"))
}

func (h *FoodHTTP) UpdateVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.update_variety")

	var req transport.PatchVarietyRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "variety_update_error", err)
	}
	f, err := h.Svc.UpdateVariety(ctx, c.Param("id"), c.Param("varietyId"), req)
	if err != nil {
		return fail(l, "variety_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(f, "variety updated"))
}

func (h *FoodHTTP) DeleteVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.delete_variety")

	f, err := h.Svc.DeleteVariety(ctx, c.Param("id"), c.Param("varietyId"))
	if err != nil {
		return fail(l, "variety_delete_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(f, "variety deleted"))
}
