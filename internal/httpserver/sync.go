package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type SyncHTTP struct {
	Svc *service.SyncService
}

func (h *SyncHTTP) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sync.apply")

	var req transport.SyncRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "sync_error", err)
	}
	results, err := h.Svc.Apply(ctx, actor(c), req)
	if err != nil {
		return fail(l, "sync_error", err)
	}
	l.Info("sync_success", "operations", len(results))
	return c.JSON(http.StatusOK, transport.List(results))
}
