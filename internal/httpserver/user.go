package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	jwthelp "github.com/Skotchmaster/food_delivery/pkg/jwt"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
	authmw "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

type UserHTTP struct {
	Svc  *service.UserService
	Demo *service.DemoService
}

type authResponse struct {
	User *models.User `json:"user"`
	*tokens.Pair
}

func actor(c echo.Context) service.Actor {
	return service.Actor{ID: authmw.UserID(c), Role: authmw.Role(c)}
}

func refreshFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req transport.RefreshRequest
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}
	u, err := h.Svc.Register(ctx, actor(c), req)
	if err != nil {
		return fail(l, "register_error", err)
	}
	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, transport.OKMessage(u, "user created"))
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	u, pair, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err)
	}
	authmw.SetAuthCookies(c, pair)
	l.Info("login_successful", "user_id", u.ID)
	return c.JSON(http.StatusOK, transport.OK(authResponse{User: u, Pair: pair}))
}

func (h *UserHTTP) DemoLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.demo_login")

	if h.Demo == nil || !h.Demo.Enabled() {
		l.Warn("demo_login_error", "status", http.StatusNotFound, "reason", "demo login disabled")
		return echo.NewHTTPError(http.StatusNotFound, "demo login is disabled")
	}
	var req transport.DemoLoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "demo_login_error", err)
	}
	u, pair, err := h.Demo.Login(ctx, req)
	if err != nil {
		return fail(l, "demo_login_error", err)
	}
	authmw.SetAuthCookies(c, pair)
	l.Info("demo_login_successful", "user_id", u.ID)
	return c.JSON(http.StatusOK, transport.OK(authResponse{User: u, Pair: pair}))
}

func (h *UserHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.refresh")

	raw := refreshFromRequest(c)
	if raw == "" {
		l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "no refresh token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}
	pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		authmw.ClearAuthCookies(c)
		return fail(l, "refresh_error", err)
	}
	authmw.SetAuthCookies(c, pair)
	return c.JSON(http.StatusOK, transport.OK(pair))
}

func (h *UserHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.logout")

	raw := refreshFromRequest(c)
	authmw.ClearAuthCookies(c)
	if err := h.Svc.Logout(ctx, raw); err != nil {
		return fail(l, "logout_error", err)
	}
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.OKMessage(nil, "logged out"))
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "user_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.List(items))
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	a := actor(c)
	u, err := h.Svc.Get(ctx, a, a.ID)
	if err != nil {
		return fail(l, "user_me_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(u))
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	u, err := h.Svc.Get(ctx, actor(c), c.Param("id"))
	if err != nil {
		return fail(l, "user_get_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK(u))
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "user_update_error", err)
	}
	u, err := h.Svc.Update(ctx, actor(c), c.Param("id"), req)
	if err != nil {
		return fail(l, "user_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.OKMessage(u, "user updated"))
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id := c.Param("id")
	if err := h.Svc.Delete(ctx, actor(c), id); err != nil {
		return fail(l, "user_delete_error", err)
	}
	if id == authmw.UserID(c) {
		authmw.ClearAuthCookies(c)
	}
	l.Info("user_delete_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.OKMessage(nil, "user deleted"))
}
