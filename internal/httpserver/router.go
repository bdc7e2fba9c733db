package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	authmw "github.com/Skotchmaster/food_delivery/pkg/middleware/auth"
	"github.com/Skotchmaster/food_delivery/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/food_delivery/pkg/middleware/logging"
)

type Deps struct {
	Foods  *service.FoodService
	Offers *service.OfferService
	Users  *service.UserService
	Demo   *service.DemoService
	Carts  *service.CartService
	Orders *service.OrderService
	Sync   *service.SyncService

	JWTSecret   []byte
	Logger      *slog.Logger
	CORSOrigins []string
	// CSRF enables the double-submit check for cookie sessions.
	CSRF bool

	// Ready reports whether backing stores are reachable. Optional.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the common middleware chain and every
// API route registered.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	if len(d.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
		}))
	} else {
		e.Use(echomw.CORS())
	}
	if d.CSRF {
		e.Use(csrf.Middleware(csrf.Config{
			TrustedOrigins: d.CORSOrigins,
			SkipPaths:      []string{"/api/users/login", "/api/demo/login"},
		}))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", readiness(d.Ready))

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.Users)

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, transport.OK(echo.Map{"status": "ok"}))
	})

	users := &UserHTTP{Svc: d.Users, Demo: d.Demo}
	api.POST("/demo/login", users.DemoLogin)

	foods := &FoodHTTP{Svc: d.Foods}
	food := api.Group("/food")
	food.GET("/all", foods.List)
	food.GET("/search", foods.Search)
	food.GET("/:id", foods.Get)
	foodAdmin := food.Group("", authMW.RequireAdmin)
	foodAdmin.POST("", foods.Create)
	foodAdmin.PUT("/:id", foods.Update)
	foodAdmin.DELETE("/:id", foods.Delete)
	foodAdmin.POST("/:id/varieties", foods.AddVariety)
	foodAdmin.PUT("/:id/varieties/:varietyId", foods.UpdateVariety)
	foodAdmin.DELETE("/:id/varieties/:varietyId", foods.DeleteVariety)

	offers := &OfferHTTP{Svc: d.Offers}
	for _, prefix := range []string{"/special-offers", "/offers"} {
		g := api.Group(prefix)
		g.GET("", offers.List)
		g.GET("/:id", offers.Get)
		admin := g.Group("", authMW.RequireAdmin)
		admin.GET("/all", offers.ListAll)
		admin.POST("", offers.Create)
		admin.PUT("/:id", offers.Update)
		admin.DELETE("/:id", offers.Delete)
		admin.POST("/:id/restore", offers.Restore)
	}

	u := api.Group("/users")
	u.POST("/login", users.Login)
	u.POST("/logout", users.Logout)
	u.POST("/refresh", users.Refresh)
	u.POST("", users.Create, authMW.OptionalAuth)
	u.GET("/all", users.List, authMW.RequireAdmin)
	u.GET("/me", users.Me, authMW.RequireAuth)
	u.GET("/:id", users.Get, authMW.RequireAuth)
	u.PUT("/:id", users.Update, authMW.RequireAuth)
	u.DELETE("/:id", users.Delete, authMW.RequireAuth)

	carts := &CartHTTP{Svc: d.Carts, Orders: d.Orders}
	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", carts.Get)
	cart.DELETE("", carts.Clear)
	cart.POST("/items", carts.Add)
	cart.PATCH("/items/:id", carts.ChangeQuantity)
	cart.DELETE("/items/:id", carts.Remove)
	cart.POST("/checkout", carts.Checkout)

	orders := &OrderHTTP{Svc: d.Orders}
	order := api.Group("/orders", authMW.RequireAuth)
	order.GET("/my", orders.Mine)
	order.GET("/:id", orders.Get)
	order.POST("/:id/cancel", orders.Cancel)
	orderAdmin := api.Group("/orders", authMW.RequireAdmin)
	orderAdmin.GET("", orders.List)
	orderAdmin.GET("/export", orders.Export)
	orderAdmin.PATCH("/:id/status", orders.UpdateStatus)

	syncs := &SyncHTTP{Svc: d.Sync}
	api.POST("/sync", syncs.Apply, authMW.RequireAdmin)
}

func readiness(ready func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := ready(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
		}
		return c.NoContent(http.StatusOK)
	}
}
