package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/httpserver"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type testServer struct {
	URL     string
	offline atomic.Bool
	users   *service.UserService
}

// newTestServer runs the real API over in-memory SQLite. While offline is
// set every connection is dropped before a response is written.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverSQLite, db.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	r := repo.NewGormRepo(gdb)
	require.NoError(t, r.Migrate(ctx))

	bus := events.NewBus()
	users := &service.UserService{Store: r, AccessSecret: []byte("access"), RefreshSecret: []byte("refresh"), Bus: bus}
	foods := &service.FoodService{Store: r, Bus: bus}
	offers := &service.OfferService{Store: r, Bus: bus}
	orders := &service.OrderService{Store: r, Users: r, Bus: bus, DeliveryFee: service.DefaultDeliveryFee}
	e := httpserver.New(&httpserver.Deps{
		Foods:     foods,
		Offers:    offers,
		Users:     users,
		Carts:     &service.CartService{Store: r, Foods: r, DeliveryFee: service.DefaultDeliveryFee},
		Orders:    orders,
		Sync:      &service.SyncService{Receipts: r, Foods: foods, Offers: offers},
		JWTSecret: users.AccessSecret,
		Logger:    logging.NewWithWriter("error", io.Discard),
	})

	ts := &testServer{users: users}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if ts.offline.Load() {
			panic(http.ErrAbortHandler)
		}
		e.ServeHTTP(w, req)
	}))
	t.Cleanup(srv.Close)
	ts.URL = srv.URL
	return ts
}

func (ts *testServer) adminClient(t *testing.T) *Client {
	t.Helper()
	_, err := ts.users.Register(context.Background(), service.Actor{Role: service.RoleAdmin}, transport.CreateUserRequest{
		FullName: "Admin", Username: "admin", EmailAddress: "admin@example.com", Password: "adminpass", Role: service.RoleAdmin,
	})
	require.NoError(t, err)
	c := New(ts.URL, NewMemoryStore())
	_, err = c.Login(context.Background(), "admin", "adminpass")
	require.NoError(t, err)
	return c
}

func TestClient_OfflineMenuAndFlush(t *testing.T) {
	ts := newTestServer(t)
	c := ts.adminClient(t)
	ctx := context.Background()

	dosa, err := c.CreateFood(ctx, FoodInput{Name: "Dosa", Description: "crispy", Price: 50, Category: "Breakfast"})
	require.NoError(t, err)
	assert.False(t, dosa.Pending)

	menu, err := c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 1)

	ts.offline.Store(true)

	menu, err = c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, dosa.ID, menu[0].ID)

	idli, err := c.CreateFood(ctx, FoodInput{Name: "Idli", Description: "steamed", Price: 30, Category: "Breakfast"})
	require.NoError(t, err)
	assert.True(t, idli.Pending)

	require.NoError(t, c.DeleteFood(ctx, dosa.ID))

	menu, err = c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Idli", menu[0].Name)
	assert.True(t, menu[0].Pending)
	require.Len(t, c.Outbox(ctx), 2)

	res, err := c.Flush(ctx)
	assert.True(t, IsOffline(err))
	assert.Equal(t, 2, res.Remaining)

	ts.offline.Store(false)

	res, err = c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Applied: 2}, res)
	assert.Empty(t, c.Outbox(ctx))

	menu, err = c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Idli", menu[0].Name)
	assert.False(t, menu[0].Pending)
	assert.NotEqual(t, idli.ID, menu[0].ID)
	assert.Empty(t, load[[]string](ctx, c.Store(), KeyDeletedItems))

	res, err = c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushResult{}, res)
}

func TestClient_DeletePendingDropsQueuedCreate(t *testing.T) {
	ts := newTestServer(t)
	c := ts.adminClient(t)
	ctx := context.Background()

	ts.offline.Store(true)
	tmp, err := c.CreateFood(ctx, FoodInput{Name: "Vada", Description: "fried", Price: 20, Category: "Breakfast"})
	require.NoError(t, err)
	require.Len(t, c.Outbox(ctx), 1)

	require.NoError(t, c.DeleteFood(ctx, tmp.ID))
	assert.Empty(t, c.Outbox(ctx))

	menu, err := c.ListMenu(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, menu)
}

func TestClient_OfflineUpdates(t *testing.T) {
	ts := newTestServer(t)
	c := ts.adminClient(t)
	ctx := context.Background()

	dosa, err := c.CreateFood(ctx, FoodInput{Name: "Dosa", Description: "crispy", Price: 50, Category: "Breakfast"})
	require.NoError(t, err)
	_, err = c.ListMenu(ctx, "")
	require.NoError(t, err)

	ts.offline.Store(true)

	vada, err := c.CreateFood(ctx, FoodInput{Name: "Vada", Description: "fried", Price: 20, Category: "Breakfast"})
	require.NoError(t, err)

	got, err := c.UpdateFood(ctx, vada.ID, map[string]any{"price": 25, "_id": "other"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, vada.ID, got.ID)
	assert.Equal(t, 25.0, got.Price)
	assert.True(t, got.Pending)

	got, err = c.UpdateFood(ctx, dosa.ID, map[string]any{"name": "Masala Dosa"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Masala Dosa", got.Name)

	// the create absorbed the first patch, the server item got an update
	ops := c.Outbox(ctx)
	require.Len(t, ops, 2)
	assert.Equal(t, ActionCreate, ops[0].Action)
	assert.JSONEq(t, `{"name":"Vada","description":"fried","price":25,"category":"Breakfast"}`, string(ops[0].Payload))
	assert.Equal(t, ActionUpdate, ops[1].Action)

	menu, err := c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Masala Dosa", menu[0].Name)
	assert.Equal(t, 25.0, menu[1].Price)

	ts.offline.Store(false)

	res, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Applied: 2}, res)

	menu, err = c.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	byName := map[string]FoodItem{}
	for _, f := range menu {
		assert.False(t, f.Pending)
		byName[f.Name] = f
	}
	assert.Equal(t, 25.0, byName["Vada"].Price)
	assert.NotEqual(t, vada.ID, byName["Vada"].ID)
	assert.Equal(t, dosa.ID, byName["Masala Dosa"].ID)
}

func TestClient_APIErrorsAreNotQueued(t *testing.T) {
	ts := newTestServer(t)
	c := ts.adminClient(t)
	ctx := context.Background()

	_, err := c.CreateFood(ctx, FoodInput{Name: "Bad", Description: "x", Price: -1, Category: "Breakfast"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Empty(t, c.Outbox(ctx))
}

func TestClient_CartCheckoutAndOrders(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.adminClient(t)
	ctx := context.Background()

	dosa, err := admin.CreateFood(ctx, FoodInput{Name: "Dosa", Description: "crispy", Price: 100, Category: "Breakfast"})
	require.NoError(t, err)

	c := New(ts.URL, NewMemoryStore())
	_, err = c.Register(ctx, RegisterInput{FullName: "Asha", Username: "asha", EmailAddress: "asha@example.com", Password: "password1"})
	require.NoError(t, err)
	u, err := c.Login(ctx, "asha", "password1")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)

	for range 2 {
		_, err := c.AddToCart(ctx, dosa.ID, "", 0)
		require.NoError(t, err)
	}
	cart, err := c.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 260.0, cart.Total)

	o, err := c.Checkout(ctx, CheckoutInput{Address: "12 MG Road", Phone: "98765", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, 260.0, o.TotalAmount)
	assert.Equal(t, "pending", o.Status)

	orders, err := c.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	ts.offline.Store(true)
	orders, err = c.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	cart, err = c.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	ts.offline.Store(false)

	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Session(ctx))
	_, err = c.MyOrders(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_RefreshesRejectedAccessToken(t *testing.T) {
	ts := newTestServer(t)
	c := ts.adminClient(t)
	ctx := context.Background()

	sess := c.Session(ctx)
	require.NotNil(t, sess)
	sess.AccessToken = "garbage"
	require.NoError(t, c.setSession(ctx, sess))

	_, err := c.MyOrders(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "garbage", c.Session(ctx).AccessToken)
}
