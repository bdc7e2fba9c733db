package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/db"
)

type testEnv struct {
	repo   *repo.GormRepo
	bus    *events.Bus
	foods  *FoodService
	offers *OfferService
	users  *UserService
	carts  *CartService
	orders *OrderService
	sync   *SyncService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, db.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	r := repo.NewGormRepo(gdb)
	require.NoError(t, r.Migrate(context.Background()))

	bus := events.NewBus()
	env := &testEnv{repo: r, bus: bus}
	env.foods = &FoodService{Store: r, Bus: bus}
	env.offers = &OfferService{Store: r, Bus: bus}
	env.users = &UserService{Store: r, AccessSecret: []byte("a-secret"), RefreshSecret: []byte("r-secret"), Bus: bus}
	env.carts = &CartService{Store: r, Foods: r, DeliveryFee: DefaultDeliveryFee}
	env.orders = &OrderService{Store: r, Users: r, Bus: bus, DeliveryFee: DefaultDeliveryFee}
	env.sync = &SyncService{Receipts: r, Foods: env.foods, Offers: env.offers}
	return env
}

func ptr[T any](v T) *T { return &v }

func dosaRequest() transport.CreateFoodRequest {
	return transport.CreateFoodRequest{
		Name:        "Dosa",
		Description: "crispy",
		Price:       ptr(50.0),
		Category:    "Breakfast",
	}
}

func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	u, err := e.users.Register(context.Background(), Actor{}, transport.CreateUserRequest{
		FullName:     username + " Full",
		Username:     username,
		EmailAddress: username + "@example.com",
		Password:     "password1",
	})
	require.NoError(t, err)
	return u.ID
}
