package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, db.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	r := NewGormRepo(gdb)
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func TestFoodCRUD(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	item := &models.FoodItem{
		Name: "Dosa", Description: "crispy", Price: 50, Category: models.CategoryBreakfast,
		Ingredients: []string{"rice", "urad dal"},
		Varieties:   []models.Variety{{Name: "Masala", Price: 60, Rating: 4}},
	}
	require.NoError(t, r.CreateFood(ctx, item))
	require.NotEmpty(t, item.ID)
	require.NotEmpty(t, item.Varieties[0].ID)

	got, err := r.GetFood(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dosa", got.Name)
	assert.Equal(t, []string{"rice", "urad dal"}, []string(got.Ingredients))
	require.Len(t, got.Varieties, 1)
	assert.Equal(t, "Masala", got.Varieties[0].Name)

	got.Price = 55
	require.NoError(t, r.SaveFood(ctx, got))
	again, err := r.GetFood(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 55.0, again.Price)

	require.NoError(t, r.DeleteFood(ctx, item.ID))
	_, err = r.GetFood(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteFood(ctx, item.ID), ErrNotFound)
}

func TestListFoods_NewestFirstAndCategory(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	for i, c := range []string{models.CategoryLunch, models.CategoryDinner, models.CategoryLunch} {
		f := &models.FoodItem{Name: c, Description: "d", Price: float64(i), Category: c}
		require.NoError(t, r.CreateFood(ctx, f))
		time.Sleep(2 * time.Millisecond)
	}

	all, err := r.ListFoods(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2.0, all[0].Price)

	lunch, err := r.ListFoods(ctx, models.CategoryLunch)
	require.NoError(t, err)
	assert.Len(t, lunch, 2)
}

func TestSearchFoods_Substring(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	require.NoError(t, r.CreateFood(ctx, &models.FoodItem{Name: "Paneer Tikka", Description: "grilled", Price: 10, Category: models.CategoryDinner}))
	require.NoError(t, r.CreateFood(ctx, &models.FoodItem{Name: "Lassi", Description: "sweet 100% yogurt", Price: 3, Category: models.CategoryDrinks}))

	got, err := r.SearchFoods(ctx, "tikka", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Paneer Tikka", got[0].Name)

	got, err = r.SearchFoods(ctx, "100%", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lassi", got[0].Name)
}

func TestOffers_ActiveFilter(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	on := &models.Offer{Title: "on", Image: "i", Description: "d", Price: 1, IsActive: true}
	off := &models.Offer{Title: "off", Image: "i", Description: "d", Price: 1, IsActive: true}
	require.NoError(t, r.CreateOffer(ctx, on))
	require.NoError(t, r.CreateOffer(ctx, off))

	off.IsActive = false
	require.NoError(t, r.SaveOffer(ctx, off))

	active, err := r.ListOffers(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, on.ID, active[0].ID)

	all, err := r.ListOffers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := r.GetOffer(ctx, off.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUsers_DuplicateAndLogin(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	u := &models.User{FullName: "A", Username: "alice", EmailAddress: "a@x.io", PasswordHash: "h", Role: "user"}
	require.NoError(t, r.CreateUser(ctx, u))

	dup := &models.User{FullName: "B", Username: "alice", EmailAddress: "b@x.io", PasswordHash: "h", Role: "user"}
	assert.ErrorIs(t, r.CreateUser(ctx, dup), ErrDuplicate)

	taken, err := r.UserTaken(ctx, "bob", "a@x.io", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = r.UserTaken(ctx, "alice", "a@x.io", u.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	byEmail, err := r.GetUserByLogin(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = r.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	first := &models.RefreshToken{UserID: "u1", TokenHash: "h1", JTI: "j1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.AddRefreshToken(ctx, first))

	next := &models.RefreshToken{UserID: "u1", TokenHash: "h2", JTI: "j2", ExpiresAt: time.Now().Add(time.Hour)}
	old, err := r.RotateRefreshToken(ctx, "h1", next)
	require.NoError(t, err)
	assert.Equal(t, "j1", old.JTI)

	again := &models.RefreshToken{UserID: "u1", TokenHash: "h3", JTI: "j3", ExpiresAt: time.Now().Add(time.Hour)}
	_, err = r.RotateRefreshToken(ctx, "h1", again)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, r.RevokeRefreshToken(ctx, "h2"))
	_, err = r.RotateRefreshToken(ctx, "h2", again)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = r.RotateRefreshToken(ctx, "missing", again)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_IncrementAndClamp(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	add := func() *models.CartItem {
		it := &models.CartItem{UserID: "u1", FoodID: "f1", Name: "Dosa", Price: 50, Quantity: 1}
		require.NoError(t, r.AddCartItem(ctx, it))
		return it
	}
	first := add()
	second := add()
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	items, err := r.ListCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	it, removed, err := r.ChangeCartQuantity(ctx, "u1", first.ID, -1)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, it.Quantity)

	_, removed, err = r.ChangeCartQuantity(ctx, "u1", first.ID, -5)
	require.NoError(t, err)
	assert.True(t, removed)

	items, err = r.ListCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, _, err = r.ChangeCartQuantity(ctx, "u1", first.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_OtherUserCannotTouchLine(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	it := &models.CartItem{UserID: "u1", FoodID: "f1", Name: "Dosa", Price: 50, Quantity: 1}
	require.NoError(t, r.AddCartItem(ctx, it))

	assert.ErrorIs(t, r.RemoveCartItem(ctx, "u2", it.ID), ErrNotFound)
	require.NoError(t, r.RemoveCartItem(ctx, "u1", it.ID))
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	_, err := r.Checkout(ctx, "u1", func(items []models.CartItem) (*models.Order, error) {
		t.Fatal("build must not run for an empty cart")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, r.AddCartItem(ctx, &models.CartItem{UserID: "u1", FoodID: "f1", Name: "Dosa", Price: 50, Quantity: 4}))

	order, err := r.Checkout(ctx, "u1", func(items []models.CartItem) (*models.Order, error) {
		o := &models.Order{UserID: "u1", CustomerName: "A", CustomerEmail: "a@x.io", Status: models.StatusPending,
			Address: "street", Phone: "1", PaymentMethod: "cash", Subtotal: 200, TotalAmount: 260}
		for _, it := range items {
			o.Items = append(o.Items, models.OrderItem{FoodID: it.FoodID, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
		}
		return o, nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)

	items, err := r.ListCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	mine, err := r.ListOrdersByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, 4, mine[0].Items[0].Quantity)

	theirs, err := r.ListOrdersByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	updated, err := r.UpdateOrder(ctx, order.ID, func(o *models.Order) error {
		o.Status = models.StatusConfirmed
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	confirmed, err := r.ListOrders(ctx, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestSyncReceipts(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	newReceipt := func(key string) *models.SyncReceipt {
		return &models.SyncReceipt{IdempotencyKey: key, UserID: "u1", Resource: "food", Action: "create"}
	}

	require.NoError(t, r.ReserveReceipt(ctx, newReceipt("k1")))
	assert.ErrorIs(t, r.ReserveReceipt(ctx, newReceipt("k1")), ErrDuplicate)

	got, err := r.GetReceipt(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, got.Pending())

	require.NoError(t, r.CompleteReceipt(ctx, "k1", 201, []byte(`{}`)))
	got, err = r.GetReceipt(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, got.Pending())
	assert.Equal(t, 201, got.Status)
	assert.ErrorIs(t, r.CompleteReceipt(ctx, "k1", 400, nil), ErrNotFound)

	// completed receipts are never released or reclaimed
	require.NoError(t, r.ReleaseReceipt(ctx, "k1"))
	_, err = r.GetReceipt(ctx, "k1")
	require.NoError(t, err)
	claimed, err := r.ClaimStaleReceipt(ctx, "k1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, r.ReserveReceipt(ctx, newReceipt("k2")))
	claimed, err = r.ClaimStaleReceipt(ctx, "k2", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, claimed, "fresh reservation")
	claimed, err = r.ClaimStaleReceipt(ctx, "k2", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, claimed)

	require.NoError(t, r.ReleaseReceipt(ctx, "k2"))
	_, err = r.GetReceipt(ctx, "k2")
	assert.ErrorIs(t, err, ErrNotFound)
}
