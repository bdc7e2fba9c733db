package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func newMongoRepo(t *testing.T) *MongoRepo {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	r, err := OpenMongo(ctx, uri, "food_delivery_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.foods.Database().Drop(ctx)
		_ = r.Close(ctx)
	})
	require.NoError(t, r.EnsureIndexes(ctx))
	return r
}

func TestMongo_FoodAndOffers(t *testing.T) {
	ctx := context.Background()
	r := newMongoRepo(t)

	f := &models.FoodItem{Name: "Idli", Description: "soft", Price: 30, Category: models.CategoryBreakfast,
		Varieties: []models.Variety{{Name: "Mini", Price: 20}}}
	require.NoError(t, r.CreateFood(ctx, f))

	got, err := r.GetFood(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Idli", got.Name)
	require.Len(t, got.Varieties, 1)
	assert.NotEmpty(t, got.Varieties[0].ID)

	found, err := r.SearchFoods(ctx, "idl", 5)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, r.DeleteFood(ctx, f.ID))
	_, err = r.GetFood(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	o := &models.Offer{Title: "t", Image: "i", Description: "d", Price: 5, Rating: 4.5, IsActive: true}
	require.NoError(t, r.CreateOffer(ctx, o))
	o.IsActive = false
	require.NoError(t, r.SaveOffer(ctx, o))

	active, err := r.ListOffers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	got2, err := r.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got2.IsActive)
}
