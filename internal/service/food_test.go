package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

func TestFoodService_CreateRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *transport.CreateFoodRequest)
	}{
		{"missing name", func(r *transport.CreateFoodRequest) { r.Name = "" }},
		{"blank name", func(r *transport.CreateFoodRequest) { r.Name = "   " }},
		{"blank description", func(r *transport.CreateFoodRequest) { r.Description = "\t\n" }},
		{"blank variety name", func(r *transport.CreateFoodRequest) {
			r.Varieties = []transport.VarietyRequest{{Name: " ", Price: ptr(2.0)}}
		}},
		{"missing description", func(r *transport.CreateFoodRequest) { r.Description = "" }},
		{"missing price", func(r *transport.CreateFoodRequest) { r.Price = nil }},
		{"missing category", func(r *transport.CreateFoodRequest) { r.Category = "" }},
		{"negative price", func(r *transport.CreateFoodRequest) { r.Price = ptr(-1.0) }},
		{"rating above 5", func(r *transport.CreateFoodRequest) { r.Rating = ptr(5.5) }},
		{"variety negative price", func(r *transport.CreateFoodRequest) {
			r.Varieties = []transport.VarietyRequest{{Name: "Big", Price: ptr(-2.0)}}
		}},
		{"variety rating out of range", func(r *transport.CreateFoodRequest) {
			r.Varieties = []transport.VarietyRequest{{Name: "Big", Price: ptr(2.0), Rating: ptr(-0.5)}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dosaRequest()
			tt.mutate(&req)
			_, err := env.foods.Create(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	items, err := env.foods.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFoodService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var seen []string
	env.bus.Food.Subscribe(func(_ context.Context, ev events.FoodEvent) { seen = append(seen, ev.Type) })

	f, err := env.foods.Create(ctx, dosaRequest())
	require.NoError(t, err)
	require.NotEmpty(t, f.ID)
	assert.Equal(t, []string{}, []string(f.Ingredients))

	_, err = env.foods.Update(ctx, f.ID, transport.PatchFoodRequest{Price: ptr(-5.0)})
	assert.ErrorIs(t, err, ErrValidation)
	stored, err := env.foods.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.Price)

	_, err = env.foods.Update(ctx, f.ID, transport.PatchFoodRequest{Name: ptr("  ")})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name must not be blank")
	stored, err = env.foods.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dosa", stored.Name)

	updated, err := env.foods.Update(ctx, f.ID, transport.PatchFoodRequest{Price: ptr(0.0), SubCategory: ptr("South Indian")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Price)
	assert.Equal(t, "South Indian", updated.SubCategory)
	assert.Equal(t, "Dosa", updated.Name)

	require.NoError(t, env.foods.Delete(ctx, f.ID))
	_, err = env.foods.Get(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.foods.Delete(ctx, f.ID), ErrNotFound)

	_, err = env.foods.Update(ctx, f.ID, transport.PatchFoodRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.FoodCreated, events.FoodUpdated, events.FoodDeleted}, seen)
}

func TestFoodService_ListCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.foods.Create(ctx, dosaRequest())
	require.NoError(t, err)

	got, err := env.foods.List(ctx, "Breakfast")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = env.foods.List(ctx, "Dinner")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = env.foods.List(ctx, "Brunch")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFoodService_Varieties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f, err := env.foods.Create(ctx, dosaRequest())
	require.NoError(t, err)

	f, v, err := env.foods.AddVariety(ctx, f.ID, transport.VarietyRequest{Name: "Masala", Price: ptr(65.0), Rating: ptr(4.0)})
	require.NoError(t, err)
	require.Len(t, f.Varieties, 1)
	assert.NotEmpty(t, v.ID)

	_, _, err = env.foods.AddVariety(ctx, f.ID, transport.VarietyRequest{ID: v.ID, Name: "Dup", Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = env.foods.AddVariety(ctx, f.ID, transport.VarietyRequest{Name: "Bad", Price: ptr(1.0), Rating: ptr(9.0)})
	assert.ErrorIs(t, err, ErrValidation)

	f, err = env.foods.UpdateVariety(ctx, f.ID, v.ID, transport.PatchVarietyRequest{Price: ptr(70.0)})
	require.NoError(t, err)
	assert.Equal(t, 70.0, f.Varieties[0].Price)
	assert.Equal(t, "Masala", f.Varieties[0].Name)

	_, err = env.foods.UpdateVariety(ctx, f.ID, "missing", transport.PatchVarietyRequest{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)

	f, err = env.foods.DeleteVariety(ctx, f.ID, v.ID)
	require.NoError(t, err)
	assert.Empty(t, f.Varieties)

	stored, err := env.foods.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Varieties)
}

type searcherMock struct{ mock.Mock }

func (m *searcherMock) Search(ctx context.Context, q string, size int) ([]string, error) {
	args := m.Called(q, size)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func TestFoodService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.foods.Create(ctx, dosaRequest())
	require.NoError(t, err)
	req := dosaRequest()
	req.Name = "Paneer Dosa"
	b, err := env.foods.Create(ctx, req)
	require.NoError(t, err)

	_, err = env.foods.Search(ctx, "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)

	// no index: substring match in the store
	got, err := env.foods.Search(ctx, "paneer", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	idx := new(searcherMock)
	idx.On("Search", "dosa", 10).Return([]string{a.ID, "gone", b.ID}, nil).Once()
	env.foods.Index = idx

	got, err = env.foods.Search(ctx, "dosa", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	idx.On("Search", "paneer", DefaultSearchLimit).Return(nil, errors.New("cluster down")).Once()
	got, err = env.foods.Search(ctx, "paneer", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	idx.AssertExpectations(t)
}
