package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/db"
)

const catalogYAML = `
foods:
  - name: Dosa
    description: crispy rice crepe
    price: 50
    category: Breakfast
    ingredients: [rice, urad dal]
    varieties:
      - name: Masala
        price: 70
        rating: 4.6
  - name: Broken
    description: no price
    category: Lunch
offers:
  - image: https://img.example/thali.png
    title: Thali Tuesday
    description: two for one
    price: 199
`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	require.Len(t, f.Foods, 2)
	assert.Equal(t, []string{"rice", "urad dal"}, f.Foods[0].Ingredients)
	require.Len(t, f.Foods[0].Varieties, 1)
	assert.Equal(t, 70.0, *f.Foods[0].Varieties[0].Price)
	assert.Nil(t, f.Foods[1].Price)
	require.Len(t, f.Offers, 1)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Foods)

	_, err = Decode(strings.NewReader("foods:\n  - nme: typo\n"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
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

	foods := &service.FoodService{Store: r}
	offers := &service.OfferService{Store: r}

	f, err := Decode(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	res, err := Apply(ctx, f, foods, offers)
	require.NoError(t, err)
	assert.Equal(t, Result{Foods: 1, Offers: 1, Skipped: 1}, res)

	menu, err := foods.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Dosa", menu[0].Name)
	require.Len(t, menu[0].Varieties, 1)
	assert.NotEmpty(t, menu[0].Varieties[0].ID)

	deals, err := offers.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, service.DefaultOfferRating, deals[0].Rating)
}
