package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
)

type fakeES struct {
	mu   sync.Mutex
	docs map[string]map[string]any
	hits []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "_doc",
		r.Method == http.MethodPost && len(parts) == 3 && parts[1] == "_doc":
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete && len(parts) == 3:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.docs, parts[2])
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	case len(parts) == 2 && parts[1] == "_search":
		var hits []map[string]any
		for _, id := range f.hits {
			hits = append(hits, map[string]any{"_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func newIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	fake := &fakeES{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	x, err := New(Config{URL: srv.URL, Index: "foods"})
	require.NoError(t, err)
	return x, fake
}

func TestPutRemove(t *testing.T) {
	ctx := context.Background()
	x, fake := newIndex(t)

	f := &models.FoodItem{ID: "f1", Name: "Dosa", Description: "crispy",
		Varieties: []models.Variety{{Name: "Masala"}}}
	require.NoError(t, x.Put(ctx, f))
	require.Contains(t, fake.docs, "f1")
	assert.Equal(t, "Dosa", fake.docs["f1"]["name"])
	assert.Equal(t, []any{"Masala"}, fake.docs["f1"]["varieties"])
	assert.NotContains(t, fake.docs["f1"], "_id")

	require.NoError(t, x.Remove(ctx, "f1"))
	assert.NotContains(t, fake.docs, "f1")
	require.NoError(t, x.Remove(ctx, "f1"))
}

func TestSearch(t *testing.T) {
	x, fake := newIndex(t)
	fake.hits = []string{"b", "a"}

	ids, err := x.Search(context.Background(), "dosa", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	x, fake := newIndex(t)
	bus := events.NewBus()
	unsub := x.Subscribe(bus)
	defer unsub()

	bus.Food.Publish(ctx, events.FoodEvent{Type: events.FoodCreated, ID: "f9", Food: &models.FoodItem{ID: "f9", Name: "Idli"}})
	assert.Contains(t, fake.docs, "f9")

	bus.Food.Publish(ctx, events.FoodEvent{Type: events.FoodDeleted, ID: "f9"})
	assert.NotContains(t, fake.docs, "f9")
}
