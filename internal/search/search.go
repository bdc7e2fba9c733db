package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const indexTimeout = 5 * time.Second

// Index keeps a searchable copy of the menu in Elasticsearch.
type Index struct {
	es    *elasticsearch.Client
	index string
}

type Config struct {
	URL       string
	User      string
	Password  string
	Index     string
	Transport http.RoundTripper
}

func New(cfg Config) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Index{es: client, index: cfg.Index}, nil
}

// document is what gets indexed; "_id" is reserved inside ES sources.
type document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Ingredients []string `json:"ingredients"`
	Varieties   []string `json:"varieties"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
}

func toDocument(f *models.FoodItem) document {
	d := document{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		Ingredients: f.Ingredients,
		Price:       f.Price,
		Rating:      f.Rating,
	}
	for _, v := range f.Varieties {
		d.Varieties = append(d.Varieties, v.Name)
	}
	return d
}

func responseError(op string, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 4<<10))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, status, strings.TrimSpace(string(b)))
}

// Ping checks the cluster is reachable.
func (x *Index) Ping(ctx context.Context) error {
	res, err := x.es.Info(x.es.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.Status(), res.Body)
	}
	return nil
}

func (x *Index) Put(ctx context.Context, f *models.FoodItem) error {
	body, err := json.Marshal(toDocument(f))
	if err != nil {
		return err
	}
	res, err := x.es.Index(
		x.index,
		bytes.NewReader(body),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(f.ID),
		x.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (x *Index) Remove(ctx context.Context, id string) error {
	res, err := x.es.Delete(x.index, id, x.es.Delete.WithContext(ctx), x.es.Delete.WithRefresh("true"))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

// Search returns matching food ids, best match first.
func (x *Index) Search(ctx context.Context, query string, size int) ([]string, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "subCategory", "ingredients", "varieties"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Subscribe keeps the index in step with food events.
func (x *Index) Subscribe(bus *events.Bus) (unsubscribe func()) {
	return bus.Food.Subscribe(func(ctx context.Context, ev events.FoodEvent) {
		l := logging.FromContext(ctx).With("component", "search.indexer")
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
		defer cancel()

		var err error
		switch ev.Type {
		case events.FoodCreated, events.FoodUpdated:
			if ev.Food != nil {
				err = x.Put(ctx, ev.Food)
			}
		case events.FoodDeleted:
			err = x.Remove(ctx, ev.ID)
		}
		if err != nil {
			l.Error("index_sync_error", "event", ev.Type, "food_id", ev.ID, "error", err)
		}
	})
}
