// Package seed loads catalog fixtures from YAML and writes them through the
// catalog services, so seeded documents pass the same validation as API writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type Variety struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       *float64 `yaml:"price"`
	Rating      *float64 `yaml:"rating"`
	Ingredients []string `yaml:"ingredients"`
	Image       string   `yaml:"image"`
}

type Food struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Price       *float64  `yaml:"price"`
	Category    string    `yaml:"category"`
	SubCategory string    `yaml:"sub_category"`
	Rating      *float64  `yaml:"rating"`
	Ingredients []string  `yaml:"ingredients"`
	Image       string    `yaml:"image"`
	Varieties   []Variety `yaml:"varieties"`
}

type Offer struct {
	Image       string   `yaml:"image"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       *float64 `yaml:"price"`
	Rating      *float64 `yaml:"rating"`
}

type File struct {
	Foods  []Food  `yaml:"foods"`
	Offers []Offer `yaml:"offers"`
}

type Result struct {
	Foods   int
	Offers  int
	Skipped int
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

func (f Food) request() transport.CreateFoodRequest {
	req := transport.CreateFoodRequest{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		Rating:      f.Rating,
		Ingredients: f.Ingredients,
		Image:       f.Image,
	}
	for _, v := range f.Varieties {
		req.Varieties = append(req.Varieties, transport.VarietyRequest{
			Name:        v.Name,
			Description: v.Description,
			Price:       v.Price,
			Rating:      v.Rating,
			Ingredients: v.Ingredients,
			Image:       v.Image,
		})
	}
	return req
}

func (o Offer) request() transport.CreateOfferRequest {
	return transport.CreateOfferRequest{
		Image:       o.Image,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price,
		Rating:      o.Rating,
	}
}

// Apply creates every entry of f. Entries rejected by validation are logged
// and skipped; any other error aborts the run.
func Apply(ctx context.Context, f *File, foods *service.FoodService, offers *service.OfferService) (Result, error) {
	l := logging.FromContext(ctx).With("component", "seed")
	var res Result

	for i, item := range f.Foods {
		if _, err := foods.Create(ctx, item.request()); err != nil {
			if errors.Is(err, service.ErrValidation) {
				l.Warn("seed_food_skipped", "index", i, "name", item.Name, "reason", err.Error())
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed food %q: %w", item.Name, err)
		}
		res.Foods++
	}

	for i, item := range f.Offers {
		if _, err := offers.Create(ctx, item.request()); err != nil {
			if errors.Is(err, service.ErrValidation) {
				l.Warn("seed_offer_skipped", "index", i, "title", item.Title, "reason", err.Error())
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed offer %q: %w", item.Title, err)
		}
		res.Offers++
	}

	l.Info("seed_applied", "foods", res.Foods, "offers", res.Offers, "skipped", res.Skipped)
	return res, nil
}
