package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const DefaultSearchLimit = 20

type FoodService struct {
	Store FoodStore
	// Index is optional; without it search falls back to the store.
	Index Searcher
	Bus   *events.Bus
}

func foodNotFound() error { return newErr(ErrNotFound, "food item not found") }

func normalizeFood(f *models.FoodItem) {
	if f.Ingredients == nil {
		f.Ingredients = []string{}
	}
	if f.Varieties == nil {
		f.Varieties = []models.Variety{}
	}
	for i := range f.Varieties {
		if f.Varieties[i].Ingredients == nil {
			f.Varieties[i].Ingredients = []string{}
		}
	}
}

func (s *FoodService) publish(ctx context.Context, typ string, f *models.FoodItem, id string) {
	if s.Bus == nil {
		return
	}
	s.Bus.Food.Publish(ctx, events.FoodEvent{Type: typ, ID: id, Food: f, At: time.Now().UTC()})
}

func (s *FoodService) List(ctx context.Context, category string) ([]models.FoodItem, error) {
	if category != "" && !slices.Contains(models.Categories, category) {
		return nil, newErr(ErrValidation, "category must be one of %s", strings.Join(models.Categories, ", "))
	}
	items, err := s.Store.ListFoods(ctx, category)
	if err != nil {
		return nil, err
	}
	for i := range items {
		normalizeFood(&items[i])
	}
	return items, nil
}

func (s *FoodService) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	f, err := s.Store.GetFood(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, foodNotFound()
		}
		return nil, err
	}
	normalizeFood(f)
	return f, nil
}

func varietyFromRequest(v transport.VarietyRequest) models.Variety {
	out := models.Variety{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Ingredients: v.Ingredients,
		Image:       v.Image,
	}
	if v.Price != nil {
		out.Price = *v.Price
	}
	if v.Rating != nil {
		out.Rating = *v.Rating
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	return out
}

func varietiesFromRequest(in []transport.VarietyRequest) ([]models.Variety, error) {
	out := make([]models.Variety, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		mv := varietyFromRequest(v)
		if seen[mv.ID] {
			return nil, newErr(ErrValidation, "varieties contain duplicate id %s", mv.ID)
		}
		seen[mv.ID] = true
		out = append(out, mv)
	}
	return out, nil
}

func (s *FoodService) Create(ctx context.Context, req transport.CreateFoodRequest) (*models.FoodItem, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	varieties, err := varietiesFromRequest(req.Varieties)
	if err != nil {
		return nil, err
	}

	f := &models.FoodItem{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Ingredients: req.Ingredients,
		Image:       req.Image,
		Varieties:   varieties,
	}
	if req.Rating != nil {
		f.Rating = *req.Rating
	}
	normalizeFood(f)

	if err := s.Store.CreateFood(ctx, f); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("food_created", "food_id", f.ID)
	s.publish(ctx, events.FoodCreated, f, f.ID)
	return f, nil
}

// Update validates req before touching the stored item, so a rejected update
// leaves the document unchanged.
func (s *FoodService) Update(ctx context.Context, id string, req transport.PatchFoodRequest) (*models.FoodItem, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		f.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Price != nil {
		f.Price = *req.Price
	}
	if req.Category != nil {
		f.Category = *req.Category
	}
	if req.SubCategory != nil {
		f.SubCategory = *req.SubCategory
	}
	if req.Rating != nil {
		f.Rating = *req.Rating
	}
	if req.Ingredients != nil {
		f.Ingredients = *req.Ingredients
	}
	if req.Image != nil {
		f.Image = *req.Image
	}
	if req.Varieties != nil {
		vs, err := varietiesFromRequest(*req.Varieties)
		if err != nil {
			return nil, err
		}
		f.Varieties = vs
	}
	return s.save(ctx, f)
}

func (s *FoodService) save(ctx context.Context, f *models.FoodItem) (*models.FoodItem, error) {
	normalizeFood(f)
	if err := s.Store.SaveFood(ctx, f); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, foodNotFound()
		}
		return nil, err
	}
	s.publish(ctx, events.FoodUpdated, f, f.ID)
	return f, nil
}

func (s *FoodService) Delete(ctx context.Context, id string) error {
	if err := s.Store.DeleteFood(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return foodNotFound()
		}
		return err
	}
	logging.FromContext(ctx).Info("food_deleted", "food_id", id)
	s.publish(ctx, events.FoodDeleted, nil, id)
	return nil
}

func (s *FoodService) AddVariety(ctx context.Context, foodID string, req transport.VarietyRequest) (*models.FoodItem, *models.Variety, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, nil, err
	}
	f, err := s.Get(ctx, foodID)
	if err != nil {
		return nil, nil, err
	}
	v := varietyFromRequest(req)
	if _, dup := f.Variety(v.ID); dup {
		return nil, nil, newErr(ErrConflict, "variety %s already exists", v.ID)
	}
	f.Varieties = append(f.Varieties, v)
	f, err = s.save(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	added, _ := f.Variety(v.ID)
	return f, added, nil
}

func (s *FoodService) UpdateVariety(ctx context.Context, foodID, varietyID string, req transport.PatchVarietyRequest) (*models.FoodItem, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	f, err := s.Get(ctx, foodID)
	if err != nil {
		return nil, err
	}
	v, ok := f.Variety(varietyID)
	if !ok {
		return nil, newErr(ErrNotFound, "variety not found")
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.Rating != nil {
		v.Rating = *req.Rating
	}
	if req.Ingredients != nil {
		v.Ingredients = *req.Ingredients
	}
	if req.Image != nil {
		v.Image = *req.Image
	}
	return s.save(ctx, f)
}

func (s *FoodService) DeleteVariety(ctx context.Context, foodID, varietyID string) (*models.FoodItem, error) {
	f, err := s.Get(ctx, foodID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(f.Varieties, func(v models.Variety) bool { return v.ID == varietyID })
	if i < 0 {
		return nil, newErr(ErrNotFound, "variety not found")
	}
	f.Varieties = slices.Delete(f.Varieties, i, i+1)
	return s.save(ctx, f)
}

// Search prefers the search index and falls back to a substring match in the
// store when the index is missing or failing.
func (s *FoodService) Search(ctx context.Context, q string, limit int) ([]models.FoodItem, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, newErr(ErrValidation, "q is required")
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultSearchLimit
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, limit)
		if err == nil {
			items := make([]models.FoodItem, 0, len(ids))
			for _, id := range ids {
				f, err := s.Get(ctx, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				items = append(items, *f)
			}
			return items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to store", "error", err)
	}

	items, err := s.Store.SearchFoods(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		normalizeFood(&items[i])
	}
	return items, nil
}
