package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func (r *GormRepo) ListFoods(ctx context.Context, category string) ([]models.FoodItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.FoodItem{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var items []models.FoodItem
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetFood(ctx context.Context, id string) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

func (r *GormRepo) CreateFood(ctx context.Context, item *models.FoodItem) error {
	return mapErr(r.DB.WithContext(ctx).Create(item).Error)
}

func (r *GormRepo) SaveFood(ctx context.Context, item *models.FoodItem) error {
	res := r.DB.WithContext(ctx).Model(item).Select("*").Omit("created_at").Updates(item)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteFood(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.FoodItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchFoods is a plain substring match used when no search index is configured.
func (r *GormRepo) SearchFoods(ctx context.Context, q string, limit int) ([]models.FoodItem, error) {
	pattern := "%" + strings.ToLower(escapeLike(q)) + "%"
	var items []models.FoodItem
	if err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(sub_category) LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
