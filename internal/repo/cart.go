package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

var ErrEmptyCart = errors.New("cart is empty")

func (r *GormRepo) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddCartItem increments the matching line or inserts item as a new line.
func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND food_id = ? AND variety_id = ?", item.UserID, item.FoodID, item.VarietyID).
			Updates(map[string]any{
				"quantity": gorm.Expr("quantity + ?", item.Quantity),
				"name":     item.Name,
				"variety":  item.Variety,
				"price":    item.Price,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND food_id = ? AND variety_id = ?", item.UserID, item.FoodID, item.VarietyID).
				First(item).Error
		}
		return mapErr(tx.Create(item).Error)
	})
}

// ChangeCartQuantity applies delta to a line, clamping at zero. A line that
// reaches zero is removed and removed is true.
func (r *GormRepo) ChangeCartQuantity(ctx context.Context, userID, itemID string, delta int) (*models.CartItem, bool, error) {
	var item models.CartItem
	removed := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&item).Error; err != nil {
			return mapErr(err)
		}
		next := item.Quantity + delta
		if next <= 0 {
			removed = true
			item.Quantity = 0
			return tx.Delete(&item).Error
		}
		item.Quantity = next
		return tx.Model(&item).Update("quantity", next).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &item, removed, nil
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
