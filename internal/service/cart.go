package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

type FoodReader interface {
	GetFood(ctx context.Context, id string) (*models.FoodItem, error)
}

type CartService struct {
	Store       CartStore
	Foods       FoodReader
	DeliveryFee float64
}

type CartView struct {
	Items []models.CartItem `json:"items"`
	Totals
}

func cartItemNotFound() error { return newErr(ErrNotFound, "cart item not found") }

func (s *CartService) Get(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.Store.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{Items: items, Totals: ComputeTotals(items, s.DeliveryFee)}, nil
}

// Add snapshots the food (or variety) into a cart line. Adding the same
// food/variety again increments the existing line.
func (s *CartService) Add(ctx context.Context, userID string, req transport.AddCartItemRequest) (*models.CartItem, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	f, err := s.Foods.GetFood(ctx, req.FoodID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, foodNotFound()
		}
		return nil, err
	}

	item := &models.CartItem{
		UserID:      userID,
		FoodID:      f.ID,
		Name:        f.Name,
		Price:       f.Price,
		Quantity:    req.Quantity,
		Image:       f.Image,
		Description: f.Description,
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if req.VarietyID != "" {
		v, ok := f.Variety(req.VarietyID)
		if !ok {
			return nil, newErr(ErrNotFound, "variety not found")
		}
		item.VarietyID = v.ID
		item.Variety = v.Name
		item.Price = v.Price
		if v.Image != "" {
			item.Image = v.Image
		}
		if v.Description != "" {
			item.Description = v.Description
		}
	}

	if err := s.Store.AddCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ChangeQuantity applies delta, clamping at zero; removed reports whether the
// line was dropped.
func (s *CartService) ChangeQuantity(ctx context.Context, userID, itemID string, req transport.ChangeQuantityRequest) (*models.CartItem, bool, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, false, err
	}
	item, removed, err := s.Store.ChangeCartQuantity(ctx, userID, itemID, req.Delta)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, cartItemNotFound()
		}
		return nil, false, err
	}
	return item, removed, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID string) error {
	if err := s.Store.RemoveCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return cartItemNotFound()
		}
		return err
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.Store.ClearCart(ctx, userID)
}
