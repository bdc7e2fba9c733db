package repo

import (
	"context"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func (r *GormRepo) ListOffers(ctx context.Context, includeInactive bool) ([]models.Offer, error) {
	q := r.DB.WithContext(ctx).Model(&models.Offer{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var offers []models.Offer
	if err := q.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *GormRepo) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, mapErr(err)
	}
	return &offer, nil
}

func (r *GormRepo) CreateOffer(ctx context.Context, offer *models.Offer) error {
	return mapErr(r.DB.WithContext(ctx).Create(offer).Error)
}

func (r *GormRepo) SaveOffer(ctx context.Context, offer *models.Offer) error {
	res := r.DB.WithContext(ctx).Model(offer).Select("*").Omit("created_at").Updates(offer)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
