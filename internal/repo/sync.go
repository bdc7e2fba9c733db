package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func (r *GormRepo) GetReceipt(ctx context.Context, key string) (*models.SyncReceipt, error) {
	var rc models.SyncReceipt
	if err := r.DB.WithContext(ctx).Where("idempotency_key = ?", key).First(&rc).Error; err != nil {
		return nil, mapErr(err)
	}
	return &rc, nil
}

// ReserveReceipt inserts a pending receipt. ErrDuplicate means another
// request holds or has completed the key.
func (r *GormRepo) ReserveReceipt(ctx context.Context, rc *models.SyncReceipt) error {
	rc.Status = 0
	rc.Body = nil
	rc.ReservedAt = time.Now().UTC()
	return mapErr(r.DB.WithContext(ctx).Create(rc).Error)
}

// CompleteReceipt stores the outcome of a reserved key.
func (r *GormRepo) CompleteReceipt(ctx context.Context, key string, status int, body []byte) error {
	res := r.DB.WithContext(ctx).Model(&models.SyncReceipt{}).
		Where("idempotency_key = ? AND status = 0", key).
		Updates(map[string]any{"status": status, "body": body})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseReceipt drops a pending reservation so the key can be tried again.
func (r *GormRepo) ReleaseReceipt(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).
		Where("idempotency_key = ? AND status = 0", key).
		Delete(&models.SyncReceipt{}).Error
}

// ClaimStaleReceipt takes over a pending reservation made before cutoff.
// Only one caller can win a given reservation.
func (r *GormRepo) ClaimStaleReceipt(ctx context.Context, key string, cutoff time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.SyncReceipt{}).
		Where("idempotency_key = ? AND status = 0 AND reserved_at < ?", key, cutoff.UTC()).
		Update("reserved_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
