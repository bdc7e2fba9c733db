package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

var ErrTokenRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// GetUserByLogin matches either the username or the email address.
func (r *GormRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("username = ? OR email_address = ?", login, login).
		First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// UserTaken reports whether another account already uses username or email.
func (r *GormRepo) UserTaken(ctx context.Context, username, email, exceptID string) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("(username = ? OR email_address = ?)", username, email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return mapErr(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(u).Select("*").Omit("created_at").Updates(u)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error
	})
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func refreshUsable(tx *gorm.DB, hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := tx.Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, mapErr(err)
	}
	if t.Revoked || t.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenRevoked
	}
	return &t, nil
}

// RotateRefreshToken revokes the token with oldHash and stores next in one
// transaction. It returns the revoked token's record.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldHash string, next *models.RefreshToken) (*models.RefreshToken, error) {
	var old *models.RefreshToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := refreshUsable(tx, oldHash)
		if err != nil {
			return err
		}
		if next.UserID != t.UserID {
			return ErrTokenRevoked
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", t.ID, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}
		old = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
}
