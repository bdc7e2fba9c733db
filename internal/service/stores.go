package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

type FoodStore interface {
	ListFoods(ctx context.Context, category string) ([]models.FoodItem, error)
	GetFood(ctx context.Context, id string) (*models.FoodItem, error)
	CreateFood(ctx context.Context, item *models.FoodItem) error
	SaveFood(ctx context.Context, item *models.FoodItem) error
	DeleteFood(ctx context.Context, id string) error
	SearchFoods(ctx context.Context, q string, limit int) ([]models.FoodItem, error)
}

type OfferStore interface {
	ListOffers(ctx context.Context, includeInactive bool) ([]models.Offer, error)
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	CreateOffer(ctx context.Context, offer *models.Offer) error
	SaveOffer(ctx context.Context, offer *models.Offer) error
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UserTaken(ctx context.Context, username, email, exceptID string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error

	AddRefreshToken(ctx context.Context, t *models.RefreshToken) error
	RotateRefreshToken(ctx context.Context, oldHash string, next *models.RefreshToken) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error
}

type CartStore interface {
	ListCart(ctx context.Context, userID string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, item *models.CartItem) error
	ChangeCartQuantity(ctx context.Context, userID, itemID string, delta int) (*models.CartItem, bool, error)
	RemoveCartItem(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error
}

type OrderStore interface {
	Checkout(ctx context.Context, userID string, build func(items []models.CartItem) (*models.Order, error)) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context, status string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, mutate func(o *models.Order) error) (*models.Order, error)
}

type SyncStore interface {
	GetReceipt(ctx context.Context, key string) (*models.SyncReceipt, error)
	ReserveReceipt(ctx context.Context, rc *models.SyncReceipt) error
	CompleteReceipt(ctx context.Context, key string, status int, body []byte) error
	ReleaseReceipt(ctx context.Context, key string) error
	ClaimStaleReceipt(ctx context.Context, key string, cutoff time.Time) (bool, error)
}

// Searcher ranks food ids for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
