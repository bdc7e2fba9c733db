package events

import (
	"time"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

const (
	FoodCreated = "food.created"
	FoodUpdated = "food.updated"
	FoodDeleted = "food.deleted"

	OfferCreated  = "offer.created"
	OfferUpdated  = "offer.updated"
	OfferDeleted  = "offer.deleted"
	OfferRestored = "offer.restored"

	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"

	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
	UserLoggedIn   = "user.logged_in"
)

type FoodEvent struct {
	Type string           `json:"type"`
	ID   string           `json:"id"`
	Food *models.FoodItem `json:"food,omitempty"`
	At   time.Time        `json:"at"`
}

type OfferEvent struct {
	Type  string        `json:"type"`
	ID    string        `json:"id"`
	Offer *models.Offer `json:"offer,omitempty"`
	At    time.Time     `json:"at"`
}

type OrderEvent struct {
	Type           string        `json:"type"`
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Status         string        `json:"status"`
	PreviousStatus string        `json:"previousStatus,omitempty"`
	Order          *models.Order `json:"order,omitempty"`
	At             time.Time     `json:"at"`
}

// UserEvent never carries credentials.
type UserEvent struct {
	Type     string    `json:"type"`
	ID       string    `json:"id"`
	Username string    `json:"username,omitempty"`
	Role     string    `json:"role,omitempty"`
	At       time.Time `json:"at"`
}
