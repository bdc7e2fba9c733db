package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one cart line. (UserID, FoodID, VarietyID) is unique, so
// adding the same food/variety again bumps Quantity.
type CartItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"                       json:"_id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line" json:"userId"`
	FoodID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line" json:"foodId"`
	VarietyID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line" json:"varietyId"`
	Name        string    `gorm:"not null"                                            json:"name"`
	Variety     string    `                                                           json:"variety"`
	Price       float64   `gorm:"not null"                                            json:"price"`
	Quantity    int       `gorm:"not null;check:quantity>0"                           json:"quantity"`
	Image       string    `                                                           json:"image"`
	Description string    `                                                           json:"description"`
	CreatedAt   time.Time `                                                           json:"createdAt"`
	UpdatedAt   time.Time `                                                           json:"updatedAt"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c CartItem) LineTotal() float64 { return c.Price * float64(c.Quantity) }

const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                      json:"-"`
	OrderID   string  `gorm:"index;type:varchar(36);not null" json:"-"`
	FoodID    string  `gorm:"type:varchar(36);not null"       json:"foodId"`
	VarietyID string  `gorm:"type:varchar(36)"                json:"varietyId"`
	Name      string  `gorm:"not null"                        json:"name"`
	Variety   string  `                                       json:"variety"`
	Price     float64 `gorm:"not null"                        json:"price"`
	Quantity  int     `gorm:"not null;check:quantity>0"       json:"quantity"`
	Image     string  `                                       json:"image"`
}

type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)"     json:"_id"`
	UserID        string      `gorm:"index;type:varchar(36);not null" json:"userId"`
	CustomerName  string      `gorm:"not null"                        json:"customerName"`
	CustomerEmail string      `gorm:"not null"                        json:"customerEmail"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE"     json:"items"`
	Subtotal      float64     `gorm:"not null"                        json:"subtotal"`
	Tax           float64     `gorm:"not null"                        json:"tax"`
	DeliveryFee   float64     `gorm:"not null"                        json:"deliveryFee"`
	TotalAmount   float64     `gorm:"not null"                        json:"totalAmount"`
	Status        string      `gorm:"index;not null"                  json:"status"`
	Address       string      `gorm:"not null"                        json:"address"`
	Phone         string      `gorm:"not null"                        json:"phone"`
	PaymentMethod string      `gorm:"not null"                        json:"paymentMethod"`
	CreatedAt     time.Time   `gorm:"index"                           json:"date"`
	UpdatedAt     time.Time   `                                       json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// SyncReceipt records the outcome of one offline operation. A receipt is
// inserted with Status 0 before the operation runs, which reserves the key.
type SyncReceipt struct {
	IdempotencyKey string `gorm:"primaryKey;type:varchar(64)"`
	UserID         string `gorm:"index;type:varchar(36);not null"`
	Resource       string `gorm:"not null"`
	Action         string `gorm:"not null"`
	Status         int    `gorm:"not null;default:0"`
	Body           []byte
	ReservedAt     time.Time
	CreatedAt      time.Time
}

// Pending reports whether the operation is still being applied.
func (rc *SyncReceipt) Pending() bool { return rc.Status == 0 }

// All lists every gorm model for AutoMigrate.
func All() []any {
	return []any{
		&FoodItem{}, &Offer{}, &User{}, &RefreshToken{},
		&CartItem{}, &Order{}, &OrderItem{}, &SyncReceipt{},
	}
}
