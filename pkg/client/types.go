package client

import (
	"encoding/json"
	"time"
)

type Variety struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Ingredients []string `json:"ingredients"`
	Image       string   `json:"image"`
}

// FoodItem is a menu entry. Pending marks an item created while offline that
// the server has not accepted yet.
type FoodItem struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	Rating      float64   `json:"rating"`
	Ingredients []string  `json:"ingredients"`
	Image       string    `json:"image"`
	Varieties   []Variety `json:"varieties"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Pending     bool      `json:"pending,omitempty"`
}

type Offer struct {
	ID          string    `json:"_id"`
	Image       string    `json:"image"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type User struct {
	ID           string `json:"_id"`
	FullName     string `json:"fullName"`
	Username     string `json:"username"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber"`
	Role         string `json:"role"`
}

type CartItem struct {
	ID          string  `json:"_id"`
	FoodID      string  `json:"foodId"`
	VarietyID   string  `json:"varietyId"`
	Name        string  `json:"name"`
	Variety     string  `json:"variety"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

type Cart struct {
	Items       []CartItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	Tax         float64    `json:"tax"`
	DeliveryFee float64    `json:"deliveryFee"`
	Total       float64    `json:"total"`
}

type OrderItem struct {
	FoodID    string  `json:"foodId"`
	VarietyID string  `json:"varietyId"`
	Name      string  `json:"name"`
	Variety   string  `json:"variety"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID            string      `json:"_id"`
	UserID        string      `json:"userId"`
	CustomerName  string      `json:"customerName"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	DeliveryFee   float64     `json:"deliveryFee"`
	TotalAmount   float64     `json:"totalAmount"`
	Status        string      `json:"status"`
	Date          time.Time   `json:"date"`
	Address       string      `json:"address"`
	Phone         string      `json:"phone"`
	PaymentMethod string      `json:"paymentMethod"`
}

// Session is the signed-in account and its tokens, kept under the user key.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// OutboxOp is a write queued while the API was unreachable.
type OutboxOp struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Resource       string          `json:"resource"`
	Action         string          `json:"action"`
	ID             string          `json:"id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	LocalID        string          `json:"localId,omitempty"`
	QueuedAt       time.Time       `json:"queuedAt"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}
