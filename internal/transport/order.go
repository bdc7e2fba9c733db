package transport

type AddCartItemRequest struct {
	FoodID    string `json:"foodId"    validate:"required"`
	VarietyID string `json:"varietyId"`
	Quantity  int    `json:"quantity"  validate:"omitempty,gte=1"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type CheckoutRequest struct {
	Address       string `json:"address"       validate:"required"`
	Phone         string `json:"phone"         validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed preparing out-for-delivery delivered cancelled"`
}
