package transport

type VarietyRequest struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"        validate:"required,notblank"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Rating      *float64 `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	Ingredients []string `json:"ingredients"`
	Image       string   `json:"image"`
}

type PatchVarietyRequest struct {
	Name        *string   `json:"name"        validate:"omitempty,notblank"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"       validate:"omitempty,gte=0"`
	Rating      *float64  `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	Ingredients *[]string `json:"ingredients"`
	Image       *string   `json:"image"`
}

type CreateFoodRequest struct {
	Name        string           `json:"name"        validate:"required,notblank"`
	Description string           `json:"description" validate:"required,notblank"`
	Price       *float64         `json:"price"       validate:"required,gte=0"`
	Category    string           `json:"category"    validate:"required,oneof=Breakfast Lunch Dinner Dessert Drinks"`
	SubCategory string           `json:"subCategory"`
	Rating      *float64         `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	Ingredients []string         `json:"ingredients"`
	Image       string           `json:"image"`
	Varieties   []VarietyRequest `json:"varieties"   validate:"omitempty,dive"`
}

// PatchFoodRequest is a partial update; nil fields are left as stored.
// Varieties, when present, replace the whole list.
type PatchFoodRequest struct {
	Name        *string           `json:"name"        validate:"omitempty,notblank"`
	Description *string           `json:"description" validate:"omitempty,notblank"`
	Price       *float64          `json:"price"       validate:"omitempty,gte=0"`
	Category    *string           `json:"category"    validate:"omitempty,oneof=Breakfast Lunch Dinner Dessert Drinks"`
	SubCategory *string           `json:"subCategory"`
	Rating      *float64          `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	Ingredients *[]string         `json:"ingredients"`
	Image       *string           `json:"image"`
	Varieties   *[]VarietyRequest `json:"varieties"   validate:"omitempty,dive"`
}

type CreateOfferRequest struct {
	Image       string   `json:"image"       validate:"required,notblank"`
	Title       string   `json:"title"       validate:"required,notblank"`
	Description string   `json:"description" validate:"required,notblank"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Rating      *float64 `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	IsActive    *bool    `json:"isActive"`
}

type PatchOfferRequest struct {
	Image       *string  `json:"image"       validate:"omitempty,notblank"`
	Title       *string  `json:"title"       validate:"omitempty,notblank"`
	Description *string  `json:"description" validate:"omitempty,notblank"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	IsActive    *bool    `json:"isActive"`
}
