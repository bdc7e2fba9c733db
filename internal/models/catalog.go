package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategoryDessert   = "Dessert"
	CategoryDrinks    = "Drinks"
)

var Categories = []string{CategoryBreakfast, CategoryLunch, CategoryDinner, CategoryDessert, CategoryDrinks}

// Variety is a priced sub-option of a FoodItem, stored embedded in its parent.
type Variety struct {
	ID          string   `bson:"_id"         json:"_id"`
	Name        string   `bson:"name"        json:"name"`
	Description string   `bson:"description" json:"description"`
	Price       float64  `bson:"price"       json:"price"`
	Rating      float64  `bson:"rating"      json:"rating"`
	Ingredients []string `bson:"ingredients" json:"ingredients"`
	Image       string   `bson:"image"       json:"image"`
}

type FoodItem struct {
	ID          string                       `gorm:"primaryKey;type:varchar(36)" bson:"_id"         json:"_id"`
	Name        string                       `gorm:"not null"                    bson:"name"        json:"name"`
	Description string                       `gorm:"not null"                    bson:"description" json:"description"`
	Price       float64                      `gorm:"not null"                    bson:"price"       json:"price"`
	Category    string                       `gorm:"index;not null"              bson:"category"    json:"category"`
	SubCategory string                       `                                   bson:"subCategory" json:"subCategory"`
	Rating      float64                      `                                   bson:"rating"      json:"rating"`
	Ingredients datatypes.JSONSlice[string]  `                                   bson:"ingredients" json:"ingredients"`
	Image       string                       `                                   bson:"image"       json:"image"`
	Varieties   datatypes.JSONSlice[Variety] `                                   bson:"varieties"   json:"varieties"`
	CreatedAt   time.Time                    `gorm:"index"                       bson:"createdAt"   json:"createdAt"`
	UpdatedAt   time.Time                    `                                   bson:"updatedAt"   json:"updatedAt"`
}

func (f *FoodItem) BeforeCreate(tx *gorm.DB) error {
	f.EnsureIDs()
	return nil
}

// EnsureIDs fills in missing ids on the item and its varieties.
func (f *FoodItem) EnsureIDs() {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	for i := range f.Varieties {
		if f.Varieties[i].ID == "" {
			f.Varieties[i].ID = uuid.NewString()
		}
	}
}

func (f *FoodItem) Variety(id string) (*Variety, bool) {
	for i := range f.Varieties {
		if f.Varieties[i].ID == id {
			return &f.Varieties[i], true
		}
	}
	return nil, false
}

type Offer struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"         json:"_id"`
	Image       string    `gorm:"not null"                    bson:"image"       json:"image"`
	Title       string    `gorm:"not null"                    bson:"title"       json:"title"`
	Rating      float64   `                                   bson:"rating"      json:"rating"`
	Description string    `gorm:"not null"                    bson:"description" json:"description"`
	Price       float64   `gorm:"not null"                    bson:"price"       json:"price"`
	IsActive    bool      `gorm:"index;not null"              bson:"isActive"    json:"isActive"`
	CreatedAt   time.Time `gorm:"index"                       bson:"createdAt"   json:"createdAt"`
	UpdatedAt   time.Time `                                   bson:"updatedAt"   json:"updatedAt"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
