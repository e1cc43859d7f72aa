package models

import "time"

// Item is one stock-tracked product record inside a branch category.
type Item struct {
	ID         string                 `json:"id" bson:"_id"`
	BranchID   string                 `json:"branchId" bson:"branchId"`
	Category   string                 `json:"category" bson:"category"`
	Brand      string                 `json:"brand,omitempty" bson:"brand,omitempty"`
	Type       string                 `json:"type,omitempty" bson:"type,omitempty"`
	Model      string                 `json:"model,omitempty" bson:"model,omitempty"`
	Price      float64                `json:"price" bson:"price"`
	Stock      int                    `json:"stock" bson:"stock"`
	Warranty   string                 `json:"warranty,omitempty" bson:"warranty,omitempty"`
	ImageURL   string                 `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty" bson:"attributes,omitempty"`
	CreatedAt  time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// DisplayName mirrors how stock alerts label an item: brand and model when
// both are known, otherwise whichever is present, otherwise the category.
func (i *Item) DisplayName() string {
	brand := i.Brand
	if brand == "" {
		brand = i.Type
	}
	switch {
	case brand != "" && i.Model != "":
		return brand + " " + i.Model
	case brand != "":
		return brand
	case i.Model != "":
		return i.Model
	}
	return i.Category
}

// ItemUpdate carries the fields editable from the item detail flow.
// Nil pointers are left untouched.
type ItemUpdate struct {
	Price    *float64 `json:"price,omitempty"`
	Stock    *int     `json:"stock,omitempty"`
	Warranty *string  `json:"warranty,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Price == nil && u.Stock == nil && u.Warranty == nil
}

// ItemPage is one page of a category listing
type ItemPage struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
