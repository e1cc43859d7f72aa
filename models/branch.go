package models

import (
	"strings"
	"time"
)

// Branch is a store location owning its categories, items and sales ledger.
// Revision increases on every category write.
type Branch struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	Categories []Category `json:"categories" bson:"categories"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
	Revision   int64      `json:"-" bson:"revision"`
}

// Category returns the branch category matching name case-insensitively.
func (b *Branch) Category(name string) (*Category, bool) {
	for i := range b.Categories {
		if strings.EqualFold(b.Categories[i].Name, name) {
			return &b.Categories[i], true
		}
	}
	return nil, false
}

type CreateBranchRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"required"`
}
