package models

import "strings"

// FieldType is the declared type of a category-specific item attribute.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate:
		return true
	}
	return false
}

// FieldSpec declares one attribute that items of a category may carry.
type FieldSpec struct {
	Name string    `json:"name" bson:"name" validate:"required"`
	Type FieldType `json:"type" bson:"type" validate:"required,oneof=text number date"`
}

// Category is a named product type inside a branch with an evolvable field schema.
type Category struct {
	Name   string      `json:"name" bson:"name"`
	Fields []FieldSpec `json:"fields" bson:"fields"`
}

// Field returns the declared field matching name case-insensitively.
func (c *Category) Field(name string) (*FieldSpec, bool) {
	for i := range c.Fields {
		if strings.EqualFold(c.Fields[i].Name, name) {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// UpsertCategoryRequest is the admin payload for creating or extending a category
type UpsertCategoryRequest struct {
	Name   string      `json:"name" validate:"required"`
	Fields []FieldSpec `json:"fields" validate:"dive"`
}
