package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
	"github.com/HSouheill/branchstock_backend/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	labelSize        = 300

	maxCategoryWriteAttempts = 5
)

// Attributes every item may carry regardless of its category schema.
var coreItemFields = map[string]bool{
	"brand":    true,
	"type":     true,
	"model":    true,
	"price":    true,
	"stock":    true,
	"warranty": true,
	"imageurl": true,
}

// CatalogService is the branch-scoped store of categories and items.
type CatalogService struct {
	branches   repositories.BranchRepository
	items      repositories.ItemRepository
	uploadsDir string
	now        func() time.Time
}

func NewCatalogService(branches repositories.BranchRepository, items repositories.ItemRepository, uploadsDir string) *CatalogService {
	return &CatalogService{
		branches:   branches,
		items:      items,
		uploadsDir: uploadsDir,
		now:        time.Now,
	}
}

func (s *CatalogService) CreateBranch(ctx context.Context, id, name string) (*models.Branch, error) {
	name = strings.TrimSpace(utils.SanitizeInput(name))
	if name == "" {
		return nil, newValidationError("name", "branch name is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	branch := &models.Branch{
		ID:         id,
		Name:       name,
		Categories: []models.Category{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *CatalogService) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return s.branches.List(ctx)
}

func (s *CatalogService) GetBranch(ctx context.Context, branchID string) (*models.Branch, error) {
	return s.branches.FindByID(ctx, branchID)
}

// UpsertCategory adds a category to the branch or, when one with the same
// name exists, merges the incoming fields into it. Existing fields are
// never removed; a field re-declared with another type changes type in place.
func (s *CatalogService) UpsertCategory(ctx context.Context, branchID, name string, fields []models.FieldSpec) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "category name is required")
	}
	if strings.ContainsAny(name, "/$.") {
		return nil, newValidationError("name", "category name may not contain '/', '$' or '.'")
	}
	incoming, err := normalizeFields(fields)
	if err != nil {
		return nil, err
	}

	// A concurrent upsert on the same branch bumps its revision; re-read
	// and merge again on top of it.
	for attempt := 0; ; attempt++ {
		branch, err := s.branches.FindByID(ctx, branchID)
		if err != nil {
			return nil, err
		}

		category, exists := branch.Category(name)
		if !exists {
			branch.Categories = append(branch.Categories, models.Category{Name: name, Fields: []models.FieldSpec{}})
			category = &branch.Categories[len(branch.Categories)-1]
		}
		for _, f := range incoming {
			if existing, ok := category.Field(f.Name); ok {
				existing.Type = f.Type
				continue
			}
			category.Fields = append(category.Fields, f)
		}

		err = s.branches.UpdateCategories(ctx, branchID, branch.Revision, branch.Categories)
		if errors.Is(err, repositories.ErrConflict) && attempt < maxCategoryWriteAttempts-1 {
			continue
		}
		if err != nil {
			return nil, err
		}
		merged := *category
		return &merged, nil
	}
}

// normalizeFields validates types and collapses duplicate names in one
// request; the last declaration of a name wins.
func normalizeFields(fields []models.FieldSpec) ([]models.FieldSpec, error) {
	out := make([]models.FieldSpec, 0, len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, newValidationError(fmt.Sprintf("fields[%d].name", i), "field name is required")
		}
		if !f.Type.Valid() {
			return nil, newValidationError(fmt.Sprintf("fields[%d].type", i), "type must be one of text, number, date")
		}
		if coreItemFields[strings.ToLower(f.Name)] {
			return nil, newValidationError(fmt.Sprintf("fields[%d].name", i), f.Name+" is a built-in item attribute")
		}
		replaced := false
		for j := range out {
			if strings.EqualFold(out[j].Name, f.Name) {
				out[j].Type = f.Type
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, branchID string) ([]models.Category, error) {
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return branch.Categories, nil
}

// resolveCategory returns the branch's stored spelling of categoryName.
func (s *CatalogService) resolveCategory(ctx context.Context, branchID, categoryName string) (*models.Branch, *models.Category, error) {
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, nil, err
	}
	category, ok := branch.Category(categoryName)
	if !ok {
		return nil, nil, fmt.Errorf("category %q: %w", categoryName, ErrNotFound)
	}
	return branch, category, nil
}

// AddItem validates the caller's fields against the category schema and
// writes exactly those fields.
func (s *CatalogService) AddItem(ctx context.Context, branchID, categoryName string, fields map[string]interface{}) (string, error) {
	_, category, err := s.resolveCategory(ctx, branchID, categoryName)
	if err != nil {
		return "", err
	}

	item, err := buildItem(category, fields)
	if err != nil {
		return "", err
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.BranchID = branchID
	item.Category = category.Name
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.items.Create(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

func buildItem(category *models.Category, fields map[string]interface{}) (*models.Item, error) {
	verr := &ValidationError{Fields: map[string]string{}}
	item := &models.Item{}

	price, ok := fields["price"]
	if !ok {
		verr.Fields["price"] = "price is required"
	} else if p, err := utils.ToNumber(price); err != nil {
		verr.Fields["price"] = "price must be a number"
	} else if p < 0 {
		verr.Fields["price"] = "price must not be negative"
	} else {
		item.Price = p
	}

	stock, ok := fields["stock"]
	if !ok {
		verr.Fields["stock"] = "stock is required"
	} else if n, err := utils.ToInt(stock); err != nil {
		verr.Fields["stock"] = "stock must be a whole number"
	} else if n < 0 {
		verr.Fields["stock"] = "stock must not be negative"
	} else {
		item.Stock = n
	}

	for key, raw := range fields {
		lower := strings.ToLower(key)
		if lower == "price" || lower == "stock" {
			continue
		}
		if coreItemFields[lower] {
			str, ok := raw.(string)
			if !ok {
				verr.Fields[key] = key + " must be text"
				continue
			}
			switch lower {
			case "brand":
				item.Brand = str
			case "type":
				item.Type = str
			case "model":
				item.Model = str
			case "warranty":
				item.Warranty = str
			case "imageurl":
				item.ImageURL = str
			}
			continue
		}

		spec, declared := category.Field(key)
		if !declared {
			verr.Fields[key] = "field is not declared by category " + category.Name
			continue
		}
		value, err := coerceField(spec.Type, raw)
		if err != nil {
			verr.Fields[key] = err.Error()
			continue
		}
		if item.Attributes == nil {
			item.Attributes = map[string]interface{}{}
		}
		item.Attributes[spec.Name] = value
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return item, nil
}

func coerceField(t models.FieldType, raw interface{}) (interface{}, error) {
	switch t {
	case models.FieldTypeNumber:
		n, err := utils.ToNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil
	case models.FieldTypeDate:
		return utils.ToDate(raw)
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be text")
		}
		return s, nil
	}
}

func (s *CatalogService) GetItem(ctx context.Context, branchID, categoryName, itemID string) (*models.Item, error) {
	_, category, err := s.resolveCategory(ctx, branchID, categoryName)
	if err != nil {
		return nil, err
	}
	return s.items.FindByID(ctx, branchID, category.Name, itemID)
}

// ListItems returns one page of a category, optionally narrowed by a
// case-insensitive substring match over the item's text attributes.
func (s *CatalogService) ListItems(ctx context.Context, branchID, categoryName, search string, page, limit int) (*models.ItemPage, error) {
	_, category, err := s.resolveCategory(ctx, branchID, categoryName)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, branchID, category.Name)
	if err != nil {
		return nil, err
	}

	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		matched := items[:0:0]
		for _, it := range items {
			if itemMatches(&it, term) {
				matched = append(matched, it)
			}
		}
		items = matched
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	return &models.ItemPage{
		Items: items[start:end],
		Total: len(items),
		Page:  page,
		Limit: limit,
	}, nil
}

func itemMatches(it *models.Item, term string) bool {
	for _, v := range []string{it.ID, it.Brand, it.Type, it.Model, it.Warranty, it.Category} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	for _, v := range it.Attributes {
		if str, ok := v.(string); ok && strings.Contains(strings.ToLower(str), term) {
			return true
		}
	}
	return false
}

// UpdateItem applies the editable-detail partial update. Only price,
// warranty and stock may change, and numbers are validated before writing.
func (s *CatalogService) UpdateItem(ctx context.Context, branchID, categoryName, itemID string, partial map[string]interface{}) (*models.Item, error) {
	update, err := parseItemUpdate(partial)
	if err != nil {
		return nil, err
	}

	_, category, err := s.resolveCategory(ctx, branchID, categoryName)
	if err != nil {
		return nil, err
	}
	return s.items.Update(ctx, branchID, category.Name, itemID, update)
}

func parseItemUpdate(partial map[string]interface{}) (models.ItemUpdate, error) {
	var update models.ItemUpdate
	verr := &ValidationError{Fields: map[string]string{}}

	for key, raw := range partial {
		switch strings.ToLower(key) {
		case "price":
			p, err := utils.ToNumber(raw)
			if err != nil {
				verr.Fields[key] = "price must be a number"
			} else if p < 0 {
				verr.Fields[key] = "price must not be negative"
			} else {
				update.Price = &p
			}
		case "stock":
			n, err := utils.ToInt(raw)
			if err != nil {
				verr.Fields[key] = "stock must be a whole number"
			} else if n < 0 {
				verr.Fields[key] = "stock must not be negative"
			} else {
				update.Stock = &n
			}
		case "warranty":
			w, ok := raw.(string)
			if !ok {
				verr.Fields[key] = "warranty must be text"
			} else {
				update.Warranty = &w
			}
		default:
			verr.Fields[key] = "only price, warranty and stock can be edited"
		}
	}

	if len(verr.Fields) > 0 {
		return update, verr
	}
	if update.Empty() {
		return update, newValidationError("body", "nothing to update")
	}
	return update, nil
}

// AttachItemImage stores a resized copy of an uploaded picture and points
// the item's imageUrl at it.
func (s *CatalogService) AttachItemImage(ctx context.Context, branchID, categoryName, itemID string, data []byte, filename string) (string, error) {
	item, err := s.GetItem(ctx, branchID, categoryName, itemID)
	if err != nil {
		return "", err
	}
	url, err := utils.SaveItemImage(s.uploadsDir, data, filename, item.ID)
	if err != nil {
		return "", newValidationError("image", err.Error())
	}
	if err := s.items.SetImageURL(ctx, branchID, item.Category, item.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ItemLabel renders a printable QR code identifying the item.
func (s *CatalogService) ItemLabel(ctx context.Context, branchID, categoryName, itemID string) ([]byte, error) {
	item, err := s.GetItem(ctx, branchID, categoryName, itemID)
	if err != nil {
		return nil, err
	}
	return utils.QRCodePNG(LabelContent(item), labelSize)
}

// LabelContent is the text encoded in an item's QR label.
func LabelContent(item *models.Item) string {
	return fmt.Sprintf("item:%s/%s/%s", item.BranchID, item.Category, item.ID)
}
