package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Product represents a catalog item.
// A zero ID means the product has not been persisted yet.
type Product struct {
	ID          int64
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=250"`
	Price       decimal.Decimal
	Available   bool
	Category    Category
}

// Record is the transport form of a product.
type Record struct {
	ID          *int64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
}

// Map returns the record as a generic object, the shape produced by decoding JSON.
func (r Record) Map() map[string]any {
	fields := map[string]any{
		"id":          nil,
		"name":        r.Name,
		"description": r.Description,
		"price":       r.Price,
		"available":   r.Available,
		"category":    r.Category,
	}
	if r.ID != nil {
		fields["id"] = *r.ID
	}
	return fields
}

// IsTransient reports whether the product still waits for its first Create.
func (p *Product) IsTransient() bool {
	return p.ID == 0
}

func (p *Product) String() string {
	if p.IsTransient() {
		return fmt.Sprintf("<Product %s id=[none]>", p.Name)
	}
	return fmt.Sprintf("<Product %s id=[%d]>", p.Name, p.ID)
}

// Validate checks the field constraints enforced by the products table.
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidAttribute, p.Category)
	}
	if !priceWithinLimit(p.Price) {
		return errPriceTooLarge
	}
	return nil
}

// Serialize converts the product into its transport record.
func (p *Product) Serialize() Record {
	record := Record{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(PriceScale),
		Available:   p.Available,
		Category:    p.Category.String(),
	}
	if !p.IsTransient() {
		id := p.ID
		record.ID = &id
	}
	return record
}

// NewProductFromRecord builds a transient product from a record.
func NewProductFromRecord(data any) (*Product, error) {
	product := &Product{}
	if err := product.Deserialize(data); err != nil {
		return nil, err
	}
	return product, nil
}

// Deserialize replaces the product fields with the ones in data.
// Validation stops at the first violation and p is left untouched on error.
// The ID is never read from data.
func (p *Product) Deserialize(data any) error {
	fields, err := recordFields(data)
	if err != nil {
		return err
	}

	next := Product{ID: p.ID}
	if next.Name, err = stringField(fields, "name"); err != nil {
		return err
	}
	if next.Description, err = stringField(fields, "description"); err != nil {
		return err
	}

	rawPrice, ok := fields["price"]
	if !ok {
		return fmt.Errorf("%w %s", ErrMissingField, "price")
	}
	if next.Price, err = ParsePrice(rawPrice); err != nil {
		return err
	}

	rawAvailable, ok := fields["available"]
	if !ok {
		return fmt.Errorf("%w %s", ErrMissingField, "available")
	}
	available, ok := rawAvailable.(bool)
	if !ok {
		return fmt.Errorf("%w for boolean [%s]: %T", ErrInvalidType, "available", rawAvailable)
	}
	next.Available = available

	categoryName, err := stringField(fields, "category")
	if err != nil {
		return err
	}
	if next.Category, err = ParseCategory(categoryName); err != nil {
		return err
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func recordFields(data any) (map[string]any, error) {
	switch v := data.(type) {
	case map[string]any:
		return v, nil
	case Record:
		return v.Map(), nil
	case *Record:
		if v != nil {
			return v.Map(), nil
		}
	}
	return nil, fmt.Errorf("%w: expected an object, got %T", ErrMalformedBody, data)
}

func stringField(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w %s", ErrMissingField, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w for string [%s]: %T", ErrInvalidType, key, raw)
	}
	return value, nil
}
