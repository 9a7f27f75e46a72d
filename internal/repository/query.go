package repository

import (
	"errors"
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/shopspring/decimal"
)

const (
	IDField        QueryField = "id"
	NameField      QueryField = "name"
	AvailableField QueryField = "available"
	CategoryField  QueryField = "category"
	PriceField     QueryField = "price"
)

// queryFields fixes the order in which filters are applied.
var queryFields = []QueryField{IDField, NameField, AvailableField, CategoryField, PriceField}

// Query is a conjunction of equality filters.
// Values hold int64 for IDField, string for NameField, bool for AvailableField,
// model.Category for CategoryField and decimal.Decimal for PriceField.
type Query struct {
	Values map[QueryField]any

	// Limit of zero means no limit.
	Limit int

	Paginator *Paginator
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]any{},
	}
}

func (q *Query) With(field QueryField, val any) *Query {
	q.Values[field] = val
	return q
}

// Fields returns the filtered fields in a stable order.
func (q Query) Fields() []QueryField {
	fields := make([]QueryField, 0, len(q.Values))
	for _, field := range queryFields {
		if _, ok := q.Values[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// Matches reports whether product satisfies every filter of the query. Unknown fields are ignored.
// Pagination is not taken into account.
func (q Query) Matches(product *model.Product) bool {
	for _, field := range q.Fields() {
		value := q.Values[field]
		var ok bool
		switch field {
		case IDField:
			id, isID := value.(int64)
			ok = isID && product.ID == id
		case NameField:
			name, isName := value.(string)
			ok = isName && product.Name == name
		case AvailableField:
			available, isBool := value.(bool)
			ok = isBool && product.Available == available
		case CategoryField:
			category, isCategory := value.(model.Category)
			ok = isCategory && product.Category == category
		case PriceField:
			price, isPrice := value.(decimal.Decimal)
			ok = isPrice && product.Price.Equal(price)
		}
		if !ok {
			return false
		}
	}
	return true
}

func (q *Query) ApplyPagination(limit int32, token string) error {
	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, int(limit))
	}
	q.Limit = queryLimit

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return errors.New("invalid page token")
	}
	q.Paginator = paginator
	return nil
}
