package repository

import (
	"github.com/iyhunko/product-catalog/internal/model"
)

// FindByName returns the products with exactly this name.
func FindByName(finder Finder, name string) Results {
	return finder.FindWhere(*NewQuery().With(NameField, name))
}

// FindByAvailability returns the products whose availability equals available.
func FindByAvailability(finder Finder, available bool) Results {
	return finder.FindWhere(*NewQuery().With(AvailableField, available))
}

// FindByCategory returns the products of one category.
func FindByCategory(finder Finder, category model.Category) Results {
	return finder.FindWhere(*NewQuery().With(CategoryField, category))
}

// FindByPrice returns the products with the same numeric price.
// price may be a decimal.Decimal, numeric text or any Go number.
func FindByPrice(finder Finder, price any) (Results, error) {
	value, err := model.ParsePrice(price)
	if err != nil {
		return nil, err
	}
	return finder.FindWhere(*NewQuery().With(PriceField, value)), nil
}
