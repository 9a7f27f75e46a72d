package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrNotFound is returned when no product has the requested ID.
	ErrNotFound = errors.New("product not found")

	// ErrEmptyID is returned when an operation needs a persisted product but got a transient one.
	ErrEmptyID = errors.New("empty ID field")

	// ErrAlreadyPersisted is returned when Create is called on a product that already has an ID.
	ErrAlreadyPersisted = errors.New("product already has an ID")
)

// ProductRepository stores products and answers equality lookups over their fields.
type ProductRepository interface {
	// Create inserts a transient product and sets its ID.
	Create(ctx context.Context, product *model.Product) error
	// Update overwrites the stored row that has the product's ID.
	Update(ctx context.Context, product *model.Product) error
	// Delete removes the stored row that has the product's ID.
	Delete(ctx context.Context, product *model.Product) error
	// All returns every stored product ordered by ID.
	All(ctx context.Context) ([]*model.Product, error)
	// FindByID returns ErrNotFound when there is no such product.
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Finder
	WithinTransaction(ctx context.Context, fn func(repo ProductRepository) error) error
}

// Finder builds lazy result sets for a query.
type Finder interface {
	FindWhere(query Query) Results
}

// Results is a lazily evaluated set of products. Every call queries the store again.
type Results interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*model.Product, error)
	Iter(ctx context.Context) iter.Seq2[*model.Product, error]
}

// RequireTransient checks the precondition of Create.
func RequireTransient(product *model.Product) error {
	if !product.IsTransient() {
		return fmt.Errorf("create called on product %d: %w", product.ID, ErrAlreadyPersisted)
	}
	return nil
}

// RequireID checks the precondition of operations on persisted products.
func RequireID(operation string, product *model.Product) error {
	if product.IsTransient() {
		return fmt.Errorf("%s called with %w", operation, ErrEmptyID)
	}
	return nil
}

// Collect drains an iterator into a slice, stopping at the first error.
func Collect(seq iter.Seq2[*model.Product, error]) ([]*model.Product, error) {
	products := []*model.Product{}
	for product, err := range seq {
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
