// Package memory provides an in-memory ProductRepository with the same semantics as the SQL one.
package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository keeps copies of products in a map keyed by ID.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	nextID   int64

	// Set only on the repository handed to a transaction.
	parent  *ProductRepository
	changes map[int64]*model.Product
}

// NewProductRepository creates an empty repository. IDs start at 1.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]model.Product),
		nextID:   1,
	}
}

// Create stores a copy of the product and assigns its ID.
func (r *ProductRepository) Create(_ context.Context, product *model.Product) error {
	if err := repository.RequireTransient(product); err != nil {
		return err
	}
	if err := product.Validate(); err != nil {
		return err
	}

	id := r.allocateID()

	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = id
	r.products[id] = *product
	r.record(id, product)
	return nil
}

// allocateID draws from the root counter so transactions never reuse an ID.
// IDs drawn by a rolled back transaction are not handed out again.
func (r *ProductRepository) allocateID() int64 {
	if r.parent != nil {
		return r.parent.allocateID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// record remembers a write made inside a transaction; nil marks a delete.
func (r *ProductRepository) record(id int64, product *model.Product) {
	if r.changes == nil {
		return
	}
	if product == nil {
		r.changes[id] = nil
		return
	}
	stored := *product
	r.changes[id] = &stored
}

// Update replaces the stored copy with the same ID.
func (r *ProductRepository) Update(_ context.Context, product *model.Product) error {
	if err := repository.RequireID("update", product); err != nil {
		return err
	}
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("%w: id %d", repository.ErrNotFound, product.ID)
	}
	r.products[product.ID] = *product
	r.record(product.ID, product)
	return nil
}

// Delete removes the stored copy with the same ID.
func (r *ProductRepository) Delete(_ context.Context, product *model.Product) error {
	if err := repository.RequireID("delete", product); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("%w: id %d", repository.ErrNotFound, product.ID)
	}
	delete(r.products, product.ID)
	r.record(product.ID, nil)
	return nil
}

// All returns every product ordered by ID.
func (r *ProductRepository) All(ctx context.Context) ([]*model.Product, error) {
	return r.FindWhere(*repository.NewQuery()).List(ctx)
}

// FindByID returns a copy of the stored product.
func (r *ProductRepository) FindByID(_ context.Context, id int64) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", repository.ErrNotFound, id)
	}
	return &product, nil
}

// FindWhere returns a lazy result set; the map is read when the results are consumed.
func (r *ProductRepository) FindWhere(query repository.Query) repository.Results {
	return results{repo: r, query: query}
}

// WithinTransaction runs fn against a snapshot. If fn succeeds, the writes fn made
// are applied on top of the current contents; writes made outside the transaction are kept.
func (r *ProductRepository) WithinTransaction(_ context.Context, fn func(repo repository.ProductRepository) error) error {
	if r.parent != nil {
		return fn(r)
	}

	r.mu.RLock()
	txRepo := &ProductRepository{
		products: maps.Clone(r.products),
		parent:   r,
		changes:  make(map[int64]*model.Product),
	}
	r.mu.RUnlock()

	if err := fn(txRepo); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, product := range txRepo.changes {
		if product == nil {
			delete(r.products, id)
			continue
		}
		r.products[id] = *product
	}
	return nil
}

// matching returns copies of the products selected by query, ordered by ID.
func (r *ProductRepository) matching(query repository.Query) []*model.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(r.products))
	matched := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		if query.Paginator != nil && id <= query.Paginator.LastID {
			continue
		}
		product := r.products[id]
		if !query.Matches(&product) {
			continue
		}
		matched = append(matched, &product)
		if query.Limit > 0 && len(matched) == query.Limit {
			break
		}
	}
	return matched
}

type results struct {
	repo  *ProductRepository
	query repository.Query
}

func (res results) Count(_ context.Context) (int, error) {
	countQuery := res.query
	countQuery.Limit = 0
	countQuery.Paginator = nil
	return len(res.repo.matching(countQuery)), nil
}

func (res results) List(ctx context.Context) ([]*model.Product, error) {
	return repository.Collect(res.Iter(ctx))
}

func (res results) Iter(ctx context.Context) iter.Seq2[*model.Product, error] {
	return func(yield func(*model.Product, error) bool) {
		for _, product := range res.repo.matching(res.query) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(product, nil) {
				return
			}
		}
	}
}
