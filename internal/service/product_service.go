package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
)

// Publisher sends product change messages. *sqs.Publisher implements it.
type Publisher interface {
	PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error
}

// ProductService runs catalog operations on the repository, counts them and announces every change.
type ProductService struct {
	repo      repository.ProductRepository
	publisher Publisher
}

// NewProductService creates a ProductService. A nil publisher disables notifications.
func NewProductService(repo repository.ProductRepository, publisher Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateProduct builds a product from a record and persists it.
func (ps *ProductService) CreateProduct(ctx context.Context, data any) (*model.Product, error) {
	product, err := model.NewProductFromRecord(data)
	if err != nil {
		return nil, err
	}

	if err := ps.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	slog.Info("product created", slog.Int64("product_id", product.ID), slog.String("name", product.Name))

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, sqs.ActionCreated, product)

	return product, nil
}

// GetProduct returns the product with id.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

// UpdateProduct reads the product, applies the record to it and writes it back in one transaction.
// The product keeps its ID whatever the record says.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int64, data any) (*model.Product, error) {
	var updated *model.Product
	err := ps.repo.WithinTransaction(ctx, func(repo repository.ProductRepository) error {
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := product.Deserialize(data); err != nil {
			return err
		}
		if err := repo.Update(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("product updated", slog.Int64("product_id", updated.ID))

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, sqs.ActionUpdated, updated)

	return updated, nil
}

// DeleteProduct removes the product with id. It returns repository.ErrNotFound if there is none.
func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := ps.repo.Delete(ctx, product); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	slog.Info("product deleted", slog.Int64("product_id", product.ID))

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, sqs.ActionDeleted, product)

	return nil
}

// ListProducts returns one page of the products matching query.
func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.repo.FindWhere(query).List(ctx)
}

// CountProducts counts every product matching the filters of query, ignoring its page.
func (ps *ProductService) CountProducts(ctx context.Context, query repository.Query) (int, error) {
	return ps.repo.FindWhere(query).Count(ctx)
}

func (ps *ProductService) publish(ctx context.Context, action string, product *model.Product) {
	if ps.publisher == nil {
		return
	}
	msg := sqs.NewProductMessage(action, product)
	if err := ps.publisher.PublishProductMessage(ctx, msg); err != nil {
		// Log error but don't fail the request
		slog.Error("Failed to send SQS message",
			slog.Any("err", err),
			slog.String("action", action),
			slog.Int64("product_id", product.ID),
		)
	}
}
