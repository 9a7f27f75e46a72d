package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

const productColumns = "id, name, description, price, available, category"

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// WithinTransaction executes a function within a database transaction
func (r *ProductRepository) WithinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	if r.txn != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := &ProductRepository{
		db:  r.db,
		txn: tx,
	}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Create inserts a new product and stores the generated ID on it.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	if err := repository.RequireTransient(product); err != nil {
		return err
	}
	if err := product.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO products (name, description, price, available, category)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	var id int64
	err = stmt.QueryRowContext(ctx, product.Name, product.Description, product.Price, product.Available, product.Category).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	product.ID = id
	return nil
}

// Update writes every field of the product to the row with the same ID.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	if err := repository.RequireID("update", product); err != nil {
		return err
	}
	if err := product.Validate(); err != nil {
		return err
	}

	query := `UPDATE products SET name = $1, description = $2, price = $3, available = $4, category = $5
	          WHERE id = $6`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, product.Name, product.Description, product.Price, product.Available, product.Category, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", repository.ErrNotFound, product.ID)
	}

	return nil
}

// Delete deletes the row with the product's ID.
func (r *ProductRepository) Delete(ctx context.Context, product *model.Product) error {
	if err := repository.RequireID("delete", product); err != nil {
		return err
	}

	query := `DELETE FROM products WHERE id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", repository.ErrNotFound, product.ID)
	}

	return nil
}

// All returns every product ordered by ID.
func (r *ProductRepository) All(ctx context.Context) ([]*model.Product, error) {
	return r.FindWhere(*repository.NewQuery()).List(ctx)
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	executor := r.getExecutor()
	stmt, err := executor.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	result, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return result, nil
}

// FindWhere returns a result set that runs the query each time it is consumed.
func (r *ProductRepository) FindWhere(query repository.Query) repository.Results {
	return &results{repo: r, query: query}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var product model.Product
	err := row.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Available, &product.Category)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// whereClause renders the equality filters of query as SQL starting at placeholder $1.
func whereClause(query repository.Query) (string, []any) {
	var clause strings.Builder
	clause.WriteString(" WHERE 1=1")

	args := make([]any, 0, len(query.Values))
	for _, field := range query.Fields() {
		args = append(args, query.Values[field])
		clause.WriteString(fmt.Sprintf(" AND %s = $%d", field, len(args)))
	}
	return clause.String(), args
}

type results struct {
	repo  *ProductRepository
	query repository.Query
}

func (res *results) Count(ctx context.Context) (int, error) {
	where, args := whereClause(res.query)

	executor := res.repo.getExecutor()
	stmt, err := executor.PrepareContext(ctx, "SELECT COUNT(*) FROM products"+where)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Close()

	var count int
	if err := stmt.QueryRowContext(ctx, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (res *results) List(ctx context.Context) ([]*model.Product, error) {
	return repository.Collect(res.Iter(ctx))
}

func (res *results) Iter(ctx context.Context) iter.Seq2[*model.Product, error] {
	return func(yield func(*model.Product, error) bool) {
		where, args := whereClause(res.query)

		var queryBuilder strings.Builder
		queryBuilder.WriteString("SELECT " + productColumns + " FROM products" + where)

		if res.query.Paginator != nil {
			args = append(args, res.query.Paginator.LastID)
			queryBuilder.WriteString(fmt.Sprintf(" AND id > $%d", len(args)))
		}

		queryBuilder.WriteString(" ORDER BY id")

		if res.query.Limit > 0 {
			args = append(args, res.query.Limit)
			queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
		}

		executor := res.repo.getExecutor()
		stmt, err := executor.PrepareContext(ctx, queryBuilder.String())
		if err != nil {
			yield(nil, fmt.Errorf("failed to prepare select statement: %w", err))
			return
		}
		defer stmt.Close()

		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			yield(nil, fmt.Errorf("failed to query products: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			product, err := scanProduct(rows)
			if err != nil {
				yield(nil, fmt.Errorf("failed to scan product: %w", err))
				return
			}
			if !yield(product, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}
