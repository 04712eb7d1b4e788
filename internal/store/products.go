package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/chalets-du-lac/api/internal/model"
)

// CreateProductParams carries a validated product document.
type CreateProductParams struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Services    []string
	Extras      []model.Extra
}

const productColumns = "id, name, category, description, price, services, extras"

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	var price pgtype.Numeric
	var extras []model.Extra
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &price, &p.Services, &extras); err != nil {
		return model.Product{}, err
	}
	p.Price = numericToDecimal(price)
	p.Extras = extras
	return p, nil
}

// ListProducts returns the full catalog in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProductsByService returns the catalog entries offered under service,
// in insertion order. Feeds the catalog projector.
func (s *Store) ListProductsByService(ctx context.Context, service string) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE $1 = ANY(services) ORDER BY created_at",
		service)
	if err != nil {
		return nil, fmt.Errorf("list products by service: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct fetches one product. Returns pgx.ErrNoRows when absent.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// CreateProduct inserts a new product and returns it.
func (s *Store) CreateProduct(ctx context.Context, arg CreateProductParams) (model.Product, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO products (id, name, category, description, price, services, extras)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		uuid.New(), arg.Name, arg.Category, arg.Description, decimalToNumeric(arg.Price), arg.Services, arg.Extras)
	return scanProduct(row)
}

// UpdateProduct overwrites an existing product. Returns pgx.ErrNoRows when
// absent.
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, arg CreateProductParams) (model.Product, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, category = $3, description = $4, price = $5, services = $6, extras = $7
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, arg.Name, arg.Category, arg.Description, decimalToNumeric(arg.Price), arg.Services, arg.Extras)
	return scanProduct(row)
}

// DeleteProduct removes a product. Returns pgx.ErrNoRows when absent.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
