// Package catalog reads a user's product list for the parser. The catalog is
// read fresh on every call so a product added a moment ago is matchable.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopsense-voice/internal/models"
)

var ErrMissingUser = errors.New("catalog: user id is required")

// Source lists the products a user can order from.
type Source interface {
	ListProducts(ctx context.Context, userID string) ([]models.Product, error)
}

// Repository is the Postgres-backed Source.
type Repository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewRepository wraps db. A zero timeout leaves the caller's deadline alone.
func NewRepository(db *sql.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

const listProductsQuery = `
		SELECT id, name, price, stock, unit
		FROM products
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY id DESC`

// ListProducts returns the user's live products, newest first. Catalog order
// matters: entity resolution breaks score ties by position.
func (r *Repository) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rows, err := r.db.QueryContext(ctx, listProductsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list products for user %s: %w", userID, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var (
			p    models.Product
			unit sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &unit); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Unit = unit.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, userID string) ([]models.Product, error)

func (f SourceFunc) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	return f(ctx, userID)
}
