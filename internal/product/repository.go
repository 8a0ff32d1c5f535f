package product

import (
	"context"
	"fmt"

	"github.com/storefront/catalog/internal/infrastructure/database"
)

// listQuery selects every product. Ordering by id keeps repeated listings
// of an unchanged table byte-identical.
const listQuery = "SELECT " + columns + " FROM products ORDER BY id ASC"

// Repository defines the read operations on products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
}

// SQLRepository implements Repository on top of a connection provider.
type SQLRepository struct {
	provider database.Provider
}

// NewSQLRepository creates a products repository that borrows one
// connection from provider per call.
func NewSQLRepository(provider database.Provider) *SQLRepository {
	return &SQLRepository{provider: provider}
}

// List returns all products ordered by ascending id.
//
// The result is never nil; an empty table yields an empty slice. Either
// every row maps or the whole call fails: errors wrap
// database.ErrStoreUnavailable or database.ErrPoolExhausted (checkout),
// ErrQueryFailed (execution or iteration) or ErrMappingFailed (row shape).
// The connection goes back to the pool before List returns.
func (r *SQLRepository) List(ctx context.Context) ([]Product, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer conn.Close() //nolint:errcheck // Returning a connection to the pool only fails if it was already closed

	rows, err := conn.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %w", ErrQueryFailed, err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := FromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %w", ErrQueryFailed, err)
	}
	return products, nil
}
