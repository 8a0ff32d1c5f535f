package product

import (
	"database/sql"
	"fmt"
)

// columns is the select list FromRow expects, in scan order.
const columns = "id, name, stock, price"

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// FromRow converts the current row (selected with columns) into a Product.
//
// id, name and stock are required; a NULL in any of them, or a value that
// cannot be converted to the field type, yields an error wrapping
// ErrMappingFailed. A NULL price maps to a nil Price.
func FromRow(row RowScanner) (Product, error) {
	var (
		id    sql.NullInt64
		name  sql.NullString
		stock sql.NullFloat64
		price sql.NullInt64
	)

	if err := row.Scan(&id, &name, &stock, &price); err != nil {
		return Product{}, fmt.Errorf("%w: %w", ErrMappingFailed, err)
	}

	switch {
	case !id.Valid:
		return Product{}, fmt.Errorf("%w: id is null", ErrMappingFailed)
	case !name.Valid:
		return Product{}, fmt.Errorf("%w: name is null for product %d", ErrMappingFailed, id.Int64)
	case !stock.Valid:
		return Product{}, fmt.Errorf("%w: stock is null for product %d", ErrMappingFailed, id.Int64)
	}

	p := Product{
		ID:    id.Int64,
		Name:  name.String,
		Stock: stock.Float64,
	}
	if price.Valid {
		v := price.Int64
		p.Price = &v
	}
	return p, nil
}
