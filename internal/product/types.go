package product

// Product is one row of the products table.
//
// Price is in minor currency units and is nil for unpriced products; it
// serialises as JSON null rather than being omitted so every element of a
// listing has the same keys.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Stock float64 `json:"stock"`
	Price *int64  `json:"price"`
}
