package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/storefront/catalog/internal/infrastructure/database"
	"github.com/storefront/catalog/internal/product"
)

// handleListProducts returns every product as a JSON array ordered by id.
// Store failures become a generic 500; the cause is only logged.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body []byte
	products, err := s.products.List(ctx)
	if err == nil {
		// NaN or infinite stock values survive the scan but have no JSON form.
		if body, err = encodeJSON(products); err != nil {
			err = fmt.Errorf("%w: encoding products: %w", product.ErrMappingFailed, err)
		}
	}
	if err != nil {
		reason := listFailureReason(err)
		s.logger.Error("listing products failed",
			"error", err,
			"reason", reason,
			"request_id", requestIDFromContext(ctx),
		)
		if s.metrics != nil {
			s.metrics.RecordListFailure(reason)
		}
		writeInternalError(w, "failed to list products")
		return
	}

	writeBody(w, http.StatusOK, "application/json", body)
}

// listFailureReason maps a List error onto a stable label for logs and metrics.
func listFailureReason(err error) string {
	switch {
	case errors.Is(err, database.ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, database.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, product.ErrQueryFailed):
		return "query_failed"
	case errors.Is(err, product.ErrMappingFailed):
		return "mapping_failed"
	default:
		return "unknown"
	}
}
