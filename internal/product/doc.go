// Package product defines the Product record and its read path from the
// relational store.
//
// FromRow is the record mapper: it turns one products row into a Product
// and rejects rows with missing or mistyped required columns. SQLRepository
// lists every product through a per-call connection borrowed from a
// database.Provider.
//
// # Thread Safety
//
// FromRow is pure. SQLRepository holds no mutable state and is safe for
// concurrent use; the underlying pool serialises checkout.
package product
