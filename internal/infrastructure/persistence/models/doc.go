// Package models contains GORM persistence models that map to database tables.
// Domain aggregates stay free of ORM tags; each model converts to and from its
// aggregate with ToDomain and a ...FromDomain constructor.
//
// Child collections (notes, communications, order items, status history,
// product images) live in their own tables. Short value lists (tags, sizes,
// price tiers) are stored as JSON columns.
package models
