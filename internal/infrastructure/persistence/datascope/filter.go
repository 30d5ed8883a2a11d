// Package datascope narrows list queries to the records a staff member may see.
//
// Staff see records assigned to them, records they created, and records that
// nobody has claimed yet. Managers and admins are not scoped; callers only
// apply a scope when the principal cannot see everything.
//
// Usage:
//
//	db.Scopes(datascope.Visible(userID, datascope.WithCreator)).Find(&customers)
package datascope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Columns selects which ownership columns a table carries
type Columns int

const (
	// AssigneeOnly is for tables with assigned_to but no created_by
	AssigneeOnly Columns = iota
	// WithCreator is for tables with both assigned_to and created_by
	WithCreator
)

// Visible returns a gorm scope limiting rows to those owned by userID or unassigned
func Visible(userID uuid.UUID, cols Columns) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		if cols == WithCreator {
			return db.Where("(assigned_to = ? OR created_by = ? OR assigned_to IS NULL)", userID, userID)
		}
		return db.Where("(assigned_to = ? OR assigned_to IS NULL)", userID)
	}
}

// FromFilter extracts the visible_to value set by the application layer.
// An unreadable value yields uuid.Nil, which Visible turns into an empty result.
func FromFilter(v any) (uuid.UUID, bool) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, true
	case string:
		parsed, err := uuid.Parse(id)
		return parsed, err == nil
	}
	return uuid.Nil, false
}
