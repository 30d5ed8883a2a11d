package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// translate maps gorm errors to domain errors. dup is returned for unique
// violations so each repository can name the clashing field.
func translate(err error, dup *shared.DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if dup == nil {
			return shared.ErrAlreadyExists
		}
		return dup
	}
	return err
}

// saveVersioned updates every column of model where the stored version still
// equals version. model must already carry version+1.
func saveVersioned(db *gorm.DB, model any, id any, version int) error {
	res := db.Model(model).
		Where("id = ? AND version = ?", id, version).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}
