package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

// appendActivity inserts notes and communications that are not stored yet.
// Both collections are append-only, so existing rows are left untouched.
func appendActivity(db *gorm.DB, ownerType string, ownerID uuid.UUID, notes []shared.Note, comms []shared.Communication) error {
	if len(notes) > 0 {
		rows := models.NoteModelsFromDomain(ownerType, ownerID, notes)
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(comms) > 0 {
		rows := models.CommunicationModelsFromDomain(ownerType, ownerID, comms)
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// loadActivity reads an owner's notes and communications in chronological order
func loadActivity(db *gorm.DB, ownerType string, ownerID uuid.UUID, withComms bool) ([]shared.Note, []shared.Communication, error) {
	var notes []models.NoteModel
	if err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at ASC").Find(&notes).Error; err != nil {
		return nil, nil, err
	}
	if !withComms {
		return models.NotesToDomain(notes), nil, nil
	}
	var comms []models.CommunicationModel
	if err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("occurred_at ASC").Find(&comms).Error; err != nil {
		return nil, nil, err
	}
	return models.NotesToDomain(notes), models.CommunicationsToDomain(comms), nil
}

// deleteActivity removes an owner's notes and communications
func deleteActivity(db *gorm.DB, ownerType string, ownerID uuid.UUID) error {
	if err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).Delete(&models.NoteModel{}).Error; err != nil {
		return err
	}
	return db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).Delete(&models.CommunicationModel{}).Error
}
