package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Owner types for notes and communications
const (
	OwnerCustomer = "customer"
	OwnerInquiry  = "inquiry"
	OwnerOrder    = "order"
)

// NoteModel is an append-only note attached to a customer, inquiry or order
type NoteModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerType  string     `gorm:"type:varchar(20);not null;index:idx_notes_owner,priority:1"`
	OwnerID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notes_owner,priority:2"`
	Content    string     `gorm:"type:text;not null"`
	AuthorID   *uuid.UUID `gorm:"type:uuid"`
	IsInternal bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NoteModel) TableName() string {
	return "notes"
}

// NoteModelsFromDomain converts notes for an owner
func NoteModelsFromDomain(ownerType string, ownerID uuid.UUID, notes []shared.Note) []NoteModel {
	out := make([]NoteModel, len(notes))
	for i, n := range notes {
		out[i] = NoteModel{
			ID:         n.ID,
			OwnerType:  ownerType,
			OwnerID:    ownerID,
			Content:    n.Content,
			AuthorID:   n.AuthorID,
			IsInternal: n.IsInternal,
			CreatedAt:  n.CreatedAt,
		}
	}
	return out
}

// ToDomain converts the persistence model to a domain note
func (m NoteModel) ToDomain() shared.Note {
	return shared.Note{
		ID:         m.ID,
		Content:    m.Content,
		AuthorID:   m.AuthorID,
		IsInternal: m.IsInternal,
		CreatedAt:  m.CreatedAt,
	}
}

// CommunicationModel is an append-only contact record
type CommunicationModel struct {
	ID         uuid.UUID                `gorm:"type:uuid;primaryKey"`
	OwnerType  string                   `gorm:"type:varchar(20);not null;index:idx_communications_owner,priority:1"`
	OwnerID    uuid.UUID                `gorm:"type:uuid;not null;index:idx_communications_owner,priority:2"`
	Type       shared.CommunicationType `gorm:"type:varchar(20);not null"`
	Direction  shared.Direction         `gorm:"type:varchar(10);not null"`
	Subject    string                   `gorm:"type:varchar(200)"`
	Content    string                   `gorm:"type:text;not null"`
	Outcome    string                   `gorm:"type:text"`
	NextAction string                   `gorm:"type:text"`
	AuthorID   *uuid.UUID               `gorm:"type:uuid"`
	Date       time.Time                `gorm:"column:occurred_at;not null"`
}

// TableName returns the table name for GORM
func (CommunicationModel) TableName() string {
	return "communications"
}

// CommunicationModelsFromDomain converts communications for an owner
func CommunicationModelsFromDomain(ownerType string, ownerID uuid.UUID, comms []shared.Communication) []CommunicationModel {
	out := make([]CommunicationModel, len(comms))
	for i, c := range comms {
		out[i] = CommunicationModel{
			ID:         c.ID,
			OwnerType:  ownerType,
			OwnerID:    ownerID,
			Type:       c.Type,
			Direction:  c.Direction,
			Subject:    c.Subject,
			Content:    c.Content,
			Outcome:    c.Outcome,
			NextAction: c.NextAction,
			AuthorID:   c.AuthorID,
			Date:       c.Date,
		}
	}
	return out
}

// ToDomain converts the persistence model to a domain communication
func (m CommunicationModel) ToDomain() shared.Communication {
	return shared.Communication{
		ID:         m.ID,
		Type:       m.Type,
		Direction:  m.Direction,
		Subject:    m.Subject,
		Content:    m.Content,
		Outcome:    m.Outcome,
		NextAction: m.NextAction,
		AuthorID:   m.AuthorID,
		Date:       m.Date,
	}
}

// NotesToDomain converts a slice of note models
func NotesToDomain(ms []NoteModel) []shared.Note {
	out := make([]shared.Note, len(ms))
	for i, m := range ms {
		out[i] = m.ToDomain()
	}
	return out
}

// CommunicationsToDomain converts a slice of communication models
func CommunicationsToDomain(ms []CommunicationModel) []shared.Communication {
	out := make([]shared.Communication, len(ms))
	for i, m := range ms {
		out[i] = m.ToDomain()
	}
	return out
}
