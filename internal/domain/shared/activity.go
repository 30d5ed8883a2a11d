package shared

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNoteLength          = 2000
	maxCommunicationLength = 5000
)

// Note is an append-only remark attached to a customer, inquiry or order
type Note struct {
	ID         uuid.UUID  `json:"id"`
	Content    string     `json:"content"`
	AuthorID   *uuid.UUID `json:"author_id,omitempty"`
	IsInternal bool       `json:"is_internal"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewNote validates content and stamps the note with the current time
func NewNote(content string, authorID *uuid.UUID, internal bool) (Note, error) {
	content = strings.TrimSpace(content)
	if err := ValidateLength("content", content, 1, maxNoteLength); err != nil {
		return Note{}, err
	}
	return Note{
		ID:         uuid.New(),
		Content:    content,
		AuthorID:   authorID,
		IsInternal: internal,
		CreatedAt:  time.Now(),
	}, nil
}

// CommunicationType is the channel a contact happened on
type CommunicationType string

const (
	CommunicationEmail    CommunicationType = "email"
	CommunicationPhone    CommunicationType = "phone"
	CommunicationMeeting  CommunicationType = "meeting"
	CommunicationWhatsApp CommunicationType = "whatsapp"
	CommunicationSMS      CommunicationType = "sms"
	CommunicationOther    CommunicationType = "other"
)

// IsValid checks if the communication type is valid
func (t CommunicationType) IsValid() bool {
	switch t {
	case CommunicationEmail, CommunicationPhone, CommunicationMeeting,
		CommunicationWhatsApp, CommunicationSMS, CommunicationOther:
		return true
	}
	return false
}

// Direction tells whether we or the other party initiated a contact
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// CommunicationInput carries the caller-supplied fields of a communication
type CommunicationInput struct {
	Type       CommunicationType
	Direction  Direction
	Subject    string
	Content    string
	Outcome    string
	NextAction string
}

// Communication is an append-only record of a contact with a customer or lead
type Communication struct {
	ID         uuid.UUID         `json:"id"`
	Type       CommunicationType `json:"type"`
	Direction  Direction         `json:"direction"`
	Subject    string            `json:"subject,omitempty"`
	Content    string            `json:"content"`
	Outcome    string            `json:"outcome,omitempty"`
	NextAction string            `json:"next_action,omitempty"`
	AuthorID   *uuid.UUID        `json:"author_id,omitempty"`
	Date       time.Time         `json:"date"`
}

// NewCommunication validates input and stamps the record with the current time
func NewCommunication(in CommunicationInput, authorID *uuid.UUID) (Communication, error) {
	if !in.Type.IsValid() {
		return Communication{}, NewValidationError("type", "INVALID_COMMUNICATION_TYPE", "Invalid communication type")
	}
	if !in.Direction.IsValid() {
		return Communication{}, NewValidationError("direction", "INVALID_DIRECTION", "Direction must be 'inbound' or 'outbound'")
	}
	content := strings.TrimSpace(in.Content)
	if err := ValidateLength("content", content, 1, maxCommunicationLength); err != nil {
		return Communication{}, err
	}
	if err := ValidateLength("subject", in.Subject, 0, 200); err != nil {
		return Communication{}, err
	}
	return Communication{
		ID:         uuid.New(),
		Type:       in.Type,
		Direction:  in.Direction,
		Subject:    strings.TrimSpace(in.Subject),
		Content:    content,
		Outcome:    strings.TrimSpace(in.Outcome),
		NextAction: strings.TrimSpace(in.NextAction),
		AuthorID:   authorID,
		Date:       time.Now(),
	}, nil
}

// UserRef returns a pointer to id, or nil for the zero UUID
func UserRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
