package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	t.Run("classifies well-known codes", func(t *testing.T) {
		assert.Equal(t, KindNotFound, ErrNotFound.Kind)
		assert.Equal(t, KindConflict, ErrInsufficientStock.Kind)
		assert.Equal(t, KindAuthorization, ErrForbidden.Kind)
		assert.Equal(t, KindValidation, NewDomainError("INVALID_NAME", "bad").Kind)
	})

	t.Run("matches sentinels by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("reserve: %w", NewDomainError("INSUFFICIENT_STOCK", "only 3 left"))

		assert.True(t, errors.Is(err, ErrInsufficientStock))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsKind(err, KindConflict))
	})

	t.Run("field is reported in the message", func(t *testing.T) {
		err := ErrInvalidInput.WithField("email")

		assert.Equal(t, "email: Invalid input provided", err.Error())
		assert.Empty(t, ErrInvalidInput.Field)
	})

	t.Run("kind of a plain error is empty", func(t *testing.T) {
		assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	})
}

func TestFormatSequenceNumber(t *testing.T) {
	at := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "INQ2024010007", FormatSequenceNumber("INQ", at, 7))
	assert.Equal(t, "ORD2024011234", FormatSequenceNumber("ORD", at, 1234))
	assert.Equal(t, "INQ202401", SequencePeriod("INQ", at))

	start, end := MonthRange(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestAddress(t *testing.T) {
	t.Run("full address skips blank parts", func(t *testing.T) {
		a := Address{Street: "1 High St", City: " ", PostalCode: "560001", Country: "India"}
		assert.Equal(t, "1 High St, 560001, India", a.Full())
		assert.False(t, a.IsEmpty())
		assert.True(t, Address{}.IsEmpty())
	})

	t.Run("fill empty never overwrites", func(t *testing.T) {
		a := Address{City: "Pune"}
		merged := a.FillEmpty(Address{City: "Mumbai", State: "MH", Country: "India"})

		assert.Equal(t, "Pune", merged.City)
		assert.Equal(t, "MH", merged.State)
		assert.Equal(t, "India", merged.Country)
	})
}

func TestNewNote(t *testing.T) {
	author := uuid.New()

	t.Run("creates note", func(t *testing.T) {
		note, err := NewNote("  called back  ", &author, true)

		require.NoError(t, err)
		assert.Equal(t, "called back", note.Content)
		assert.True(t, note.IsInternal)
		assert.Equal(t, &author, note.AuthorID)
		assert.False(t, note.CreatedAt.IsZero())
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := NewNote("   ", &author, false)

		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
	})
}

func TestNewCommunication(t *testing.T) {
	t.Run("creates communication", func(t *testing.T) {
		c, err := NewCommunication(CommunicationInput{
			Type:      CommunicationPhone,
			Direction: DirectionOutbound,
			Content:   "Discussed sizes",
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, CommunicationPhone, c.Type)
		assert.False(t, c.Date.IsZero())
	})

	t.Run("rejects unknown direction", func(t *testing.T) {
		_, err := NewCommunication(CommunicationInput{
			Type:      CommunicationEmail,
			Direction: "sideways",
			Content:   "hi",
		}, nil)

		require.Error(t, err)
		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "direction", de.Field)
	})
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 20, Filter{Page: 2, PageSize: 20}.Offset())
}
