package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

func TestGormInquiryRepository_CreateAndSave(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInquiryRepository(setupTestDB(t))

	i := newTestInquiry(t, "INQ2024050001", "Jane@Example.com")
	require.NoError(t, repo.Create(ctx, i))

	found, err := repo.FindByNumber(ctx, "INQ2024050001")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", found.Email)
	assert.Equal(t, "Winter blazers", found.Requirements.Description)
	assert.Equal(t, sales.InquiryStatusNew, found.Status)

	_, err = found.AddNote("called back", nil, false)
	require.NoError(t, err)
	require.NoError(t, found.UpdateStatus(sales.InquiryStatusContacted, nil, ""))
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.InquiryStatusContacted, reloaded.Status)
	require.Len(t, reloaded.Notes, 2)
	assert.Equal(t, "called back", reloaded.Notes[0].Content)
	assert.False(t, reloaded.Notes[0].IsInternal)
	assert.True(t, reloaded.Notes[1].IsInternal)
	assert.Contains(t, reloaded.Notes[1].Content, "new to contacted")

	stale := *found
	stale.Version--
	assert.ErrorIs(t, repo.Save(ctx, &stale), shared.ErrConcurrencyConflict)

	assert.ErrorIs(t, repo.Create(ctx, newTestInquiry(t, "INQ2024050001", "b@example.com")), shared.ErrDuplicateNumber)
}

func TestGormInquiryRepository_FindDueFollowUps(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInquiryRepository(setupTestDB(t))
	now := time.Now().UTC()

	due := newTestInquiry(t, "INQ2024050001", "a@example.com")
	require.NoError(t, due.ScheduleFollowUp(now.Add(-time.Hour), "call"))
	later := newTestInquiry(t, "INQ2024050002", "b@example.com")
	require.NoError(t, later.ScheduleFollowUp(now.Add(24*time.Hour), ""))
	lost := newTestInquiry(t, "INQ2024050003", "c@example.com")
	require.NoError(t, lost.ScheduleFollowUp(now.Add(-time.Hour), ""))
	require.NoError(t, lost.UpdateStatus(sales.InquiryStatusLost, nil, "went elsewhere"))
	for _, i := range []*sales.Inquiry{due, later, lost} {
		require.NoError(t, repo.Create(ctx, i))
	}

	got, err := repo.FindDueFollowUps(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestGormInquiryRepository_FindUnstampedByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInquiryRepository(setupTestDB(t))

	open := newTestInquiry(t, "INQ2024050001", "lead@example.com")
	stamped := newTestInquiry(t, "INQ2024050002", "lead@example.com")
	require.NoError(t, stamped.MarkConverted(uuid.New(), nil))
	other := newTestInquiry(t, "INQ2024050003", "other@example.com")
	for _, i := range []*sales.Inquiry{open, stamped, other} {
		require.NoError(t, repo.Create(ctx, i))
	}

	got, err := repo.FindUnstampedByEmail(ctx, "LEAD@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestGormInquiryRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInquiryRepository(setupTestDB(t))
	staff := uuid.New()

	mine := newTestInquiry(t, "INQ2024050001", "a@example.com")
	require.NoError(t, mine.AssignTo(staff, nil, ""))
	theirs := newTestInquiry(t, "INQ2024050002", "b@example.com")
	require.NoError(t, theirs.AssignTo(uuid.New(), nil, ""))
	unassigned := newTestInquiry(t, "INQ2024050003", "c@example.com")
	for _, i := range []*sales.Inquiry{mine, theirs, unassigned} {
		require.NoError(t, repo.Create(ctx, i))
	}

	filter := shared.DefaultFilter()
	filter.Filters["visible_to"] = staff
	got, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	filter = shared.DefaultFilter()
	filter.Search = "inq2024050002"
	n, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, theirs.ID))
	_, err = repo.FindByID(ctx, theirs.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
