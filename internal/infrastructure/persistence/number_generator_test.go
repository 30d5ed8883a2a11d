package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormNumberGenerator_Sequential(t *testing.T) {
	ctx := context.Background()
	gen := NewInquiryNumberGenerator(setupTestDB(t), "INQ")
	may := time.Date(2024, time.May, 14, 10, 0, 0, 0, time.UTC)

	first, err := gen.Next(ctx, may)
	require.NoError(t, err)
	second, err := gen.Next(ctx, may)
	require.NoError(t, err)
	june, err := gen.Next(ctx, may.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, "INQ2024050001", first)
	assert.Equal(t, "INQ2024050002", second)
	assert.Equal(t, "INQ2024060001", june)
}

func TestGormNumberGenerator_SeedsFromExistingRows(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormInquiryRepository(db)
	for _, n := range []string{"INQ2024050001", "INQ2024050007"} {
		require.NoError(t, repo.Create(ctx, newTestInquiry(t, n, "seed@example.com")))
	}

	gen := NewInquiryNumberGenerator(db, "INQ")
	next, err := gen.Next(ctx, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "INQ2024050008", next)
}

func TestGormNumberGenerator_ResyncCatchesUpWithStoredNumbers(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormInquiryRepository(db)
	gen := NewInquiryNumberGenerator(db, "INQ")
	may := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)

	first, err := gen.Next(ctx, may)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, newTestInquiry(t, first, "a@example.com")))
	// rows written around the counter leave it behind
	for _, n := range []string{"INQ2024050002", "INQ2024050003"} {
		require.NoError(t, repo.Create(ctx, newTestInquiry(t, n, "b@example.com")))
	}

	stale, err := gen.Next(ctx, may)
	require.NoError(t, err)
	assert.Equal(t, "INQ2024050002", stale)

	require.NoError(t, gen.Resync(ctx, may))
	next, err := gen.Next(ctx, may)
	require.NoError(t, err)
	assert.Equal(t, "INQ2024050004", next)

	// a counter already ahead is left alone
	require.NoError(t, gen.Resync(ctx, may))
	next, err = gen.Next(ctx, may)
	require.NoError(t, err)
	assert.Equal(t, "INQ2024050005", next)
}

func TestGormNumberGenerator_PrefixesAreIndependent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	at := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)

	inq, err := NewInquiryNumberGenerator(db, "INQ").Next(ctx, at)
	require.NoError(t, err)
	ord, err := NewOrderNumberGenerator(db, "ORD").Next(ctx, at)
	require.NoError(t, err)

	assert.Equal(t, "INQ2024010001", inq)
	assert.Equal(t, "ORD2024010001", ord)
}

func TestGormNumberGenerator_ConcurrentCallsAreUnique(t *testing.T) {
	ctx := context.Background()
	gen := NewOrderNumberGenerator(setupTestDB(t), "ORD")
	at := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := gen.Next(ctx, at)
			if assert.NoError(t, err) {
				numbers <- n
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, workers)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["ORD2024030020"])
}
