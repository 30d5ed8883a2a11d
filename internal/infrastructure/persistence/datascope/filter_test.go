package datascope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type record struct {
	ID         uint
	AssignedTo *uuid.UUID `gorm:"type:uuid"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid"`
}

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&record{}))
	return db
}

func TestVisible(t *testing.T) {
	db := setupDB(t)
	me, other := uuid.New(), uuid.New()

	require.NoError(t, db.Create([]record{
		{ID: 1, AssignedTo: &me},
		{ID: 2, AssignedTo: &other},
		{ID: 3, AssignedTo: &other, CreatedBy: &me},
		{ID: 4},
	}).Error)

	t.Run("with creator column", func(t *testing.T) {
		var got []record
		require.NoError(t, db.Scopes(Visible(me, WithCreator)).Order("id").Find(&got).Error)
		ids := []uint{}
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []uint{1, 3, 4}, ids)
	})

	t.Run("assignee only", func(t *testing.T) {
		var got []record
		require.NoError(t, db.Scopes(Visible(me, AssigneeOnly)).Order("id").Find(&got).Error)
		assert.Len(t, got, 2)
	})

	t.Run("nil user sees nothing", func(t *testing.T) {
		var n int64
		require.NoError(t, db.Model(&record{}).Scopes(Visible(uuid.Nil, WithCreator)).Count(&n).Error)
		assert.Zero(t, n)
	})
}

func TestFromFilter(t *testing.T) {
	id := uuid.New()

	got, ok := FromFilter(id)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok = FromFilter(id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = FromFilter("nope")
	assert.False(t, ok)
	_, ok = FromFilter(42)
	assert.False(t, ok)
}
