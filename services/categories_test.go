package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadealahmad/anonymous-messages/models"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Writing":            "writing",
		"Life & Work":        "life-work",
		"  Spaced   Out  ":   "spaced-out",
		"Déjà Vu":            "d-j-vu",
		"already-slugged-99": "already-slugged-99",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestCategoryCreate(t *testing.T) {
	db := openTestDB(t)
	store := NewCategoryStore(db)

	cat, err := store.Create("Life & Work", "everything else")
	require.NoError(t, err)
	assert.Equal(t, "life-work", cat.Slug)

	t.Run("duplicate slug rejected", func(t *testing.T) {
		_, err := store.Create("Life & Work", "")
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := store.Create("   ", "")
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestCategoryDeleteClearsMessages(t *testing.T) {
	db := openTestDB(t)
	store := NewCategoryStore(db)
	messages := NewMessageStore(db)

	cat, err := store.Create("Questions", "")
	require.NoError(t, err)
	msg := seedMessage(t, db, "a categorized message that should survive", models.StatusPending, time.Time{})
	require.NoError(t, messages.AssignCategory(msg.ID, &cat.ID))

	require.NoError(t, store.Delete(cat.ID))

	got, err := messages.Get(msg.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	assert.ErrorIs(t, store.Delete(cat.ID), ErrNotFound)
}
