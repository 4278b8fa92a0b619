package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadealahmad/anonymous-messages/models"
)

func TestMessageInsert(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)

	msg, err := store.Insert("Why did you start the blog in the first place?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, msg.Status)
	assert.Regexp(t, pseudonymPattern, msg.SenderName)
	assert.NotZero(t, msg.ID)
}

func TestUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)
	msg := seedMessage(t, db, "body one for status tests", models.StatusPending, time.Time{})

	t.Run("invalid status rejected", func(t *testing.T) {
		err := store.UpdateStatus(msg.ID, "archived")
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown message", func(t *testing.T) {
		assert.ErrorIs(t, store.UpdateStatus(99999, models.StatusAnswered), ErrNotFound)
	})

	t.Run("transition and no-op", func(t *testing.T) {
		require.NoError(t, store.UpdateStatus(msg.ID, models.StatusFeatured))
		got, err := store.Get(msg.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFeatured, got.Status)

		// Same status again succeeds without touching the row.
		before := got.UpdatedAt
		require.NoError(t, store.UpdateStatus(msg.ID, models.StatusFeatured))
		got, err = store.Get(msg.ID)
		require.NoError(t, err)
		assert.Equal(t, before, got.UpdatedAt)
	})
}

func TestAssignCategory(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)
	cats := NewCategoryStore(db)
	msg := seedMessage(t, db, "body for category tests", models.StatusPending, time.Time{})

	cat, err := cats.Create("Writing", "")
	require.NoError(t, err)

	t.Run("unknown category rejected", func(t *testing.T) {
		bad := uint(4242)
		err := store.AssignCategory(msg.ID, &bad)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("set and clear", func(t *testing.T) {
		require.NoError(t, store.AssignCategory(msg.ID, &cat.ID))
		got, err := store.Get(msg.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, cat.ID, *got.CategoryID)

		require.NoError(t, store.AssignCategory(msg.ID, nil))
		got, err = store.Get(msg.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})
}

func TestAddOrUpdateResponse(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)

	t.Run("short response promotes pending to answered", func(t *testing.T) {
		msg := seedMessage(t, db, "a pending message waiting for an answer", models.StatusPending, time.Time{})
		resp, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypeShort, "Thanks for asking!", nil)
		require.NoError(t, err)
		require.NotNil(t, resp.ShortBody)
		assert.Equal(t, "Thanks for asking!", *resp.ShortBody)
		assert.Nil(t, resp.PostID)

		got, err := store.Get(msg.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAnswered, got.Status)
	})

	t.Run("featured message keeps its status", func(t *testing.T) {
		msg := seedMessage(t, db, "a featured message with a new answer", models.StatusFeatured, time.Time{})
		_, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypeShort, "Updated answer", nil)
		require.NoError(t, err)

		got, err := store.Get(msg.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFeatured, got.Status)
	})

	t.Run("upsert keeps a single row and switches type", func(t *testing.T) {
		msg := seedMessage(t, db, "a message answered twice over", models.StatusPending, time.Time{})
		post := seedPublishedPost(t, db, "Long Answer", "long-answer")

		first, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypeShort, "short take", nil)
		require.NoError(t, err)

		second, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypePost, "", &post.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Nil(t, second.ShortBody)
		require.NotNil(t, second.PostID)
		assert.Equal(t, post.ID, *second.PostID)

		var count int64
		require.NoError(t, db.Model(&models.Response{}).Where("message_id = ?", msg.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("empty short body rejected", func(t *testing.T) {
		msg := seedMessage(t, db, "a message that gets a blank answer", models.StatusPending, time.Time{})
		_, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypeShort, "   ", nil)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("draft post rejected", func(t *testing.T) {
		msg := seedMessage(t, db, "a message linked to an unpublished post", models.StatusPending, time.Time{})
		draft := &models.Post{Title: "Draft", Slug: "draft", Content: "wip", Status: models.PostStatusDraft}
		require.NoError(t, db.Create(draft).Error)

		_, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypePost, "", &draft.ID)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		msg := seedMessage(t, db, "a message with a bogus response type", models.StatusPending, time.Time{})
		_, err := store.AddOrUpdateResponse(msg.ID, "video", "x", nil)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestListOrderingAndPagination(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	oldFeatured := seedMessage(t, db, "oldest but featured message here", models.StatusFeatured, base)
	midAnswered := seedMessage(t, db, "middle answered message here", models.StatusAnswered, base.Add(time.Hour))
	newAnswered := seedMessage(t, db, "newest answered message here", models.StatusAnswered, base.Add(2*time.Hour))
	seedMessage(t, db, "pending message stays hidden", models.StatusPending, base.Add(3*time.Hour))

	publicFilter := ListFilter{Statuses: []string{models.StatusFeatured, models.StatusAnswered}}

	t.Run("featured first, then newest", func(t *testing.T) {
		msgs, err := store.List(publicFilter, 1, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, oldFeatured.ID, msgs[0].ID)
		assert.Equal(t, newAnswered.ID, msgs[1].ID)
		assert.Equal(t, midAnswered.ID, msgs[2].ID)
	})

	t.Run("has_more probes the next page", func(t *testing.T) {
		more, err := store.HasMore(publicFilter, 1, 2)
		require.NoError(t, err)
		assert.True(t, more)

		more, err = store.HasMore(publicFilter, 2, 2)
		require.NoError(t, err)
		assert.False(t, more)
	})

	t.Run("single status keeps plain recency order", func(t *testing.T) {
		msgs, err := store.List(ListFilter{Statuses: []string{models.StatusAnswered}}, 1, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, newAnswered.ID, msgs[0].ID)
	})

	t.Run("counts mirror the filter", func(t *testing.T) {
		n, err := store.Count(publicFilter)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = store.Count(ListFilter{Statuses: []string{models.StatusPending}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestListSearch(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)

	hit := seedMessage(t, db, "do you prefer mornings or evenings", models.StatusAnswered, time.Time{})
	miss := seedMessage(t, db, "what is your favorite color", models.StatusAnswered, time.Time{})
	_, err := store.AddOrUpdateResponse(miss.ID, models.ResponseTypeShort, "definitely mornings", nil)
	require.NoError(t, err)

	msgs, err := store.List(ListFilter{Search: "mornings"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	ids := []uint{msgs[0].ID, msgs[1].ID}
	assert.Contains(t, ids, hit.ID)
	assert.Contains(t, ids, miss.ID)
}

func TestDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)

	msg := seedMessage(t, db, "message scheduled for deletion", models.StatusAnswered, time.Time{})
	_, err := store.AddOrUpdateResponse(msg.ID, models.ResponseTypeShort, "soon gone", nil)
	require.NoError(t, err)

	require.NoError(t, store.Delete(msg.ID, nil))

	_, err = store.Get(msg.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Response{}).Where("message_id = ?", msg.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, store.Delete(msg.ID, nil), ErrNotFound)
}
