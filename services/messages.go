package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
)

// ListFilter selects messages for listing, counting, and export. Zero
// values mean "no constraint".
type ListFilter struct {
	Statuses       []string
	CategoryID     *uint
	AssignedUserID *uint
	Search         string
}

// MessageStore implements the message lifecycle: insertion, moderation
// state changes, the response upsert, and the shared filter/list/count
// predicate used by admin views, public views, and export alike.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a MessageStore on the given database handle.
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// DB exposes the underlying handle for collaborators built on the same
// connection (upload store, user store).
func (s *MessageStore) DB() *gorm.DB { return s.db }

// Insert persists a new pending message with a freshly generated pseudonym.
func (s *MessageStore) Insert(body string, categoryID, assignedUserID *uint) (*models.Message, error) {
	msg := models.Message{
		Body:           body,
		SenderName:     NewPseudonym(),
		CategoryID:     categoryID,
		AssignedUserID: assignedUserID,
		Status:         models.StatusPending,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Get loads a message with its response, category, and attachments.
func (s *MessageStore) Get(id uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.
		Preload("Response").
		Preload("Response.Post").
		Preload("Category").
		Preload("Attachments").
		First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// applyFilter builds the shared WHERE clause. Search is a case-insensitive
// substring match over the body, the pseudonym, and the response text,
// ORed together, which requires joining the responses table.
func (s *MessageStore) applyFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	if len(f.Statuses) == 1 {
		q = q.Where("messages.status = ?", f.Statuses[0])
	} else if len(f.Statuses) > 1 {
		q = q.Where("messages.status IN ?", f.Statuses)
	}
	if f.CategoryID != nil {
		q = q.Where("messages.category_id = ?", *f.CategoryID)
	}
	if f.AssignedUserID != nil {
		q = q.Where("messages.assigned_user_id = ?", *f.AssignedUserID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		term := "%" + search + "%"
		q = q.Joins("LEFT JOIN responses ON responses.message_id = messages.id").
			Where("messages.body LIKE ? OR messages.sender_name LIKE ? OR responses.short_body LIKE ?", term, term, term)
	}
	return q
}

// List returns one page of messages matching the filter. When the filter
// includes the featured status, featured messages sort before the rest;
// created_at descending breaks ties and orders everything else.
func (s *MessageStore) List(f ListFilter, page, perPage int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	q := s.applyFilter(s.db.Model(&models.Message{}), f)

	order := "messages.created_at DESC"
	if containsStatus(f.Statuses, models.StatusFeatured) {
		order = "messages.status = 'featured' DESC, messages.created_at DESC"
	}

	var msgs []models.Message
	err := q.
		Preload("Response").
		Preload("Response.Post").
		Preload("Category").
		Preload("Attachments").
		Order(order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// HasMore probes the page after the given one instead of counting, which
// is cheaper and good enough for "load more" pagination.
func (s *MessageStore) HasMore(f ListFilter, page, perPage int) (bool, error) {
	next, err := s.List(f, page+1, perPage)
	if err != nil {
		return false, err
	}
	return len(next) > 0, nil
}

// Count mirrors the List predicate for admin tab badges.
func (s *MessageStore) Count(f ListFilter) (int64, error) {
	var total int64
	err := s.applyFilter(s.db.Model(&models.Message{}), f).Count(&total).Error
	return total, err
}

// UpdateStatus sets a message's status. Any status may be set from any
// other; setting the current status is a no-op that still succeeds.
func (s *MessageStore) UpdateStatus(id uint, status string) error {
	if !models.ValidStatus(status) {
		return NewValidationError("invalid status")
	}
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if msg.Status == status {
		return nil
	}
	return s.db.Model(&msg).Update("status", status).Error
}

// AssignCategory sets or clears a message's category. A non-nil category
// must exist.
func (s *MessageStore) AssignCategory(id uint, categoryID *uint) error {
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if categoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return NewValidationError("invalid category")
		}
	}
	return s.db.Model(&msg).Update("category_id", categoryID).Error
}

// AddOrUpdateResponse attaches the admin's answer to a message, updating in
// place when one already exists. Exactly one payload field is kept per the
// declared type; the other is cleared. A pending message is promoted to
// answered; answered and featured stay as they are.
func (s *MessageStore) AddOrUpdateResponse(messageID uint, responseType, shortBody string, postID *uint) (*models.Response, error) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch responseType {
	case models.ResponseTypeShort:
		if strings.TrimSpace(shortBody) == "" {
			return nil, NewValidationError("short response cannot be empty")
		}
		postID = nil
	case models.ResponseTypePost:
		if postID == nil {
			return nil, NewValidationError("invalid post")
		}
		var post models.Post
		if err := s.db.First(&post, *postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("invalid post")
			}
			return nil, err
		}
		if !post.Published() {
			return nil, NewValidationError("invalid post")
		}
		shortBody = ""
	default:
		return nil, NewValidationError("invalid response type")
	}

	var resp models.Response
	err := s.db.Where("message_id = ?", messageID).First(&resp).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp = models.Response{MessageID: messageID}
	case err != nil:
		return nil, err
	}

	resp.Type = responseType
	if responseType == models.ResponseTypeShort {
		resp.ShortBody = &shortBody
		resp.PostID = nil
	} else {
		resp.ShortBody = nil
		resp.PostID = postID
	}
	if err := s.db.Save(&resp).Error; err != nil {
		return nil, err
	}

	if msg.Status == models.StatusPending {
		if err := s.db.Model(&msg).Update("status", models.StatusAnswered).Error; err != nil {
			return nil, err
		}
	}
	return &resp, nil
}

// Delete removes a message together with its response and attachment rows
// in one transaction, then removes the attachment files best-effort via the
// upload store.
func (s *MessageStore) Delete(id uint, uploads *UploadStore) error {
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if uploads != nil {
		if err := uploads.DeleteForMessage(id); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
