package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/middleware"
	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// MessageController is the reviewer-facing triage surface.
type MessageController struct {
	store   *services.MessageStore
	uploads *services.UploadStore
}

func NewMessageController(db *gorm.DB, uploads *services.UploadStore) *MessageController {
	return &MessageController{store: services.NewMessageStore(db), uploads: uploads}
}

// listFilter builds the triage filter from query params. Reviewers without
// the admin flag are pinned to their own assignments.
func (m *MessageController) listFilter(ctx *gin.Context) services.ListFilter {
	var f services.ListFilter
	if v := strings.TrimSpace(ctx.Query("status")); v != "" {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if models.ValidStatus(s) {
				f.Statuses = append(f.Statuses, s)
			}
		}
	}
	if id, ok := queryUint(ctx, "category_id"); ok {
		f.CategoryID = &id
	}
	if id, ok := queryUint(ctx, "assigned_user_id"); ok {
		f.AssignedUserID = &id
	}
	f.Search = strings.TrimSpace(ctx.Query("search"))

	if !ctx.GetBool(middleware.ContextIsAdminKey) {
		own := ctx.GetUint(middleware.ContextUserIDKey)
		f.AssignedUserID = &own
	}
	return f
}

// List returns messages for triage, paginated.
func (m *MessageController) List(ctx *gin.Context) {
	page, perPage := pagination(ctx, 20, 100)
	filter := m.listFilter(ctx)

	msgs, err := m.store.List(filter, page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to retrieve messages")
		return
	}
	hasMore, err := m.store.HasMore(filter, page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to retrieve messages")
		return
	}

	utils.Success(ctx, gin.H{
		"items": msgs,
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"has_more": hasMore,
		},
	})
}

// Counts returns per-status totals for the triage sidebar.
func (m *MessageController) Counts(ctx *gin.Context) {
	base := m.listFilter(ctx)
	counts := gin.H{}
	for _, status := range []string{models.StatusPending, models.StatusAnswered, models.StatusFeatured} {
		f := base
		f.Statuses = []string{status}
		n, err := m.store.Count(f)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to count messages")
			return
		}
		counts[status] = n
	}
	utils.Success(ctx, counts)
}

// Get returns one message with its response, category and attachments.
func (m *MessageController) Get(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}
	msg, err := m.store.Get(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, msg)
}

// UpdateStatus moves a message between pending, answered and featured.
func (m *MessageController) UpdateStatus(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}

	type request struct {
		Status string `json:"status" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	if err := m.store.UpdateStatus(id, req.Status); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(questionCachePrefix)
	utils.Success(ctx, gin.H{"id": id, "status": req.Status})
}

// AssignCategory sets or clears a message's category.
func (m *MessageController) AssignCategory(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}

	type request struct {
		CategoryID *uint `json:"category_id"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	if err := m.store.AssignCategory(id, req.CategoryID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(questionCachePrefix)
	utils.Success(ctx, gin.H{"id": id, "category_id": req.CategoryID})
}

// Delete removes a message, its response and any stored attachments.
func (m *MessageController) Delete(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}
	if err := m.store.Delete(id, m.uploads); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(questionCachePrefix)
	utils.Success(ctx, gin.H{"id": id, "deleted": true})
}
