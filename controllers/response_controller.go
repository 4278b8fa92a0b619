package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// ResponseController manages the admin-authored answer attached to a message.
type ResponseController struct {
	store *services.MessageStore
}

func NewResponseController(db *gorm.DB) *ResponseController {
	return &ResponseController{store: services.NewMessageStore(db)}
}

// Upsert creates or replaces the response for a message. Saving a response
// on a pending message promotes it to answered.
func (r *ResponseController) Upsert(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}

	type request struct {
		Type      string `json:"type" binding:"required"`
		ShortBody string `json:"short_body"`
		PostID    *uint  `json:"post_id"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	resp, err := r.store.AddOrUpdateResponse(id, req.Type, utils.Sanitize(req.ShortBody), req.PostID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(questionCachePrefix)
	utils.Success(ctx, resp)
}

// Get returns the response for a message, 404 when none exists.
func (r *ResponseController) Get(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid message id")
		return
	}
	msg, err := r.store.Get(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if msg.Response == nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "message has no response")
		return
	}
	utils.Success(ctx, msg.Response)
}
