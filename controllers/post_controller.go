package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// PostController serves the long-form answer posts that responses can link to.
type PostController struct {
	store *services.PostStore
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{store: services.NewPostStore(db, config.Get().BaseURL)}
}

// GetBySlug returns a published post. Drafts are invisible here.
func (p *PostController) GetBySlug(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	if slug == "" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "missing post slug")
		return
	}
	post, err := p.store.GetPublishedBySlug(slug)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// List returns posts for the admin picker, drafts included.
func (p *PostController) List(ctx *gin.Context) {
	page, perPage := pagination(ctx, 20, 100)
	posts, err := p.store.List(false, page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to retrieve posts")
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// Create adds a post. Content passes through the UGC sanitizer.
func (p *PostController) Create(ctx *gin.Context) {
	type request struct {
		Title   string `json:"title" binding:"required,min=1"`
		Slug    string `json:"slug"`
		Excerpt string `json:"excerpt"`
		Content string `json:"content" binding:"required"`
		Status  string `json:"status"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	if req.Slug == "" {
		req.Slug = services.Slugify(req.Title)
	}
	post, err := p.store.Create(req.Title, req.Slug, req.Excerpt, utils.Sanitize(req.Content), req.Status)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", post)
}
