package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// questionCachePrefix groups public listing cache entries so admin-side
// changes can invalidate them wholesale.
const questionCachePrefix = "cache:questions:"

// QuestionController serves the public read-only view: answered and featured
// messages with their responses.
type QuestionController struct {
	store *services.MessageStore
	posts *services.PostStore
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{
		store: services.NewMessageStore(db),
		posts: services.NewPostStore(db, config.Get().BaseURL),
	}
}

// publicQuestion is the visitor-facing rendering of a message.
type publicQuestion struct {
	ID         uint              `json:"id"`
	SenderName string            `json:"sender_name"`
	Message    string            `json:"message"`
	Status     string            `json:"status"`
	Category   string            `json:"category,omitempty"`
	Date       string            `json:"date"`
	Response   *publicResponse   `json:"response,omitempty"`
	Images     []publicImageInfo `json:"images,omitempty"`
}

type publicResponse struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Title   string `json:"title,omitempty"`
}

type publicImageInfo struct {
	URL string `json:"url"`
}

// List returns answered and featured messages, featured first, newest first
// within each group. Results are cached per page.
func (q *QuestionController) List(ctx *gin.Context) {
	page, perPage := pagination(ctx, 10, 50)
	if perPage < 5 {
		perPage = 5
	}

	filter := services.ListFilter{
		Statuses: []string{models.StatusFeatured, models.StatusAnswered},
		Search:   strings.TrimSpace(ctx.Query("search")),
	}
	if id, ok := queryUint(ctx, "category_id"); ok {
		filter.CategoryID = &id
	}
	if id, ok := queryUint(ctx, "assigned_user_id"); ok {
		filter.AssignedUserID = &id
	}

	var catKey, userKey uint
	if filter.CategoryID != nil {
		catKey = *filter.CategoryID
	}
	if filter.AssignedUserID != nil {
		userKey = *filter.AssignedUserID
	}
	cacheKey := fmt.Sprintf("%sp%d:n%d:c%d:u%d:q%s",
		questionCachePrefix, page, perPage, catKey, userKey, filter.Search)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	msgs, err := q.store.List(filter, page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to retrieve questions")
		return
	}
	hasMore, err := q.store.HasMore(filter, page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to retrieve questions")
		return
	}

	items := make([]publicQuestion, 0, len(msgs))
	for i := range msgs {
		items = append(items, q.render(&msgs[i]))
	}

	payload := gin.H{
		"items": items,
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"has_more": hasMore,
		},
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

func (q *QuestionController) render(msg *models.Message) publicQuestion {
	item := publicQuestion{
		ID:         msg.ID,
		SenderName: msg.SenderName,
		Message:    msg.Body,
		Status:     msg.Status,
		Date:       msg.CreatedAt.Format("January 2, 2006"),
	}
	if msg.Category != nil {
		item.Category = msg.Category.Name
	}
	if r := msg.Response; r != nil {
		pr := &publicResponse{Type: r.Type}
		switch {
		case r.Type == models.ResponseTypeShort && r.ShortBody != nil:
			pr.Content = *r.ShortBody
		case r.Type == models.ResponseTypePost && r.Post != nil:
			pr.Title = r.Post.Title
			pr.PostURL = q.posts.Permalink(r.Post)
		}
		item.Response = pr
	}
	for _, att := range msg.Attachments {
		item.Images = append(item.Images, publicImageInfo{URL: "/" + att.FilePath})
	}
	return item
}
