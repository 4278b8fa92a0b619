package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
)

// PostStore manages the content items that "post" responses link to.
type PostStore struct {
	db      *gorm.DB
	baseURL string
}

// NewPostStore creates a PostStore; baseURL is used to build permalinks.
func NewPostStore(db *gorm.DB, baseURL string) *PostStore {
	return &PostStore{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// Permalink returns the public URL for a post.
func (s *PostStore) Permalink(p *models.Post) string {
	return s.baseURL + "/posts/" + p.Slug
}

// GetPublishedBySlug looks up a published post for public rendering.
func (s *PostStore) GetPublishedBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.Where("slug = ? AND status = ?", slug, models.PostStatusPublished).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts ordered newest first, optionally only published ones.
func (s *PostStore) List(publishedOnly bool, page, perPage int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	q := s.db.Model(&models.Post{}).Order("created_at DESC")
	if publishedOnly {
		q = q.Where("status = ?", models.PostStatusPublished)
	}
	var posts []models.Post
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create inserts a post. The slug derives from the title when not given.
func (s *PostStore) Create(title, slug, excerpt, content, status string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	if status == "" {
		status = models.PostStatusDraft
	}
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		return nil, NewValidationError("invalid post status")
	}
	if slug == "" {
		slug = Slugify(title)
	}
	post := models.Post{
		Title:   title,
		Slug:    slug,
		Excerpt: excerpt,
		Content: content,
		Status:  status,
	}
	if err := s.db.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("a post with this slug already exists")
		}
		return nil, err
	}
	return &post, nil
}
