package services

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
)

// CategoryStore manages admin-defined categories.
type CategoryStore struct {
	db *gorm.DB
}

// NewCategoryStore creates a CategoryStore on the given database handle.
func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// ListAll returns every category ordered by name.
func (s *CategoryStore) ListAll() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create inserts a category with a slug derived from the name. A duplicate
// slug is reported as a validation error.
func (s *CategoryStore) Create(name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("category name is required")
	}
	cat := models.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
	}
	if err := s.db.Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("a category with this name already exists")
		}
		return nil, err
	}
	return &cat, nil
}

// Delete removes a category. Messages referencing it keep existing with
// their category cleared; deletion never cascades to messages.
func (s *CategoryStore) Delete(id uint) error {
	var cat models.Category
	if err := s.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimDash = regexp.MustCompile(`^-+|-+$`)
)

// Slugify lowercases the name and collapses everything outside [a-z0-9]
// into single dashes.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = slugTrimDash.ReplaceAllString(slug, "")
	return slug
}
