package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// UserStore manages reviewer accounts and authentication.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore on the given database handle.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Authenticate checks credentials and returns the matching user.
func (s *UserStore) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// Create inserts a reviewer account.
func (s *UserStore) Create(username, email, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, NewValidationError("password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("username already taken")
		}
		return nil, err
	}
	return &user, nil
}

// Get loads a user by ID.
func (s *UserStore) Get(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user ID refers to a live account.
func (s *UserStore) Exists(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all reviewer accounts, for the assignment dropdown.
func (s *UserStore) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// EnsureSeedAdmin creates the configured admin account when the users table
// is empty, so a fresh deployment can log in.
func (s *UserStore) EnsureSeedAdmin(username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.Create(username, email, password, true)
	return err
}
