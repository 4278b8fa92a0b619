package models

import "time"

// Message status values. Transitions are admin-driven and unordered: any
// status may be set to any other, and setting the current status is a no-op.
const (
	StatusPending  = "pending"
	StatusAnswered = "answered"
	StatusFeatured = "featured"
)

// ValidStatus reports whether s is one of the known message statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusAnswered || s == StatusFeatured
}

// Message is a single anonymous submission. The sender name is generated
// server-side and is purely cosmetic; nothing ties a message to a visitor.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Body           string    `gorm:"type:text;not null" json:"message"`
	SenderName     string    `gorm:"size:64;not null" json:"sender_name"`
	CategoryID     *uint     `gorm:"index" json:"category_id"`
	AssignedUserID *uint     `gorm:"index" json:"assigned_user_id"`
	Status         string    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Category    *Category    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Response    *Response    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"response,omitempty"`
	Attachments []Attachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments,omitempty"`
}
