package models

import "time"

// Response types. A short response carries inline text; a post response
// links to a published Post.
const (
	ResponseTypeShort = "short"
	ResponseTypePost  = "post"
)

// Response is the admin-authored answer to a message. At most one response
// exists per message, enforced by upsert logic keyed on MessageID. Exactly
// one of ShortBody/PostID is populated according to Type; changing the type
// clears the other field.
type Response struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	ShortBody *string   `gorm:"type:text" json:"short_body,omitempty"`
	PostID    *uint     `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post *Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"post,omitempty"`
}
