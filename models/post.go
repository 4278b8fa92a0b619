package models

import "time"

// Post statuses. Only published posts may back a "post" response or be
// served publicly.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post is a separately-managed content item that a response can link to
// instead of carrying inline text.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt   string    `gorm:"size:512" json:"excerpt"`
	Content   string    `gorm:"type:text" json:"content"`
	Status    string    `gorm:"size:16;not null;default:'draft';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Published reports whether the post may be referenced by responses and
// rendered publicly.
func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
