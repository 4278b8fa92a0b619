package models

import "time"

// Attachment records an image uploaded alongside a message. FileName keeps
// the visitor-supplied name for display; FilePath is the uuid-renamed file
// on local disk. Rows and files are removed together with the message,
// best-effort.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	FileSize  int64     `gorm:"not null" json:"file_size"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
