package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
)

// UploadStore validates and persists images attached to submissions.
// Per-file failures are collected, not fatal: a message with one bad image
// out of three still keeps the other two.
type UploadStore struct {
	db       *gorm.DB
	dir      string
	maxFiles int
	maxBytes int64
	allowed  map[string]bool
}

// NewUploadStore builds an UploadStore writing into dir.
func NewUploadStore(db *gorm.DB, dir string, maxFiles, maxSizeMB int, allowedTypes []string) *UploadStore {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &UploadStore{
		db:       db,
		dir:      dir,
		maxFiles: maxFiles,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		allowed:  allowed,
	}
}

// ProcessAll stores the uploaded files for a message and returns one error
// string per rejected file. When the batch exceeds the file count limit the
// whole batch is rejected with a single error and nothing is stored.
func (s *UploadStore) ProcessAll(messageID uint, files []*multipart.FileHeader) []string {
	var errs []string
	if len(files) == 0 {
		return errs
	}
	if len(files) > s.maxFiles {
		return []string{fmt.Sprintf("too many files, maximum %d allowed", s.maxFiles)}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return []string{"failed to create upload directory"}
	}

	for _, header := range files {
		if err := s.processOne(messageID, header); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", header.Filename, err))
		}
	}
	return errs
}

func (s *UploadStore) processOne(messageID uint, header *multipart.FileHeader) error {
	if header.Size > s.maxBytes {
		return fmt.Errorf("file too large, maximum %.1fMB", float64(s.maxBytes)/(1024*1024))
	}

	f, err := header.Open()
	if err != nil {
		return fmt.Errorf("upload error")
	}
	defer f.Close()

	// Sniff the real content type; the declared Content-Type header is
	// attacker-controlled.
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("unreadable file")
	}
	if !s.allowed[mtype.String()] {
		return fmt.Errorf("invalid file type")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("unreadable file")
	}

	storedName := uuid.New().String() + mtype.Extension()
	dstPath := filepath.Join(s.dir, storedName)

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to store file")
	}

	// Cap the copy one byte past the limit so oversized bodies with a lying
	// Content-Length still get caught.
	written, err := io.Copy(out, &io.LimitedReader{R: f, N: s.maxBytes + 1})
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to store file")
	}
	if written > s.maxBytes {
		_ = os.Remove(dstPath)
		return fmt.Errorf("file too large, maximum %.1fMB", float64(s.maxBytes)/(1024*1024))
	}

	attachment := models.Attachment{
		MessageID: messageID,
		FileName:  filepath.Base(header.Filename),
		FilePath:  dstPath,
		FileSize:  written,
		MimeType:  mtype.String(),
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to record attachment")
	}
	return nil
}

// DeleteForMessage removes attachment rows and their files for a message.
// File removal is best-effort; the rows always go.
func (s *UploadStore) DeleteForMessage(messageID uint) error {
	var attachments []models.Attachment
	if err := s.db.Where("message_id = ?", messageID).Find(&attachments).Error; err != nil {
		return err
	}
	if err := s.db.Where("message_id = ?", messageID).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	for _, a := range attachments {
		_ = os.Remove(a.FilePath)
	}
	return nil
}
