package utils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/models"
)

// StartOrphanSweeper launches a background goroutine that periodically
// removes files in the upload directory that no attachment row references.
// A crash between writing a file and recording its row leaves such orphans.
// Best-effort: failures are logged and retried on the next round.
func StartOrphanSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing uploads right at startup.
			time.Sleep(interval)
			sweepOrphans()
		}
	}()
}

func sweepOrphans() {
	cfg := config.Get()
	db := config.DB()

	entries, err := os.ReadDir(cfg.UploadDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-time.Hour)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			// Too fresh; its row may not be committed yet.
			continue
		}
		path := filepath.Join(cfg.UploadDir, entry.Name())
		var count int64
		if err := db.Model(&models.Attachment{}).Where("file_path = ?", path).Count(&count).Error; err != nil {
			continue
		}
		if count == 0 {
			if err := os.Remove(path); err != nil {
				if Sugar != nil {
					Sugar.Warnf("orphan sweep remove failed path=%s err=%v", path, err)
				}
			} else if Sugar != nil {
				Sugar.Infof("removed orphaned upload %s", path)
			}
		}
	}
}
