package jobs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// SweepWorkspaces removes temp workspaces of finished jobs older than
// maxAge. Workspaces of running jobs are never touched, even when
// stale by modification time. Returns the number of directories
// removed.
func (t *Tracker) SweepWorkspaces(maxAge time.Duration) int {
	entries, err := os.ReadDir(t.tempDir)
	if err != nil {
		log.Warn("janitor: failed to read temp dir %s: %v", t.tempDir, err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if job, ok := t.Get(entry.Name()); ok && !job.Status.Terminal() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(t.tempDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("janitor: failed to remove %s: %v", dir, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info("janitor: removed %d stale workspace(s)", removed)
	}
	return removed
}
