package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/iamsrishanth/PodcastAI/pkg/file"
)

// HistoryItem is one completed generation in the browsable archive.
type HistoryItem struct {
	ID            string    `json:"id"`
	Scenario      string    `json:"scenario"`
	SpeakerAName  string    `json:"speaker_a_name"`
	SpeakerBName  string    `json:"speaker_b_name"`
	CreatedAt     time.Time `json:"created_at"`
	Duration      float64   `json:"duration"`
	OutputPath    string    `json:"output_path"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
}

// History is the whole-file JSON archive of completed runs, newest
// first. Every mutation rewrites the file atomically so a crash never
// leaves it truncated.
type History struct {
	mu   sync.Mutex
	path string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// List returns the archive newest first. A missing file is an empty
// archive.
func (h *History) List() ([]HistoryItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// Add prepends an item to the archive.
func (h *History) Add(item HistoryItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	items, err := h.load()
	if err != nil {
		return err
	}
	items = append([]HistoryItem{item}, items...)
	return h.save(items)
}

// Remove deletes the item with the given id and returns it. The second
// return is false when no such item exists.
func (h *History) Remove(id string) (HistoryItem, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	items, err := h.load()
	if err != nil {
		return HistoryItem{}, false, err
	}
	for i, item := range items {
		if item.ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := h.save(items); err != nil {
				return HistoryItem{}, false, err
			}
			return item, true, nil
		}
	}
	return HistoryItem{}, false, nil
}

func (h *History) load() ([]HistoryItem, error) {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return []HistoryItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	items := make([]HistoryItem, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return items, nil
}

func (h *History) save(items []HistoryItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := file.WriteAtomic(h.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
