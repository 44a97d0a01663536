package timing

import (
	"math"

	"github.com/iamsrishanth/PodcastAI/internal/script"
)

// MixEntry places one audio file at its script start offset on the
// final mixed track.
type MixEntry struct {
	Path    string
	DelayMs int
}

// MixSchedule derives the final-mix placement for a script: each
// line's audio is delayed to its script start so interleaved A/B lines
// keep the conversation's temporal structure. paths must hold one
// audio path per script line, in line order.
func MixSchedule(s *script.Script, paths []string) []MixEntry {
	entries := make([]MixEntry, 0, len(s.Lines))
	for i, line := range s.Lines {
		if i >= len(paths) || paths[i] == "" {
			continue
		}
		entries = append(entries, MixEntry{
			Path:    paths[i],
			DelayMs: int(math.Round(line.Start * 1000)),
		})
	}
	return entries
}
