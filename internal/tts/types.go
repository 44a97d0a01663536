package tts

import "github.com/iamsrishanth/PodcastAI/internal/script"

// Segment is one synthesized utterance: the audio artifact plus its
// measured duration. Duration comes from the decoded file and
// supersedes any text-based estimate.
type Segment struct {
	Path     string
	Duration float64
	Speaker  script.Speaker
	Text     string
}

// ConversationAudio holds the per-line segments of a synthesized
// script, both in line order and partitioned per speaker (original
// line order preserved within each speaker's list).
type ConversationAudio struct {
	ByLine    []Segment
	BySpeaker map[script.Speaker][]Segment
}

// LinePaths returns one audio path per script line, in line order.
func (c ConversationAudio) LinePaths() []string {
	paths := make([]string, len(c.ByLine))
	for i, seg := range c.ByLine {
		paths[i] = seg.Path
	}
	return paths
}

// Durations returns the measured duration of each line's segment, in
// line order.
func (c ConversationAudio) Durations() []float64 {
	durations := make([]float64, len(c.ByLine))
	for i, seg := range c.ByLine {
		durations[i] = seg.Duration
	}
	return durations
}

// SpeakerPaths returns the audio paths of one speaker's segments in
// original line order.
func (c ConversationAudio) SpeakerPaths(speaker script.Speaker) []string {
	segs := c.BySpeaker[speaker]
	paths := make([]string, len(segs))
	for i, seg := range segs {
		paths[i] = seg.Path
	}
	return paths
}
