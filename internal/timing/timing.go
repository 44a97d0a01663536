// Package timing computes and reconciles dialogue line timing.
//
// Timing runs in two phases. Before any audio exists, line durations
// are estimated from word counts so a provisional script can be shown
// and persisted. Once speech has been synthesized, the measured audio
// durations are authoritative and line starts are rebuilt from them.
package timing

import (
	"strings"

	"github.com/iamsrishanth/PodcastAI/internal/script"
)

const (
	// Speaking rate used for the pre-audio estimate (~150 wpm).
	wordsPerSecond = 2.5

	// Shortest plausible utterance.
	minLineDuration = 1.0

	// Pause inserted between consecutive lines.
	InterLinePause = 0.3
)

// RawLine is a dialogue line as produced by the dialogue service,
// before any timing has been assigned.
type RawLine struct {
	Speaker script.Speaker
	Text    string
	Emotion string
}

// EstimateDuration returns the phase-1 duration estimate for a line of
// text: max(1.0, wordCount/2.5) seconds.
func EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	d := float64(words) / wordsPerSecond
	if d < minLineDuration {
		return minLineDuration
	}
	return d
}

// Estimate assigns phase-1 timing to raw lines: each line gets an
// estimated duration and a running start offset with a fixed pause
// after the previous line.
func Estimate(raw []RawLine, speakerAName, speakerBName string) []script.Line {
	lines := make([]script.Line, 0, len(raw))
	current := 0.0

	for _, r := range raw {
		name := speakerAName
		if r.Speaker == script.SpeakerB {
			name = speakerBName
		}
		emotion := r.Emotion
		if emotion == "" {
			emotion = "neutral"
		}

		duration := EstimateDuration(r.Text)
		lines = append(lines, script.Line{
			Speaker:  r.Speaker,
			Name:     name,
			Text:     r.Text,
			Start:    current,
			Duration: duration,
			Emotion:  emotion,
		})
		current += duration + InterLinePause
	}

	return lines
}

// Reconcile rebuilds line starts from measured audio durations. The
// measured durations supersede the word-count estimates; the same
// inter-line pause is kept. durations must have one entry per script
// line, in line order. The script's total duration is re-derived.
func Reconcile(s *script.Script, durations []float64) {
	current := 0.0
	for i := range s.Lines {
		if i < len(durations) && durations[i] > 0 {
			s.Lines[i].Duration = durations[i]
		}
		s.Lines[i].Start = current
		current += s.Lines[i].Duration + InterLinePause
	}
	s.Recalc()
}
