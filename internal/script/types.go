package script

// Speaker identifies one of the two conversation participants.
type Speaker string

const (
	SpeakerA Speaker = "A"
	SpeakerB Speaker = "B"
)

// Line is a single dialogue line with its timing placement.
// Start and Duration are seconds; Start values are non-decreasing
// across a script's line sequence.
type Line struct {
	Speaker  Speaker `json:"speaker"`
	Name     string  `json:"name"`
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Emotion  string  `json:"emotion"`
}

// End returns the line's start plus duration.
func (l Line) End() float64 {
	return l.Start + l.Duration
}

// Script is a complete conversation: ordered lines plus speaker names
// and a free-text scene description.
type Script struct {
	Lines            []Line  `json:"lines"`
	SpeakerAName     string  `json:"speaker_a_name"`
	SpeakerBName     string  `json:"speaker_b_name"`
	TotalDuration    float64 `json:"total_duration"`
	SceneDescription string  `json:"scene_description"`
}

// SpeakerLines returns the lines spoken by the given speaker, in
// original script order.
func (s *Script) SpeakerLines(speaker Speaker) []Line {
	ret := make([]Line, 0, len(s.Lines))
	for _, line := range s.Lines {
		if line.Speaker == speaker {
			ret = append(ret, line)
		}
	}
	return ret
}

// SpeakerName resolves a speaker tag to its display name.
func (s *Script) SpeakerName(speaker Speaker) string {
	if speaker == SpeakerB {
		return s.SpeakerBName
	}
	return s.SpeakerAName
}

// Recalc re-derives TotalDuration from the lines. It must be called
// whenever line timing changes so the cached value is never stale.
func (s *Script) Recalc() {
	if len(s.Lines) == 0 {
		s.TotalDuration = 0
		return
	}
	last := s.Lines[len(s.Lines)-1]
	s.TotalDuration = last.End()
}
