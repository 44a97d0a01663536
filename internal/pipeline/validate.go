package pipeline

import (
	"fmt"
	"strings"

	"github.com/iamsrishanth/PodcastAI/pkg/file"
)

const minScenarioLength = 10

// validate runs the pre-flight gate. Every problem is collected so the
// caller sees the full list in one pass instead of fixing issues one
// at a time.
func (p *Pipeline) validate(req Request) error {
	issues := make([]string, 0)

	if req.PortraitA == "" {
		issues = append(issues, "speaker A portrait image is required")
	} else if !file.IsReadable(req.PortraitA) {
		issues = append(issues, fmt.Sprintf("speaker A portrait not readable: %s", req.PortraitA))
	}
	if req.PortraitB == "" {
		issues = append(issues, "speaker B portrait image is required")
	} else if !file.IsReadable(req.PortraitB) {
		issues = append(issues, fmt.Sprintf("speaker B portrait not readable: %s", req.PortraitB))
	}

	if len(strings.TrimSpace(req.Scenario)) < minScenarioLength {
		issues = append(issues, fmt.Sprintf("scenario must be at least %d characters", minScenarioLength))
	}

	if req.BackgroundPath != "" && !file.IsReadable(req.BackgroundPath) {
		issues = append(issues, fmt.Sprintf("background image not readable: %s", req.BackgroundPath))
	}

	issues = append(issues, p.cfg.Validate()...)

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
