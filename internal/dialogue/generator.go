// Package dialogue generates conversation scripts through an LLM
// chat completions API and parses the structured output into the
// in-memory script model with provisional timing.
package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/iamsrishanth/PodcastAI/internal/script"
	"github.com/iamsrishanth/PodcastAI/internal/timing"
	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// ParseError reports that the dialogue service returned output the
// orchestrator could not decode. Always fatal to the job.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse dialogue response: %s", e.Reason)
}

// Request describes one dialogue generation call.
type Request struct {
	Scenario      string
	SpeakerAName  string
	SpeakerBName  string
	TargetSeconds int
}

// Generator produces conversation scripts.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Generate asks the dialogue service for a conversation and parses it
// into a script with phase-1 word-count timing.
func (g *Generator) Generate(ctx context.Context, req Request) (*script.Script, error) {
	prompt := buildPrompt(req.Scenario, req.SpeakerAName, req.SpeakerBName, req.TargetSeconds)

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("dialogue service call failed: %w", err)
	}

	s, err := ParseResponse(raw, req.SpeakerAName, req.SpeakerBName)
	if err != nil {
		return nil, err
	}

	log.Info("Generated %d dialogue lines (%.1fs)", len(s.Lines), s.TotalDuration)
	return s, nil
}

var jsonBlobPattern = regexp.MustCompile(`\{[\s\S]*\}`)

type responsePayload struct {
	SceneDescription string `json:"scene_description"`
	Lines            []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
		Emotion string `json:"emotion"`
	} `json:"lines"`
}

// ParseResponse extracts the JSON object from the raw LLM output and
// builds a script with estimated timing. Missing or malformed JSON
// yields a ParseError.
func ParseResponse(responseText, speakerAName, speakerBName string) (*script.Script, error) {
	blob := jsonBlobPattern.FindString(responseText)
	if blob == "" {
		return nil, &ParseError{Reason: "could not find JSON in response"}
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	raw := make([]timing.RawLine, 0, len(payload.Lines))
	for _, item := range payload.Lines {
		speaker := script.SpeakerA
		if item.Speaker == string(script.SpeakerB) {
			speaker = script.SpeakerB
		}
		raw = append(raw, timing.RawLine{
			Speaker: speaker,
			Text:    item.Text,
			Emotion: item.Emotion,
		})
	}

	s := &script.Script{
		Lines:            timing.Estimate(raw, speakerAName, speakerBName),
		SpeakerAName:     speakerAName,
		SpeakerBName:     speakerBName,
		SceneDescription: payload.SceneDescription,
	}
	s.Recalc()
	return s, nil
}
