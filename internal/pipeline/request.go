package pipeline

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/iamsrishanth/PodcastAI/internal/media"
	"github.com/iamsrishanth/PodcastAI/internal/script"
	"github.com/iamsrishanth/PodcastAI/internal/tts"
)

// Request describes one video generation run. PortraitA, PortraitB and
// Scenario are required, everything else has a default.
type Request struct {
	PortraitA string
	PortraitB string
	Scenario  string

	SpeakerAName string // default "Alex"
	SpeakerBName string // default "Sam"

	// VoiceA and VoiceB accept either edge-tts voice ids or preset
	// names. Empty means auto-select from the scenario language.
	VoiceA string
	VoiceB string

	// BackgroundPath points at a local background image. Empty means
	// the scene service generates one from the scenario.
	BackgroundPath string

	Layout         media.Layout
	DisableLipSync bool

	// WorkspaceID keys the temp workspace so artifacts can be tied
	// back to a job. Defaults to a fresh uuid.
	WorkspaceID string

	// OutputPath is where the final video lands. Defaults to
	// podcast_<workspace-id>.mp4 under the outputs directory.
	OutputPath string
}

// Result is the artifact set of a completed run. Artifacts maps the
// intermediate workspace products by kind (script, background,
// speaker_a_video, speaker_b_video, audio_mix, assembled).
type Result struct {
	Script        *script.Script
	OutputPath    string
	ThumbnailPath string
	WorkspaceDir  string
	Duration      float64
	Artifacts     map[string]string
}

func (p *Pipeline) applyDefaults(req Request) Request {
	if req.SpeakerAName == "" {
		req.SpeakerAName = "Alex"
	}
	if req.SpeakerBName == "" {
		req.SpeakerBName = "Sam"
	}
	if req.Layout == "" {
		req.Layout = media.Layout(p.cfg.Video.Layout)
	}
	if req.WorkspaceID == "" {
		req.WorkspaceID = uuid.NewString()
	}
	if req.OutputPath == "" {
		req.OutputPath = filepath.Join(p.cfg.Paths.OutputsDir(), "podcast_"+req.WorkspaceID+".mp4")
	}

	if req.VoiceA == "" {
		req.VoiceA = p.cfg.TTS.VoiceA
	}
	if req.VoiceB == "" {
		req.VoiceB = p.cfg.TTS.VoiceB
	}
	if req.VoiceA == "" || req.VoiceB == "" {
		autoA, autoB := tts.DefaultVoices(req.Scenario)
		if req.VoiceA == "" {
			req.VoiceA = autoA
		}
		if req.VoiceB == "" {
			req.VoiceB = autoB
		}
	}
	req.VoiceA = tts.ResolveVoice(req.VoiceA)
	req.VoiceB = tts.ResolveVoice(req.VoiceB)

	return req
}
