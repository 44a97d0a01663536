package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iamsrishanth/PodcastAI/internal/config"
	"github.com/iamsrishanth/PodcastAI/internal/dialogue"
	"github.com/iamsrishanth/PodcastAI/internal/media"
	"github.com/iamsrishanth/PodcastAI/internal/scene"
	"github.com/iamsrishanth/PodcastAI/internal/script"
	"github.com/iamsrishanth/PodcastAI/internal/timing"
	"github.com/iamsrishanth/PodcastAI/internal/tts"
	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// DialogueService generates a timed conversation script for a scenario.
type DialogueService interface {
	Generate(ctx context.Context, req dialogue.Request) (*script.Script, error)
}

// SpeechService synthesizes every script line into per-line audio.
type SpeechService interface {
	SynthesizeConversation(ctx context.Context, s *script.Script, voiceA, voiceB, outputDir string) (tts.ConversationAudio, error)
}

// SceneService produces a background image for a scenario.
type SceneService interface {
	GenerateForScenario(ctx context.Context, scenario, outputPath string) error
}

// PortraitAnimator lip-syncs a portrait image to an audio track.
type PortraitAnimator interface {
	Animate(ctx context.Context, portraitPath, audioPath, outputPath string) error
}

// Encoder is the slice of the media toolchain the pipeline drives.
// media.Encoder satisfies it.
type Encoder interface {
	ConcatAudio(ctx context.Context, audioPaths []string, outputPath string) error
	MixAudio(ctx context.Context, inputs []media.DelayedInput, outputPath string) error
	StillVideo(ctx context.Context, imagePath, audioPath, outputPath string, fps int) error
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
	Thumbnail(ctx context.Context, videoPath, outputPath string) error
	SolidColorImage(ctx context.Context, outputPath, hexColor string, width, height int) error
	ResizeImage(ctx context.Context, imagePath, outputPath string, width, height int) error
	ProbeVideo(ctx context.Context, videoPath string) (media.VideoInfo, error)
	Overlay(ctx context.Context, videoA, videoB, background, outputPath string, layout media.Layout, duration float64) error
	Finalize(ctx context.Context, videoPath, outputPath string, width, height, fps int) error
}

// Pipeline runs the full generation sequence for one request. Safe for
// concurrent use, each run works in its own workspace directory.
type Pipeline struct {
	cfg      *config.Config
	dialogue DialogueService
	speech   SpeechService
	scene    SceneService
	animator PortraitAnimator
	encoder  Encoder
}

func New(cfg *config.Config, dlg DialogueService, speech SpeechService, sc SceneService, animator PortraitAnimator, encoder Encoder) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		dialogue: dlg,
		speech:   speech,
		scene:    sc,
		animator: animator,
		encoder:  encoder,
	}
}

// Generate runs all seven stages and reports each transition through
// onProgress. On error nothing is written to the final output path;
// intermediate artifacts stay in the workspace for the janitor.
func (p *Pipeline) Generate(ctx context.Context, req Request, onProgress ProgressFunc) (*Result, error) {
	req = p.applyDefaults(req)
	notify := func(st Stage) {
		if onProgress != nil {
			onProgress(st)
		}
	}

	artifacts := make(map[string]string)

	notify(stageValidate)
	if err := p.validate(req); err != nil {
		return nil, err
	}
	for _, w := range p.cfg.Warnings() {
		log.Warn("%s", w)
	}

	ws := filepath.Join(p.cfg.Paths.TempDir(), req.WorkspaceID)
	if err := os.MkdirAll(ws, 0755); err != nil {
		return nil, &ResourceError{Path: ws, Err: err}
	}

	notify(stageDialogue)
	s, err := p.dialogue.Generate(ctx, dialogue.Request{
		Scenario:      req.Scenario,
		SpeakerAName:  req.SpeakerAName,
		SpeakerBName:  req.SpeakerBName,
		TargetSeconds: p.cfg.Dialogue.TargetSeconds,
	})
	if err != nil {
		return nil, &CollaboratorError{Service: "dialogue", Err: err}
	}
	scriptPath := filepath.Join(ws, "script.json")
	if err := script.Save(s, scriptPath); err != nil {
		return nil, err
	}
	artifacts["script"] = scriptPath
	log.Info("dialogue generated: %d lines, %.1fs estimated", len(s.Lines), s.TotalDuration)

	notify(stageSpeech)
	audioDir := filepath.Join(ws, "audio")
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		return nil, &ResourceError{Path: audioDir, Err: err}
	}
	audio, err := p.speech.SynthesizeConversation(ctx, s, req.VoiceA, req.VoiceB, audioDir)
	if err != nil {
		return nil, &CollaboratorError{Service: "speech", Err: err}
	}
	timing.Reconcile(s, audio.Durations())
	if err := script.Save(s, scriptPath); err != nil {
		return nil, err
	}
	log.Info("speech synthesized: %d segments, %.1fs measured", len(audio.ByLine), s.TotalDuration)

	notify(stageScene)
	backgroundPath := filepath.Join(ws, "background.png")
	p.prepareBackground(ctx, req, backgroundPath)
	artifacts["background"] = backgroundPath

	notify(stageAnimate)
	videoA, err := p.speakerVideo(ctx, ws, audio, script.SpeakerA, req.PortraitA, req.DisableLipSync)
	if err != nil {
		return nil, err
	}
	videoB, err := p.speakerVideo(ctx, ws, audio, script.SpeakerB, req.PortraitB, req.DisableLipSync)
	if err != nil {
		return nil, err
	}
	artifacts["speaker_a_video"] = videoA
	artifacts["speaker_b_video"] = videoB

	notify(stageAssemble)
	duration, err := p.overlayDuration(ctx, s, videoA, videoB)
	if err != nil {
		return nil, err
	}
	composited := filepath.Join(ws, "composited.mp4")
	if err := p.encoder.Overlay(ctx, videoA, videoB, backgroundPath, composited, req.Layout, duration); err != nil {
		return nil, fmt.Errorf("compositing portraits over background: %w", err)
	}
	mixedAudio := filepath.Join(ws, "conversation.m4a")
	if err := p.encoder.MixAudio(ctx, mixInputs(s, audio), mixedAudio); err != nil {
		return nil, fmt.Errorf("mixing conversation audio: %w", err)
	}
	assembled := filepath.Join(ws, "assembled.mp4")
	if err := p.encoder.ReplaceAudio(ctx, composited, mixedAudio, assembled); err != nil {
		return nil, fmt.Errorf("muxing conversation audio: %w", err)
	}
	artifacts["audio_mix"] = mixedAudio
	artifacts["assembled"] = assembled

	notify(stageFinalize)
	width, height := media.ResolutionSize(p.cfg.Video.Resolution)
	finalTmp := filepath.Join(ws, "final.mp4")
	if err := p.encoder.Finalize(ctx, assembled, finalTmp, width, height, p.cfg.Video.FPS); err != nil {
		return nil, fmt.Errorf("final encode: %w", err)
	}
	thumbTmp := filepath.Join(ws, "thumbnail.jpg")
	if err := p.encoder.Thumbnail(ctx, finalTmp, thumbTmp); err != nil {
		return nil, fmt.Errorf("extracting thumbnail: %w", err)
	}

	// Publish only once both artifacts exist, so a crash never leaves
	// a partial file at the output path.
	thumbPath := ThumbnailPath(req.OutputPath)
	if err := moveFile(finalTmp, req.OutputPath); err != nil {
		return nil, err
	}
	if err := moveFile(thumbTmp, thumbPath); err != nil {
		return nil, err
	}

	notify(StageComplete)
	log.Info("generation complete: %s (%.1fs)", req.OutputPath, s.TotalDuration)

	return &Result{
		Script:        s,
		OutputPath:    req.OutputPath,
		ThumbnailPath: thumbPath,
		WorkspaceDir:  ws,
		Duration:      s.TotalDuration,
		Artifacts:     artifacts,
	}, nil
}

// ThumbnailPath derives the thumbnail location published next to a
// video output.
func ThumbnailPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_thumb.jpg"
}

// prepareBackground writes the background frame. This stage never
// fails the run: any problem falls back to a solid placeholder.
func (p *Pipeline) prepareBackground(ctx context.Context, req Request, outputPath string) {
	if req.BackgroundPath != "" {
		err := scene.UseLocalBackground(ctx, p.encoder, req.BackgroundPath, outputPath)
		if err == nil {
			return
		}
		log.Warn("local background unusable, using placeholder: %v", err)
	} else {
		err := p.scene.GenerateForScenario(ctx, req.Scenario, outputPath)
		if err == nil {
			return
		}
		log.Warn("background generation failed, using placeholder: %v", err)
	}
	if err := scene.Placeholder(ctx, p.encoder, outputPath); err != nil {
		log.Error("placeholder background failed: %v", err)
	}
}

// speakerVideo combines a speaker's line audio and produces their
// portrait video, lip-synced when possible and a static frame
// otherwise.
func (p *Pipeline) speakerVideo(ctx context.Context, ws string, audio tts.ConversationAudio, speaker script.Speaker, portrait string, disableLipSync bool) (string, error) {
	tag := strings.ToLower(string(speaker))
	combined := filepath.Join(ws, fmt.Sprintf("speaker_%s.mp3", tag))
	if err := p.encoder.ConcatAudio(ctx, audio.SpeakerPaths(speaker), combined); err != nil {
		return "", fmt.Errorf("combining speaker %s audio: %w", speaker, err)
	}

	videoPath := filepath.Join(ws, fmt.Sprintf("speaker_%s.mp4", tag))
	if !disableLipSync {
		err := p.animator.Animate(ctx, portrait, combined, videoPath)
		if err == nil {
			return videoPath, nil
		}
		log.Warn("lip-sync unavailable for speaker %s, using static portrait: %v", speaker, err)
	}
	if err := p.encoder.StillVideo(ctx, portrait, combined, videoPath, p.cfg.Video.FPS); err != nil {
		return "", fmt.Errorf("rendering static portrait video for speaker %s: %w", speaker, err)
	}
	return videoPath, nil
}

// overlayDuration picks the composited clip length: the longer of the
// two portrait videos, falling back to the script timeline when
// probing fails.
func (p *Pipeline) overlayDuration(ctx context.Context, s *script.Script, videoA, videoB string) (float64, error) {
	duration := s.TotalDuration
	for _, path := range []string{videoA, videoB} {
		info, err := p.encoder.ProbeVideo(ctx, path)
		if err != nil {
			return 0, fmt.Errorf("probing %s: %w", path, err)
		}
		if info.Duration > duration {
			duration = info.Duration
		}
	}
	return duration, nil
}

func mixInputs(s *script.Script, audio tts.ConversationAudio) []media.DelayedInput {
	entries := timing.MixSchedule(s, audio.LinePaths())
	inputs := make([]media.DelayedInput, len(entries))
	for i, e := range entries {
		inputs[i] = media.DelayedInput{Path: e.Path, DelayMs: e.DelayMs}
	}
	return inputs
}

// moveFile renames src to dst, copying when the rename crosses
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return &ResourceError{Path: src, Err: err}
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return &ResourceError{Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return &ResourceError{Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &ResourceError{Path: dst, Err: err}
	}
	return os.Remove(src)
}
