// Package tts synthesizes speech for dialogue lines and measures the
// resulting audio durations.
package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Synthesizer converts one line of text to a playable audio artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, rate, volume, outputPath string) error
}

// DurationProber measures the decoded duration of an audio file.
// Satisfied by media.Encoder.
type DurationProber interface {
	AudioDuration(ctx context.Context, audioPath string) (float64, error)
}

// EdgeTTS synthesizes speech through the edge-tts command line tool.
type EdgeTTS struct {
	cmd string
}

func NewEdgeTTS() EdgeTTS {
	return EdgeTTS{cmd: "edge-tts"}
}

func (e EdgeTTS) Synthesize(ctx context.Context, text, voice, rate, volume, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	cmdPath, err := exec.LookPath(e.cmd)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, cmdPath, e.synthesizeArgs(text, voice, rate, volume, outputPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("speech synthesis failed for voice %s: %w: %s", voice, err, string(output))
	}
	return nil
}

func (EdgeTTS) synthesizeArgs(text, voice, rate, volume, outputPath string) []string {
	return []string{
		"--text", text,
		"--voice", voice,
		"--rate=" + rate,
		"--volume=" + volume,
		"--write-media", outputPath,
	}
}

// Engine synthesizes speech and probes the produced files for their
// authoritative durations.
type Engine struct {
	synth   Synthesizer
	encoder DurationProber
	rate    string
	volume  string
}

func NewEngine(synth Synthesizer, encoder DurationProber, rate, volume string) *Engine {
	if rate == "" {
		rate = "+0%"
	}
	if volume == "" {
		volume = "+0%"
	}
	return &Engine{synth: synth, encoder: encoder, rate: rate, volume: volume}
}
