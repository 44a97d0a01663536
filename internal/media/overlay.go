package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Layout selects how the two portrait videos are placed on the
// background frame.
type Layout string

const (
	// LayoutSideBySide anchors the portraits bottom-left and
	// bottom-right with fixed margins.
	LayoutSideBySide Layout = "side-by-side"
	// LayoutConversation anchors the portraits symmetrically closer
	// to the frame center.
	LayoutConversation Layout = "conversation"
)

// VideoInfo is the probed metadata of a video artifact.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
}

// ProbeVideo reads width, height, frame rate and duration via ffprobe.
func (e Encoder) ProbeVideo(ctx context.Context, videoPath string) (VideoInfo, error) {
	cmdPath, err := exec.LookPath(e.ffprobeCmd)
	if err != nil {
		return VideoInfo{}, err
	}

	cmd := exec.CommandContext(ctx, cmdPath, e.videoProbeArgs(videoPath)...)
	output, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("failed to probe video %s: %w", videoPath, err)
	}

	var probe struct {
		Streams []struct {
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			FrameRate string `json:"r_frame_rate"`
			Duration  string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("failed to parse ffprobe output for %s: %w", videoPath, err)
	}
	if len(probe.Streams) == 0 {
		return VideoInfo{}, fmt.Errorf("no video stream in %s", videoPath)
	}

	stream := probe.Streams[0]
	info := VideoInfo{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseFrameRate(stream.FrameRate),
	}
	if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
		info.Duration = d
	} else if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	return info, nil
}

func (Encoder) videoProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,duration",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}
}

// parseFrameRate turns an ffprobe rational like "25/1" into a float.
func parseFrameRate(s string) float64 {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN == nil && errD == nil && d != 0 {
			return n / d
		}
		return 25
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 25
}

// Overlay composites the two speaker videos onto a looping background
// image for the given duration.
func (e Encoder) Overlay(ctx context.Context, videoA, videoB, background, outputPath string, layout Layout, duration float64) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.overlayArgs(videoA, videoB, background, outputPath, layout, duration))
}

func (Encoder) overlayArgs(videoA, videoB, background, outputPath string, layout Layout, duration float64) []string {
	var filterComplex string
	if layout == LayoutConversation {
		filterComplex = fmt.Sprintf(
			"[0:v]loop=loop=-1:size=1:start=0,trim=duration=%[1]v,scale=1280:720,setsar=1[bg];"+
				"[1:v]scale=350:-1[a];"+
				"[2:v]scale=350:-1[b];"+
				"[bg][a]overlay=W/2-w-30:H-h-50[tmp];"+
				"[tmp][b]overlay=W/2+30:H-h-50[v]",
			duration)
	} else {
		filterComplex = fmt.Sprintf(
			"[0:v]loop=loop=-1:size=1:start=0,trim=duration=%[1]v,scale=1280:720,setsar=1[bg];"+
				"[1:v]scale=300:-1[a];"+
				"[2:v]scale=300:-1[b];"+
				"[bg][a]overlay=100:H-h-50[tmp];"+
				"[tmp][b]overlay=W-w-100:H-h-50[v]",
			duration)
	}

	return []string{
		"-y",
		"-i", background,
		"-i", videoA,
		"-i", videoB,
		"-filter_complex", filterComplex,
		"-map", "[v]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-t", fmt.Sprintf("%v", duration),
		outputPath,
	}
}

// Finalize re-encodes to the target resolution and frame rate,
// preserving aspect ratio with letterbox padding.
func (e Encoder) Finalize(ctx context.Context, videoPath, outputPath string, width, height, fps int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.finalizeArgs(videoPath, outputPath, width, height, fps))
}

func (Encoder) finalizeArgs(videoPath, outputPath string, width, height, fps int) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf(
			"scale=%[1]d:%[2]d:force_original_aspect_ratio=decrease,pad=%[1]d:%[2]d:(ow-iw)/2:(oh-ih)/2",
			width, height),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-r", strconv.Itoa(fps),
		outputPath,
	}
}

// ResolutionSize maps a named resolution to pixel dimensions. Unknown
// names fall back to 720p.
func ResolutionSize(resolution string) (width, height int) {
	switch resolution {
	case "1080p":
		return 1920, 1080
	case "480p":
		return 854, 480
	default:
		return 1280, 720
	}
}
