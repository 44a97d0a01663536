package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncoder(t *testing.T) {
	e := NewEncoder()
	assert.Equal(t, "ffmpeg", e.ffmpegCmd)
	assert.Equal(t, "ffprobe", e.ffprobeCmd)
}

func TestEncoder_durationProbeArgs(t *testing.T) {
	e := NewEncoder()
	args := e.durationProbeArgs("/tmp/a.mp3")

	expected := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"/tmp/a.mp3",
	}
	assert.Equal(t, expected, args)
}

func TestEncoder_concatArgs(t *testing.T) {
	e := NewEncoder()
	args := e.concatArgs("/tmp/list.txt", "/tmp/out.mp3")

	assert.Equal(t, []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "/tmp/list.txt",
		"-c", "copy",
		"/tmp/out.mp3",
	}, args)
}

func TestEncoder_mixArgs_DelaysAndMixesAllInputs(t *testing.T) {
	e := NewEncoder()
	args := e.mixArgs([]DelayedInput{
		{Path: "a0.mp3", DelayMs: 0},
		{Path: "b0.mp3", DelayMs: 2300},
	}, "out.aac")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i a0.mp3")
	assert.Contains(t, joined, "-i b0.mp3")
	assert.Contains(t, joined, "[0:a]adelay=0|0[a0]")
	assert.Contains(t, joined, "[1:a]adelay=2300|2300[a1]")
	assert.Contains(t, joined, "[a0][a1]amix=inputs=2:normalize=0[out]")
	assert.Equal(t, "out.aac", args[len(args)-1])
}

func TestEncoder_MixAudio_SingleInputCopiesWithoutFfmpeg(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "only.mp3")
	require.NoError(t, os.WriteFile(src, []byte("audio-bytes"), 0644))

	// Empty PATH: any ffmpeg invocation would fail, proving the
	// single-input path never reaches the mixer.
	t.Setenv("PATH", "")

	out := filepath.Join(dir, "mixed.aac")
	e := NewEncoder()
	require.NoError(t, e.MixAudio(context.Background(), []DelayedInput{{Path: src}}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestEncoder_MixAudio_TwoInputsInvokeFfmpeg(t *testing.T) {
	t.Setenv("PATH", "")

	e := NewEncoder()
	err := e.MixAudio(context.Background(), []DelayedInput{
		{Path: "a.mp3"}, {Path: "b.mp3"},
	}, filepath.Join(t.TempDir(), "out.aac"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg")
}

func TestEncoder_MixAudio_EmptyInputFailsFast(t *testing.T) {
	e := NewEncoder()
	err := e.MixAudio(context.Background(), nil, filepath.Join(t.TempDir(), "out.aac"))
	require.Error(t, err)
}

func TestEncoder_ConcatAudio_SingleInputCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "seg.mp3")
	require.NoError(t, os.WriteFile(src, []byte("seg"), 0644))

	t.Setenv("PATH", "")

	out := filepath.Join(dir, "combined.mp3")
	e := NewEncoder()
	require.NoError(t, e.ConcatAudio(context.Background(), []string{src}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "seg", string(data))
}

func TestEncoder_ConcatAudio_EmptyInputFailsFast(t *testing.T) {
	e := NewEncoder()
	err := e.ConcatAudio(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
}

func TestEncoder_stillVideoArgs(t *testing.T) {
	e := NewEncoder()
	args := e.stillVideoArgs("face.png", "voice.mp3", "out.mp4", 25)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-loop 1")
	assert.Contains(t, joined, "-i face.png")
	assert.Contains(t, joined, "-i voice.mp3")
	assert.Contains(t, joined, "-tune stillimage")
	assert.Contains(t, joined, "-shortest")
	assert.Contains(t, joined, "-r 25")
}

func TestEncoder_replaceAudioArgs_MapsVideoAndNewAudioOnly(t *testing.T) {
	e := NewEncoder()
	args := e.replaceAudioArgs("in.mp4", "track.aac", "out.mp4")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-map 0:v:0")
	assert.Contains(t, joined, "-map 1:a:0")
	assert.Contains(t, joined, "-c:v copy")
	assert.NotContains(t, joined, "amix")
}

func TestEncoder_overlayArgs_Layouts(t *testing.T) {
	e := NewEncoder()

	side := strings.Join(e.overlayArgs("a.mp4", "b.mp4", "bg.png", "out.mp4", LayoutSideBySide, 12.5), " ")
	assert.Contains(t, side, "overlay=100:H-h-50")
	assert.Contains(t, side, "overlay=W-w-100:H-h-50")
	assert.Contains(t, side, "trim=duration=12.5")

	conv := strings.Join(e.overlayArgs("a.mp4", "b.mp4", "bg.png", "out.mp4", LayoutConversation, 12.5), " ")
	assert.Contains(t, conv, "overlay=W/2-w-30:H-h-50")
	assert.Contains(t, conv, "overlay=W/2+30:H-h-50")
}

func TestEncoder_finalizeArgs_LetterboxesToTarget(t *testing.T) {
	e := NewEncoder()
	args := e.finalizeArgs("in.mp4", "out.mp4", 1280, 720, 25)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "scale=1280:720:force_original_aspect_ratio=decrease")
	assert.Contains(t, joined, "pad=1280:720:(ow-iw)/2:(oh-ih)/2")
	assert.Contains(t, joined, "-r 25")
}

func TestEncoder_thumbnailArgs_ExtractsNearTwoSeconds(t *testing.T) {
	e := NewEncoder()
	args := e.thumbnailArgs("in.mp4", "thumb.jpg")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-ss 00:00:02")
	assert.Contains(t, joined, "-vframes 1")
}

func TestEncoder_solidColorArgs(t *testing.T) {
	e := NewEncoder()
	args := e.solidColorArgs("bg.png", "0x1e1e28", 1280, 720)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "color=c=0x1e1e28:s=1280x720")
	assert.Contains(t, joined, "-frames:v 1")
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 25.0, parseFrameRate("25/1"), 1e-9)
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.01)
	assert.InDelta(t, 24.0, parseFrameRate("24"), 1e-9)
	assert.InDelta(t, 25.0, parseFrameRate("bad"), 1e-9)
	assert.InDelta(t, 25.0, parseFrameRate("1/0"), 1e-9)
}

func TestResolutionSize(t *testing.T) {
	tests := []struct {
		resolution string
		width      int
		height     int
	}{
		{"720p", 1280, 720},
		{"1080p", 1920, 1080},
		{"480p", 854, 480},
		{"unknown", 1280, 720},
	}
	for _, tt := range tests {
		w, h := ResolutionSize(tt.resolution)
		assert.Equal(t, tt.width, w)
		assert.Equal(t, tt.height, h)
	}
}
