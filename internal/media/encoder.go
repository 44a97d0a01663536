// Package media wraps the ffmpeg/ffprobe command line tools used for
// all audio and video processing. Every operation is a pure function
// of its input artifacts and parameters; argument lists are built by
// side-effect-free helpers so they can be tested without the binaries
// installed.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// Encoder invokes ffmpeg and ffprobe as subprocesses.
type Encoder struct {
	ffmpegCmd  string
	ffprobeCmd string
}

func NewEncoder() Encoder {
	return Encoder{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
	}
}

// AudioDuration returns the measured duration of an audio file in
// seconds, as decoded by ffprobe. This value is authoritative and
// supersedes any text-based estimate.
func (e Encoder) AudioDuration(ctx context.Context, audioPath string) (float64, error) {
	cmdPath, err := exec.LookPath(e.ffprobeCmd)
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, cmdPath, e.durationProbeArgs(audioPath)...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe duration of %s: %w", audioPath, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse probed duration of %s: %w", audioPath, err)
	}
	return duration, nil
}

func (Encoder) durationProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// ConcatAudio concatenates audio files in order using the concat
// demuxer. A single input is copied through without invoking ffmpeg's
// concat path.
func (e Encoder) ConcatAudio(ctx context.Context, audioPaths []string, outputPath string) error {
	if len(audioPaths) == 0 {
		return fmt.Errorf("no audio files to concatenate")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	if len(audioPaths) == 1 {
		return copyFile(audioPaths[0], outputPath)
	}

	listFile := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	var sb strings.Builder
	for _, p := range audioPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listFile, []byte(sb.String()), 0644); err != nil {
		return err
	}
	defer os.Remove(listFile)

	return e.runFfmpeg(ctx, e.concatArgs(listFile, outputPath))
}

func (Encoder) concatArgs(listFile, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outputPath,
	}
}

// DelayedInput places one audio input at a fixed offset on the mixed
// output track.
type DelayedInput struct {
	Path    string
	DelayMs int
}

// MixAudio builds a single track where each input is delayed to its
// offset and all inputs are mixed, preserving the conversation's
// temporal structure. A single input is copied through directly.
func (e Encoder) MixAudio(ctx context.Context, inputs []DelayedInput, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no audio inputs to mix")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	if len(inputs) == 1 {
		return copyFile(inputs[0].Path, outputPath)
	}

	return e.runFfmpeg(ctx, e.mixArgs(inputs, outputPath))
}

func (Encoder) mixArgs(inputs []DelayedInput, outputPath string) []string {
	args := []string{"-y"}
	filterParts := make([]string, 0, len(inputs)+1)

	for i, in := range inputs {
		args = append(args, "-i", in.Path)
		filterParts = append(filterParts,
			fmt.Sprintf("[%d:a]adelay=%d|%d[a%d]", i, in.DelayMs, in.DelayMs, i))
	}

	var mixInputs strings.Builder
	for i := range inputs {
		fmt.Fprintf(&mixInputs, "[a%d]", i)
	}
	filterParts = append(filterParts,
		fmt.Sprintf("%samix=inputs=%d:normalize=0[out]", mixInputs.String(), len(inputs)))

	return append(args,
		"-filter_complex", strings.Join(filterParts, ";"),
		"-map", "[out]",
		"-c:a", "aac",
		outputPath,
	)
}

// StillVideo renders a video that holds a single image for the full
// length of the audio track.
func (e Encoder) StillVideo(ctx context.Context, imagePath, audioPath, outputPath string, fps int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.stillVideoArgs(imagePath, audioPath, outputPath, fps))
}

func (Encoder) stillVideoArgs(imagePath, audioPath, outputPath string, fps int) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-r", strconv.Itoa(fps),
		outputPath,
	}
}

// ReplaceAudio swaps the video's audio track for the given one. The
// existing track is replaced, not mixed with.
func (e Encoder) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.replaceAudioArgs(videoPath, audioPath, outputPath))
}

func (Encoder) replaceAudioArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
}

// Thumbnail extracts a single still frame near the two second mark.
func (e Encoder) Thumbnail(ctx context.Context, videoPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.thumbnailArgs(videoPath, outputPath))
}

func (Encoder) thumbnailArgs(videoPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-ss", "00:00:02",
		"-vframes", "1",
		"-vf", "scale=320:-1",
		outputPath,
	}
}

// SolidColorImage writes a single frame of one flat color, used as a
// background placeholder when scene generation is unavailable.
func (e Encoder) SolidColorImage(ctx context.Context, outputPath, hexColor string, width, height int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.solidColorArgs(outputPath, hexColor, width, height))
}

func (Encoder) solidColorArgs(outputPath, hexColor string, width, height int) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d", hexColor, width, height),
		"-frames:v", "1",
		outputPath,
	}
}

// ResizeImage scales an image to exactly the given size.
func (e Encoder) ResizeImage(ctx context.Context, imagePath, outputPath string, width, height int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return e.runFfmpeg(ctx, e.resizeImageArgs(imagePath, outputPath, width, height))
}

func (Encoder) resizeImageArgs(imagePath, outputPath string, width, height int) []string {
	return []string{
		"-y",
		"-i", imagePath,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		outputPath,
	}
}

func (e Encoder) runFfmpeg(ctx context.Context, args []string) error {
	cmdPath, err := exec.LookPath(e.ffmpegCmd)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, cmdPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("ffmpeg failed: %v", err)
		return fmt.Errorf("ffmpeg %s failed: %w: %s",
			args[len(args)-1], err, tail(string(output), 512))
	}
	return nil
}

// tail returns at most the last n bytes of s, for error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
