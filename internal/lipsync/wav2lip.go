// Package lipsync animates portrait images to speech audio with
// Wav2Lip, with a static-video degraded mode when the model is not
// installed.
package lipsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// ErrNotInstalled reports that the Wav2Lip model is unavailable. The
// pipeline treats this as a planned degraded mode, not a failure.
var ErrNotInstalled = errors.New("wav2lip is not installed")

// Installation describes what parts of the Wav2Lip setup are present.
type Installation struct {
	RepoDir        string
	CheckpointPath string
	FaceDetPath    string

	RepoInstalled    bool
	CheckpointExists bool
	FaceDetExists    bool
}

// Installed reports whether animation can run.
func (i Installation) Installed() bool {
	return i.RepoInstalled && i.CheckpointExists
}

// CheckInstallation inspects the models directory for the Wav2Lip
// repository and model checkpoints.
func CheckInstallation(modelsDir string) Installation {
	repoDir := filepath.Join(modelsDir, "Wav2Lip")
	checkpoint := filepath.Join(modelsDir, "wav2lip_gan.pth")
	faceDet := filepath.Join(modelsDir, "s3fd.pth")

	inst := Installation{
		RepoDir:        repoDir,
		CheckpointPath: checkpoint,
		FaceDetPath:    faceDet,
	}

	if _, err := os.Stat(filepath.Join(repoDir, "inference.py")); err == nil {
		inst.RepoInstalled = true
	}
	if _, err := os.Stat(checkpoint); err == nil {
		inst.CheckpointExists = true
	}
	if _, err := os.Stat(faceDet); err == nil {
		inst.FaceDetExists = true
	}
	return inst
}

// Animator runs Wav2Lip inference as a subprocess. Batch sizes are
// kept low for constrained GPUs.
type Animator struct {
	modelsDir        string
	pythonCmd        string
	batchSize        int
	faceDetBatchSize int
	resizeFactor     int
}

func NewAnimator(modelsDir string) *Animator {
	return &Animator{
		modelsDir:        modelsDir,
		pythonCmd:        "python3",
		batchSize:        16,
		faceDetBatchSize: 8,
		resizeFactor:     1,
	}
}

// Animate produces a lip-synced video of the portrait speaking the
// audio track. Returns ErrNotInstalled when the model is missing.
func (a *Animator) Animate(ctx context.Context, portraitPath, audioPath, outputPath string) error {
	inst := CheckInstallation(a.modelsDir)
	if !inst.Installed() {
		return ErrNotInstalled
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	cmdPath, err := exec.LookPath(a.pythonCmd)
	if err != nil {
		return fmt.Errorf("python interpreter not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, cmdPath, a.inferenceArgs(inst, portraitPath, audioPath, outputPath)...)
	cmd.Dir = inst.RepoDir
	cmd.Env = append(os.Environ(), "CUDA_VISIBLE_DEVICES=0")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Wav2Lip inference failed: %v", err)
		return fmt.Errorf("wav2lip inference failed: %w: %s", err, string(output))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("wav2lip did not create output file %s", outputPath)
	}
	return nil
}

func (a *Animator) inferenceArgs(inst Installation, portraitPath, audioPath, outputPath string) []string {
	return []string{
		filepath.Join(inst.RepoDir, "inference.py"),
		"--checkpoint_path", inst.CheckpointPath,
		"--face", portraitPath,
		"--audio", audioPath,
		"--outfile", outputPath,
		"--wav2lip_batch_size", fmt.Sprintf("%d", a.batchSize),
		"--face_det_batch_size", fmt.Sprintf("%d", a.faceDetBatchSize),
		"--resize_factor", fmt.Sprintf("%d", a.resizeFactor),
		"--nosmooth",
	}
}
