package tts

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/iamsrishanth/PodcastAI/internal/script"
	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// SynthesizeConversation generates one audio segment per script line.
// Per-line requests run concurrently; results are reassembled by line
// index so ordering is deterministic, then partitioned per speaker.
func (e *Engine) SynthesizeConversation(ctx context.Context, s *script.Script, voiceA, voiceB, outputDir string) (ConversationAudio, error) {
	if len(s.Lines) == 0 {
		return ConversationAudio{}, fmt.Errorf("script has no lines to synthesize")
	}

	segments := make([]Segment, len(s.Lines))

	g, gctx := errgroup.WithContext(ctx)
	for i, line := range s.Lines {
		i, line := i, line
		voice := voiceA
		if line.Speaker == script.SpeakerB {
			voice = voiceB
		}
		outputPath := filepath.Join(outputDir, fmt.Sprintf("line_%03d_%s.mp3", i, line.Speaker))

		g.Go(func() error {
			if err := e.synth.Synthesize(gctx, line.Text, voice, e.rate, e.volume, outputPath); err != nil {
				return err
			}
			duration, err := e.encoder.AudioDuration(gctx, outputPath)
			if err != nil {
				return err
			}
			segments[i] = Segment{
				Path:     outputPath,
				Duration: duration,
				Speaker:  line.Speaker,
				Text:     line.Text,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ConversationAudio{}, fmt.Errorf("failed to synthesize conversation audio: %w", err)
	}

	bySpeaker := map[script.Speaker][]Segment{
		script.SpeakerA: {},
		script.SpeakerB: {},
	}
	for _, seg := range segments {
		bySpeaker[seg.Speaker] = append(bySpeaker[seg.Speaker], seg)
	}

	log.Info("Synthesized %d audio segments (%d for A, %d for B)",
		len(segments), len(bySpeaker[script.SpeakerA]), len(bySpeaker[script.SpeakerB]))

	return ConversationAudio{ByLine: segments, BySpeaker: bySpeaker}, nil
}
