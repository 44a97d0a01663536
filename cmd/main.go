package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/iamsrishanth/PodcastAI/internal/config"
	"github.com/iamsrishanth/PodcastAI/internal/dialogue"
	"github.com/iamsrishanth/PodcastAI/internal/httpapi"
	"github.com/iamsrishanth/PodcastAI/internal/jobs"
	"github.com/iamsrishanth/PodcastAI/internal/lipsync"
	"github.com/iamsrishanth/PodcastAI/internal/media"
	"github.com/iamsrishanth/PodcastAI/internal/persistence"
	"github.com/iamsrishanth/PodcastAI/internal/pipeline"
	"github.com/iamsrishanth/PodcastAI/internal/scene"
	"github.com/iamsrishanth/PodcastAI/internal/tts"
	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

func main() {
	_ = godotenv.Load()
	log.InitLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("failed to load configuration: %v", err)
	}
	for _, issue := range cfg.Validate() {
		log.Warn("configuration: %s", issue)
	}
	for _, warning := range cfg.Warnings() {
		log.Warn("configuration: %s", warning)
	}

	dialogueClient, err := dialogue.NewClient(&dialogue.Config{
		APIKey:      cfg.Dialogue.APIKey,
		APIURL:      cfg.Dialogue.APIURL,
		Model:       cfg.Dialogue.Model,
		MaxTokens:   cfg.Dialogue.MaxTokens,
		Temperature: cfg.Dialogue.Temperature,
		Timeout:     cfg.Dialogue.Timeout,
	})
	if err != nil {
		log.Fatal("failed to build dialogue client: %v", err)
	}

	encoder := media.NewEncoder()
	speech := tts.NewEngine(tts.NewEdgeTTS(), encoder, cfg.TTS.Rate, cfg.TTS.Volume)
	sceneClient := scene.NewClient(cfg.Scene.APIToken, cfg.Scene.APIURL)
	animator := lipsync.NewAnimator(cfg.Paths.ModelsDir())

	if inst := lipsync.CheckInstallation(cfg.Paths.ModelsDir()); !inst.Installed() {
		log.Warn("wav2lip not installed under %s, portraits will be static", cfg.Paths.ModelsDir())
	}

	pipe := pipeline.New(cfg, dialogue.NewGenerator(dialogueClient), speech, sceneClient, animator, encoder)

	store, err := persistence.NewSQLiteStore(cfg.Paths.DBPath())
	if err != nil {
		log.Fatal("failed to open job store: %v", err)
	}
	defer store.Close()

	history := jobs.NewHistory(cfg.Paths.HistoryPath())
	tracker, err := jobs.NewTracker(pipe, store, history, cfg.Paths.TempDir())
	if err != nil {
		log.Fatal("failed to build job tracker: %v", err)
	}

	janitor := cron.New()
	retention := time.Duration(cfg.Server.TempRetentionHours) * time.Hour
	if _, err := janitor.AddFunc(cfg.Server.CleanupCron, func() {
		tracker.SweepWorkspaces(retention)
	}); err != nil {
		log.Fatal("invalid cleanup cron expression %q: %v", cfg.Server.CleanupCron, err)
	}
	janitor.Start()
	defer janitor.Stop()

	server := httpapi.NewServer(cfg, tracker)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening on %s", cfg.Server.Addr)
		errCh <- server.ListenAndServe(cfg.Server.Addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown: %v", err)
	}
}
