package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Dialogue Service Configuration:
// - DIALOGUE_API_KEY: API key for the dialogue LLM provider (required)
// - DIALOGUE_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - DIALOGUE_MODEL: Model name to use (default: google/gemini-flash-1.5)
// - DIALOGUE_MAX_TOKENS: Maximum tokens for responses (default: 2048)
// - DIALOGUE_TEMPERATURE: Temperature for responses (default: 0.7)
// - DIALOGUE_TIMEOUT: Request timeout in seconds (default: 60)
// - DIALOGUE_TARGET_SECONDS: Target conversation duration (default: 45)
//
// Scene Service Configuration:
// - SCENE_API_TOKEN: Replicate API token (required for scene generation)
// - SCENE_API_URL: Replicate API URL (default: https://api.replicate.com/v1)
//
// TTS Configuration:
// - TTS_VOICE_A / TTS_VOICE_B: Voice identifiers for each speaker
// - TTS_RATE / TTS_VOLUME: Rate and volume adjustment strings (e.g. "+10%")
//
// Video Configuration:
// - VIDEO_RESOLUTION: "720p", "1080p" or "480p" (default: 720p)
// - VIDEO_FPS: Target frame rate (default: 25)
// - VIDEO_LAYOUT: "side-by-side" or "conversation" (default: side-by-side)
//
// Paths:
// - DATA_DIR: Base data directory (default: ./data)
//   outputs, temp workspaces, models and the job database live under it.
//
// Server:
// - HTTP_ADDR: Listen address (default: :8000)
// - CLEANUP_CRON: Cron expression for the temp-workspace janitor (default hourly)
// - TEMP_RETENTION_HOURS: Age before a terminal job's workspace is swept (default: 24)

type Config struct {
	Dialogue DialogueConfig `json:"dialogue"`
	Scene    SceneConfig    `json:"scene"`
	TTS      TTSConfig      `json:"tts"`
	Video    VideoConfig    `json:"video"`
	Paths    PathsConfig    `json:"paths"`
	Server   ServerConfig   `json:"server"`
}

// DialogueConfig holds the configuration for the dialogue LLM service.
type DialogueConfig struct {
	APIKey        string  `json:"api_key"`
	APIURL        string  `json:"api_url"`
	Model         string  `json:"model"`
	MaxTokens     int     `json:"max_tokens"`
	Temperature   float64 `json:"temperature"`
	Timeout       int     `json:"timeout"`
	TargetSeconds int     `json:"target_seconds"`
}

// SceneConfig holds the configuration for the image generation service.
type SceneConfig struct {
	APIToken string `json:"api_token"`
	APIURL   string `json:"api_url"`
}

// TTSConfig holds speech synthesis defaults.
type TTSConfig struct {
	VoiceA string `json:"voice_a"`
	VoiceB string `json:"voice_b"`
	Rate   string `json:"rate"`
	Volume string `json:"volume"`
}

// VideoConfig holds final-encode settings.
type VideoConfig struct {
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Layout     string `json:"layout"`
}

// PathsConfig holds the data directory layout.
type PathsConfig struct {
	DataDir string `json:"data_dir"`
}

func (p PathsConfig) OutputsDir() string { return filepath.Join(p.DataDir, "outputs") }
func (p PathsConfig) TempDir() string    { return filepath.Join(p.DataDir, "temp") }
func (p PathsConfig) ModelsDir() string  { return filepath.Join(p.DataDir, "models") }
func (p PathsConfig) InputsDir() string  { return filepath.Join(p.DataDir, "inputs") }
func (p PathsConfig) DBPath() string     { return filepath.Join(p.DataDir, "jobs.db") }
func (p PathsConfig) HistoryPath() string {
	return filepath.Join(p.OutputsDir(), "history.json")
}

// ServerConfig holds HTTP server and janitor settings.
type ServerConfig struct {
	Addr               string `json:"addr"`
	CleanupCron        string `json:"cleanup_cron"`
	TempRetentionHours int    `json:"temp_retention_hours"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Dialogue: DialogueConfig{
			APIKey:        getEnvString("DIALOGUE_API_KEY", ""),
			APIURL:        getEnvString("DIALOGUE_API_URL", "https://openrouter.ai/api/v1"),
			Model:         getEnvString("DIALOGUE_MODEL", "google/gemini-flash-1.5"),
			MaxTokens:     getEnvInt("DIALOGUE_MAX_TOKENS", 2048),
			Temperature:   getEnvFloat("DIALOGUE_TEMPERATURE", 0.7),
			Timeout:       getEnvInt("DIALOGUE_TIMEOUT", 60),
			TargetSeconds: getEnvInt("DIALOGUE_TARGET_SECONDS", 45),
		},
		Scene: SceneConfig{
			APIToken: getEnvString("SCENE_API_TOKEN", ""),
			APIURL:   getEnvString("SCENE_API_URL", "https://api.replicate.com/v1"),
		},
		TTS: TTSConfig{
			VoiceA: getEnvString("TTS_VOICE_A", ""),
			VoiceB: getEnvString("TTS_VOICE_B", ""),
			Rate:   getEnvString("TTS_RATE", "+0%"),
			Volume: getEnvString("TTS_VOLUME", "+0%"),
		},
		Video: VideoConfig{
			Resolution: getEnvString("VIDEO_RESOLUTION", "720p"),
			FPS:        getEnvInt("VIDEO_FPS", 25),
			Layout:     getEnvString("VIDEO_LAYOUT", "side-by-side"),
		},
		Paths: PathsConfig{
			DataDir: getEnvString("DATA_DIR", "data"),
		},
		Server: ServerConfig{
			Addr:               getEnvString("HTTP_ADDR", ":8000"),
			CleanupCron:        getEnvString("CLEANUP_CRON", "0 * * * *"),
			TempRetentionHours: getEnvInt("TEMP_RETENTION_HOURS", 24),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.ensureDirs(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate returns the list of missing credential issues. A non-empty
// result blocks job submission at the validation gate. Credentials
// whose absence only degrades the output come back from Warnings
// instead.
func (c *Config) Validate() []string {
	issues := make([]string, 0)

	if c.Dialogue.APIKey == "" {
		issues = append(issues, "DIALOGUE_API_KEY not set in environment")
	}

	return issues
}

// Warnings lists missing optional credentials. Generation still runs
// without them but the affected stage falls back to a stand-in.
func (c *Config) Warnings() []string {
	warnings := make([]string, 0)

	if c.Scene.APIToken == "" {
		warnings = append(warnings, "SCENE_API_TOKEN not set, backgrounds fall back to a solid color")
	}

	return warnings
}

func (c *Config) ensureDirs() error {
	for _, dir := range []string{
		c.Paths.OutputsDir(),
		c.Paths.TempDir(),
		c.Paths.ModelsDir(),
		c.Paths.InputsDir(),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
