package scene

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetFor(t *testing.T) {
	tests := []struct {
		name     string
		scenario string
		want     string
	}{
		{"office keywords", "Two colleagues debrief after a business meeting", "office"},
		{"cafe keywords", "Old friends catch up over coffee", "cafe"},
		{"park keywords", "A walk through nature on a sunny afternoon", "park"},
		{"studio keywords", "A podcast host interviews a guest", "studio"},
		{"living room keywords", "A casual chat at home about the weekend", "living_room"},
		{"no match defaults to studio", "Discussing quantum mechanics", "studio"},
		{"case insensitive", "AN OFFICE ARGUMENT", "office"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PresetFor(tt.scenario)
			assert.Equal(t, tt.want, got.Name)
			assert.NotEmpty(t, got.Prompt)
			assert.Contains(t, got.NegativePrompt, "watermark")
		})
	}
}

func TestClient_Generate_PollsUntilSucceeded(t *testing.T) {
	var polls int

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/predictions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))
		var req predictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.Input.NumOutputs)

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "starting",
			"urls":   map[string]string{"get": server.URL + "/predictions/p1"},
		})
	})
	mux.HandleFunc("/predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 2 {
			json.NewEncoder(w).Encode(map[string]any{"id": "p1", "status": "processing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "succeeded",
			"output": []string{server.URL + "/image.png"},
		})
	})
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})

	client := NewClient("tok", server.URL)
	client.pollEvery = time.Millisecond

	out := filepath.Join(t.TempDir(), "bg.png")
	err := client.Generate(context.Background(), "a prompt", "neg", out, FrameWidth, FrameHeight)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestClient_Generate_FailedPrediction(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "p1", "status": "failed", "error": "NSFW content"})
	})

	client := NewClient("tok", server.URL)
	client.pollEvery = time.Millisecond

	err := client.Generate(context.Background(), "p", "n", filepath.Join(t.TempDir(), "bg.png"), FrameWidth, FrameHeight)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NSFW")
}

func TestClient_Generate_MissingToken(t *testing.T) {
	client := NewClient("", "https://example.com")
	err := client.Generate(context.Background(), "p", "n", filepath.Join(t.TempDir(), "bg.png"), FrameWidth, FrameHeight)
	require.Error(t, err)
}
