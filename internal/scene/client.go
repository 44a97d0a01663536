// Package scene obtains background images: generated through an
// image-generation API, loaded from a caller-supplied file, or a
// solid-color placeholder when generation fails.
package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// Frame size all backgrounds are normalized to.
const (
	FrameWidth  = 1280
	FrameHeight = 720
)

// Client calls a Replicate-style prediction API to generate scene
// images with Stable Diffusion XL.
type Client struct {
	apiToken   string
	baseURL    string
	model      string
	httpClient *http.Client
	pollEvery  time.Duration
}

const sdxlVersion = "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

func NewClient(apiToken, baseURL string) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		model:      sdxlVersion,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		pollEvery:  2 * time.Second,
	}
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt            string `json:"prompt"`
	NegativePrompt    string `json:"negative_prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	NumOutputs        int    `json:"num_outputs"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int    `json:"num_inference_steps"`
}

type predictionResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Generate creates one image for the prompt and writes it to
// outputPath. The prediction is polled until it reaches a terminal
// status.
func (c *Client) Generate(ctx context.Context, prompt, negativePrompt, outputPath string, width, height int) error {
	if c.apiToken == "" {
		return fmt.Errorf("scene API token not configured")
	}

	pred, err := c.createPrediction(ctx, predictionRequest{
		Version: c.model,
		Input: predictionInput{
			Prompt:            prompt,
			NegativePrompt:    negativePrompt,
			Width:             width,
			Height:            height,
			NumOutputs:        1,
			GuidanceScale:     7.5,
			NumInferenceSteps: 30,
		},
	})
	if err != nil {
		return err
	}

	for pred.Status != "succeeded" && pred.Status != "failed" && pred.Status != "canceled" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollEvery):
		}
		pred, err = c.getPrediction(ctx, pred.URLs.Get, pred.ID)
		if err != nil {
			return err
		}
	}

	if pred.Status != "succeeded" || len(pred.Output) == 0 {
		return fmt.Errorf("scene generation failed: status=%s error=%s", pred.Status, pred.Error)
	}

	return c.download(ctx, pred.Output[0], outputPath)
}

// GenerateForScenario picks the preset matching the scenario and
// generates its scene.
func (c *Client) GenerateForScenario(ctx context.Context, scenario, outputPath string) error {
	preset := PresetFor(scenario)
	log.Info("Generating %q background scene", preset.Name)
	return c.Generate(ctx, preset.Prompt, preset.NegativePrompt, outputPath, FrameWidth, FrameHeight)
}

func (c *Client) createPrediction(ctx context.Context, request predictionRequest) (*predictionResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	defer resp.Body.Close()

	return decodePrediction(resp)
}

func (c *Client) getPrediction(ctx context.Context, getURL, id string) (*predictionResponse, error) {
	if getURL == "" {
		getURL = fmt.Sprintf("%s/predictions/%s", c.baseURL, id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll prediction: %w", err)
	}
	defer resp.Body.Close()

	return decodePrediction(resp)
}

func decodePrediction(resp *http.Response) (*predictionResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("prediction request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var pred predictionResponse
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("failed to parse prediction response: %w", err)
	}
	return &pred, nil
}

func (c *Client) download(ctx context.Context, url, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
