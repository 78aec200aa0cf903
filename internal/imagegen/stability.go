package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StabilityClient renders images through the Stability AI text-to-image API.
type StabilityClient struct {
	apiKey  string
	engine  string
	baseURL string
	client  *http.Client
}

// NewStability constructs a client for the given engine id.
func NewStability(apiKey, engine string, timeout time.Duration) *StabilityClient {
	if strings.TrimSpace(engine) == "" {
		engine = "stable-diffusion-xl-1024-v1-0"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &StabilityClient{
		apiKey:  apiKey,
		engine:  engine,
		baseURL: "https://api.stability.ai",
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *StabilityClient) WithBaseURL(base string) *StabilityClient {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Generate collects count images via sequential single-sample requests.
// The backend accepts only one sample per call; responses are concatenated
// in request order.
func (c *StabilityClient) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	if count <= 0 {
		count = 1
	}

	images := make([]string, 0, count)
	for i := 0; i < count; i++ {
		batch, err := c.generateOne(ctx, prompt)
		if err != nil {
			return nil, err
		}
		images = append(images, batch...)
	}
	return images, nil
}

func (c *StabilityClient) generateOne(ctx context.Context, prompt string) ([]string, error) {
	payload := map[string]any{
		"text_prompts": []map[string]any{
			{"text": prompt, "weight": 1},
		},
		"cfg_scale":    7,
		"height":       1024,
		"width":        1024,
		"steps":        30,
		"samples":      1,
		"style_preset": "photographic",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal stability payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.baseURL, c.engine)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stability request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stability perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Message == "" {
			failure.Message = resp.Status
		}
		return nil, &GenerationError{Backend: "stability", Status: resp.StatusCode, Message: failure.Message}
	}

	var result struct {
		Artifacts []struct {
			Base64 string `json:"base64"`
		} `json:"artifacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("stability decode response: %w", err)
	}

	images := make([]string, 0, len(result.Artifacts))
	for _, artifact := range result.Artifacts {
		images = append(images, "data:image/png;base64,"+artifact.Base64)
	}
	return images, nil
}
