package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceClient renders images through the serverless inference API,
// which returns raw image bytes for text-to-image models.
type HuggingFaceClient struct {
	apiKey   string
	modelURL string
	client   *http.Client
}

// NewHuggingFace constructs a client for the given hosted model URL.
func NewHuggingFace(apiKey, modelURL string, timeout time.Duration) *HuggingFaceClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HuggingFaceClient{
		apiKey:   apiKey,
		modelURL: strings.TrimSuffix(modelURL, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// Generate collects count images via sequential single-image requests.
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	if count <= 0 {
		count = 1
	}

	images := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ref, err := c.generateOne(ctx, prompt)
		if err != nil {
			return nil, err
		}
		images = append(images, ref)
	}
	return images, nil
}

func (c *HuggingFaceClient) generateOne(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal inference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error == "" {
			failure.Error = resp.Status
		}
		return "", &GenerationError{Backend: "huggingface", Status: resp.StatusCode, Message: failure.Error}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read inference response: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/") {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
