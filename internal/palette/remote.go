package palette

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteService delegates palette derivation to an external inference
// endpoint and reshapes its response into the shared Palette contract.
type RemoteService struct {
	endpoint string
	client   *http.Client
}

// NewRemote constructs a client for the palette inference endpoint.
func NewRemote(endpoint string, timeout time.Duration) *RemoteService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Derive posts the prompt and adopts the first returned color as the base.
func (s *RemoteService) Derive(ctx context.Context, prompt string) (Palette, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return Palette{}, fmt.Errorf("marshal palette payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Palette{}, fmt.Errorf("palette request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Palette{}, fmt.Errorf("palette perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Palette{}, fmt.Errorf("palette status %d", resp.StatusCode)
	}

	var payload struct {
		ColorPalette []string `json:"color_palette"`
		Fonts        []string `json:"fonts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Palette{}, fmt.Errorf("palette decode response: %w", err)
	}
	if len(payload.ColorPalette) == 0 {
		return Palette{}, fmt.Errorf("palette response missing colors")
	}

	return Palette{
		BaseColor:    payload.ColorPalette[0],
		ColorPalette: payload.ColorPalette,
		Fonts:        payload.Fonts,
	}, nil
}
