package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultImageModel = "gemini-2.5-flash-image"

// GeminiGenerator renders images via Gemini inline image outputs.
type GeminiGenerator struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGemini constructs a generator able to request inline images.
func NewGemini(apiKey, model string, timeout time.Duration) *GeminiGenerator {
	if strings.TrimSpace(model) == "" {
		model = defaultImageModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiGenerator{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

// Generate requests count images, one call per image, in request order.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	if g == nil || strings.TrimSpace(g.apiKey) == "" {
		return nil, fmt.Errorf("imagegen: gemini generator unavailable")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("imagegen: empty prompt")
	}
	if count <= 0 {
		count = 1
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{
		APIKey: g.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: create genai client: %w", err)
	}

	images := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ref, err := g.generateOne(childCtx, client, prompt)
		if err != nil {
			return nil, err
		}
		images = append(images, ref)
	}
	return images, nil
}

func (g *GeminiGenerator) generateOne(ctx context.Context, client *genai.Client, prompt string) (string, error) {
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &GenerationError{Backend: "gemini", Message: err.Error()}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Backend: "gemini", Message: "response has no candidates"}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if strings.TrimSpace(mime) == "" {
			mime = "image/png"
		}
		encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
		return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
	}
	return "", &GenerationError{Backend: "gemini", Message: "candidate carries no image data"}
}
