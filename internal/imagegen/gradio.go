package imagegen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/palette"
)

// BoardResult is the combined output of a queue-mode generation: image
// references plus the palette and fonts embedded in the completion payload.
type BoardResult struct {
	Images  []string
	Palette palette.Palette
}

// BoardGenerator is implemented by backends whose response also carries
// palette and font data alongside the images. Callers that care about
// the embedded palette check for it before falling back to Generate.
type BoardGenerator interface {
	GenerateBoard(ctx context.Context, prompt string) BoardResult
}

var (
	hexColorRe   = regexp.MustCompile(`#[0-9a-fA-F]{6}`)
	fontFamilyRe = regexp.MustCompile(`font-family:\s*'([^']+)'`)
)

// Positions of the payload slots in the completion data array.
const (
	gradioImageSlots  = 4
	gradioFontSlot    = 8
	gradioPaletteFrom = 4
	gradioPaletteTo   = 8
)

// GradioClient talks to a queued inference Space: join the queue for a
// session token, then consume the companion event stream until the process
// completes.
//
// Stream and parse failures resolve to an empty result instead of an error.
// That mirrors the upstream contract; the condition is logged so operators
// can still tell transport failures from empty generations.
type GradioClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewGradio constructs a client for the Space at baseURL.
func NewGradio(baseURL string, timeout time.Duration, log *zap.Logger) *GradioClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GradioClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// emptyResult is the fallback value for any failed queue-mode generation.
func emptyResult() BoardResult {
	return BoardResult{
		Images: []string{},
		Palette: palette.Palette{
			BaseColor:    "#000000",
			ColorPalette: []string{},
			Fonts:        []string{},
		},
	}
}

// Generate satisfies Generator; count is fixed by the Space's output slots.
func (c *GradioClient) Generate(ctx context.Context, prompt string, _ int) ([]string, error) {
	return c.GenerateBoard(ctx, prompt).Images, nil
}

// GenerateBoard runs the full queue round-trip and extracts images, palette
// colors, and fonts from the completion payload.
func (c *GradioClient) GenerateBoard(ctx context.Context, prompt string) BoardResult {
	sessionHash := uuid.NewString()

	if err := c.joinQueue(ctx, prompt, sessionHash); err != nil {
		c.log.Warn("gradio queue join failed", zap.Error(err))
		return emptyResult()
	}

	payload, err := c.awaitCompletion(ctx, sessionHash)
	if err != nil {
		c.log.Warn("gradio stream failed", zap.Error(err))
		return emptyResult()
	}

	result, err := parseCompletion(payload)
	if err != nil {
		c.log.Warn("gradio completion parse failed", zap.Error(err))
		return emptyResult()
	}
	return result
}

func (c *GradioClient) joinQueue(ctx context.Context, prompt, sessionHash string) error {
	body, err := json.Marshal(map[string]any{
		"fn_index":     0,
		"session_hash": sessionHash,
		"data":         []string{prompt},
	})
	if err != nil {
		return fmt.Errorf("marshal join payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/queue/join", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("join request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("join perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("join status %d", resp.StatusCode)
	}
	return nil
}

// awaitCompletion consumes the server-push stream keyed by the session hash
// until a process_completed event arrives.
func (c *GradioClient) awaitCompletion(ctx context.Context, sessionHash string) (completionOutput, error) {
	endpoint := fmt.Sprintf("%s/queue/data?session_hash=%s", c.baseURL, url.QueryEscape(sessionHash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return completionOutput{}, fmt.Errorf("stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return completionOutput{}, fmt.Errorf("stream perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return completionOutput{}, fmt.Errorf("stream status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if raw == "" {
			continue
		}

		var event struct {
			Msg    string           `json:"msg"`
			Output completionOutput `json:"output"`
		}
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return completionOutput{}, fmt.Errorf("decode event: %w", err)
		}
		if event.Msg == "process_completed" {
			return event.Output, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return completionOutput{}, fmt.Errorf("read stream: %w", err)
	}
	return completionOutput{}, fmt.Errorf("stream closed before completion")
}

type completionOutput struct {
	Data []json.RawMessage `json:"data"`
}

// parseCompletion extracts image references from slots 0-3, palette colors
// from the text in slots 4-7, and font families from the HTML fragment in
// slot 8.
func parseCompletion(output completionOutput) (BoardResult, error) {
	if len(output.Data) <= gradioFontSlot {
		return BoardResult{}, fmt.Errorf("completion data has %d slots, want %d", len(output.Data), gradioFontSlot+1)
	}

	images := make([]string, 0, gradioImageSlots)
	for i := 0; i < gradioImageSlots; i++ {
		ref, err := imageRef(output.Data[i])
		if err != nil {
			return BoardResult{}, fmt.Errorf("slot %d: %w", i, err)
		}
		if ref != "" {
			images = append(images, ref)
		}
	}

	var colors []string
	for i := gradioPaletteFrom; i < gradioPaletteTo; i++ {
		var text string
		if err := json.Unmarshal(output.Data[i], &text); err != nil {
			return BoardResult{}, fmt.Errorf("slot %d: %w", i, err)
		}
		colors = append(colors, hexColorRe.FindAllString(text, -1)...)
	}

	var fontHTML string
	if err := json.Unmarshal(output.Data[gradioFontSlot], &fontHTML); err != nil {
		return BoardResult{}, fmt.Errorf("slot %d: %w", gradioFontSlot, err)
	}
	var fonts []string
	for _, match := range fontFamilyRe.FindAllStringSubmatch(fontHTML, -1) {
		fonts = append(fonts, match[1])
	}

	base := "#000000"
	if len(colors) > 0 {
		base = colors[0]
	}

	return BoardResult{
		Images: images,
		Palette: palette.Palette{
			BaseColor:    base,
			ColorPalette: colors,
			Fonts:        fonts,
		},
	}, nil
}

// imageRef accepts either a plain URL string or a file object with a url or
// name field.
func imageRef(raw json.RawMessage) (string, error) {
	var direct string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var obj struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("unrecognised image slot")
	}
	if obj.URL != "" {
		return obj.URL, nil
	}
	return obj.Name, nil
}
