package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jumanahhhh/moodboard-gen/internal/media"
)

// VertexConfig describes how to connect to the Imagen publisher model.
type VertexConfig struct {
	ProjectID          string
	Location           string
	Model              string
	APIKey             string
	ServiceAccount     string
	ServiceAccountJSON string
}

type renderStore interface {
	Upload(ctx context.Context, input media.UploadInput) (media.UploadResult, error)
}

// VertexGenerator renders images with Vertex AI Imagen and stores the
// decoded bytes so callers receive stable URLs instead of inline payloads.
type VertexGenerator struct {
	cfg   VertexConfig
	store renderStore
}

// NewVertex wires a VertexGenerator.
func NewVertex(cfg VertexConfig, store media.ObjectStore) *VertexGenerator {
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	cfg.Location = strings.TrimSpace(cfg.Location)
	cfg.Model = strings.TrimSpace(cfg.Model)
	return &VertexGenerator{cfg: cfg, store: store}
}

// Generate issues one Predict call per requested image.
func (v *VertexGenerator) Generate(ctx context.Context, prompt string, count int) ([]string, error) {
	if v == nil || v.store == nil {
		return nil, fmt.Errorf("imagegen: vertex generator not configured")
	}
	if v.cfg.ProjectID == "" || v.cfg.Location == "" || v.cfg.Model == "" {
		return nil, fmt.Errorf("imagegen: missing vertex project/location/model")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("imagegen: prompt is required")
	}
	if count <= 0 {
		count = 1
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		v.cfg.ProjectID, v.cfg.Location, v.cfg.Model)
	options := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.cfg.Location)),
	}
	if v.cfg.ServiceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(v.cfg.ServiceAccountJSON)))
	} else if v.cfg.ServiceAccount != "" {
		options = append(options, option.WithCredentialsFile(v.cfg.ServiceAccount))
	} else if v.cfg.APIKey != "" {
		options = append(options, option.WithAPIKey(v.cfg.APIKey))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("imagegen: prediction client: %w", err)
	}
	defer client.Close()

	images := make([]string, 0, count)
	for i := 0; i < count; i++ {
		url, err := v.generateOne(ctx, client, endpoint, prompt)
		if err != nil {
			return nil, err
		}
		images = append(images, url)
	}
	return images, nil
}

func (v *VertexGenerator) generateOne(ctx context.Context, client *aiplatform.PredictionClient, endpoint, prompt string) (string, error) {
	instance, err := structpb.NewValue(map[string]any{
		"prompt": prompt,
	})
	if err != nil {
		return "", err
	}
	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return "", &GenerationError{Backend: "vertex", Message: err.Error()}
	}
	if len(resp.Predictions) == 0 {
		return "", &GenerationError{Backend: "vertex", Message: "empty prediction response"}
	}

	field := resp.Predictions[0].GetStructValue().GetFields()["bytesBase64Encoded"]
	if field == nil {
		return "", &GenerationError{Backend: "vertex", Message: "prediction missing image bytes"}
	}

	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return "", fmt.Errorf("imagegen: decode vertex result: %w", err)
	}

	result, err := v.store.Upload(ctx, media.UploadInput{
		Filename:    "vertex-render.png",
		ContentType: "image/png",
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		return "", fmt.Errorf("imagegen: store vertex render: %w", err)
	}
	return result.URL, nil
}
