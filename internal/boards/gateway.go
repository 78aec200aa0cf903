// Package boards persists finished mood boards to object storage, one
// folder per user, images first and a JSON manifest last.
package boards

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/cache"
	"github.com/jumanahhhh/moodboard-gen/internal/events"
	"github.com/jumanahhhh/moodboard-gen/internal/media"
	"github.com/jumanahhhh/moodboard-gen/internal/moodboard"
)

const keyPrefix = "moodboards"

const manifestSuffix = "_data.json"

// ErrBoardNotFound indicates no manifest exists for the given id.
var ErrBoardNotFound = errors.New("board not found")

// Gateway stores and retrieves saved boards for a user.
type Gateway struct {
	store  media.ObjectStore
	broker *events.Broker
	cache  *cache.BoardListCache
	logger *zap.Logger
	client *http.Client

	// now is swapped in tests for stable ids.
	now func() time.Time
}

// NewGateway constructs a persistence gateway. Broker and cache may be
// nil.
func NewGateway(store media.ObjectStore, broker *events.Broker, listCache *cache.BoardListCache, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:  store,
		broker: broker,
		cache:  listCache,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

// Save uploads the board's images under the user's folder and then
// writes the manifest referencing their stored URLs. The manifest goes
// last so a listing never sees a board whose images are still missing.
func (g *Gateway) Save(ctx context.Context, userID string, record moodboard.Record) (moodboard.Record, error) {
	ts := g.now().UnixMilli()
	record.ID = fmt.Sprintf("%d", ts)
	record.Timestamp = ts

	stored := make([]string, 0, len(record.Images))
	for i, ref := range record.Images {
		data, contentType, err := g.fetchImage(ctx, ref)
		if err != nil {
			return moodboard.Record{}, fmt.Errorf("fetch image %d: %w", i, err)
		}
		key := fmt.Sprintf("%s/%s/%d_%d.png", keyPrefix, userID, ts, i)
		result, err := g.store.Upload(ctx, media.UploadInput{
			Key:         key,
			Filename:    path.Base(key),
			ContentType: contentType,
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
		})
		if err != nil {
			return moodboard.Record{}, fmt.Errorf("upload image %d: %w", i, err)
		}
		stored = append(stored, result.URL)
	}
	record.Images = stored

	manifest, err := json.Marshal(record)
	if err != nil {
		return moodboard.Record{}, fmt.Errorf("encode manifest: %w", err)
	}
	manifestKey := fmt.Sprintf("%s/%s/%d%s", keyPrefix, userID, ts, manifestSuffix)
	if _, err := g.store.Upload(ctx, media.UploadInput{
		Key:         manifestKey,
		Filename:    path.Base(manifestKey),
		ContentType: "application/json",
		Body:        bytes.NewReader(manifest),
		Size:        int64(len(manifest)),
	}); err != nil {
		return moodboard.Record{}, fmt.Errorf("upload manifest: %w", err)
	}

	if g.cache != nil {
		g.cache.Invalidate(ctx, userID)
	}
	if g.broker != nil {
		g.broker.Publish(events.Event{Type: events.TypeMoodboardSaved, UserID: userID, BoardID: record.ID})
	}
	g.logger.Info("moodboard saved",
		zap.String("user_id", userID),
		zap.String("board_id", record.ID),
		zap.Int("images", len(record.Images)))
	return record, nil
}

// List returns the user's saved boards, newest first.
func (g *Gateway) List(ctx context.Context, userID string) ([]moodboard.Record, error) {
	if g.cache != nil {
		if records, ok := g.cache.Get(ctx, userID); ok {
			return records, nil
		}
	}

	infos, err := g.store.List(ctx, fmt.Sprintf("%s/%s/", keyPrefix, userID))
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	records := make([]moodboard.Record, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, manifestSuffix) {
			continue
		}
		raw, err := g.store.Download(ctx, info.Key)
		if err != nil {
			return nil, fmt.Errorf("download manifest %s: %w", info.Key, err)
		}
		var record moodboard.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			g.logger.Warn("skipping unreadable manifest", zap.String("key", info.Key), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	if g.cache != nil {
		g.cache.Set(ctx, userID, records)
	}
	return records, nil
}

// Delete removes a board's manifest and images.
func (g *Gateway) Delete(ctx context.Context, userID, boardID string) error {
	prefix := fmt.Sprintf("%s/%s/", keyPrefix, userID)
	infos, err := g.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	var keys []string
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, prefix)
		if strings.HasPrefix(name, boardID+"_") {
			keys = append(keys, info.Key)
		}
	}
	if len(keys) == 0 {
		return ErrBoardNotFound
	}
	for _, key := range keys {
		if err := g.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	if g.cache != nil {
		g.cache.Invalidate(ctx, userID)
	}
	if g.broker != nil {
		g.broker.Publish(events.Event{Type: events.TypeMoodboardDeleted, UserID: userID, BoardID: boardID})
	}
	g.logger.Info("moodboard deleted", zap.String("user_id", userID), zap.String("board_id", boardID))
	return nil
}

// fetchImage resolves an image reference to raw bytes. References are
// either base64 data URLs straight from a generator or http(s) URLs.
func (g *Gateway) fetchImage(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURL(ref)
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/png"
		}
		return data, contentType, nil
	}
	return nil, "", fmt.Errorf("unsupported image reference %q", truncateRef(ref))
}

func decodeDataURL(ref string) ([]byte, string, error) {
	rest := strings.TrimPrefix(ref, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data url")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return data, contentType, nil
}

func truncateRef(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}
