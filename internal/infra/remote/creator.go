// Package remote holds clients for the optional companion services.
// Everything here is gated off by default; the game is fully playable
// standalone.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pokecat-game/pokecat/server/internal/config"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
)

// ErrStandalone is returned by every creator operation when the creator
// backend is disabled. Callers surface it as a friendly "running
// standalone" response rather than an error page.
var ErrStandalone = errors.New("creator backend disabled: running standalone")

// CatSubmission is a user-drawn cat headed for the shared catalog.
type CatSubmission struct {
	Name     string `json:"name"`
	Rarity   string `json:"rarity"`
	ImageB64 string `json:"image"` // data-URL encoded drawing
}

// CatRecord is what the creator backend stores.
type CatRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
	Rarity  string `json:"rarity"`
}

// CreatorClient talks to the two-step creator pipeline: the drawing is
// uploaded to the storage service first, then the resulting asset URL
// is registered with the catalog backend.
type CreatorClient struct {
	cfg  config.CreatorConfig
	http *http.Client
	log  *logger.Logger
}

// NewCreatorClient builds the client. The client is constructed even
// when disabled; each call checks the gate so the wiring stays uniform.
func NewCreatorClient(cfg config.CreatorConfig, log *logger.Logger) *CreatorClient {
	return &CreatorClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Enabled reports whether the creator backend is reachable per config.
func (c *CreatorClient) Enabled() bool { return c.cfg.Enabled }

// Submit uploads the drawing and registers the cat. Returns the stored
// record.
func (c *CreatorClient) Submit(ctx context.Context, sub CatSubmission) (CatRecord, error) {
	if !c.cfg.Enabled {
		return CatRecord{}, ErrStandalone
	}

	iconURL, err := c.uploadDrawing(ctx, sub)
	if err != nil {
		return CatRecord{}, fmt.Errorf("upload drawing: %w", err)
	}

	rec, err := c.registerCat(ctx, sub, iconURL)
	if err != nil {
		return CatRecord{}, fmt.Errorf("register cat: %w", err)
	}
	c.log.Info("creator: registered cat %q (%s)", rec.Name, rec.ID)
	return rec, nil
}

func (c *CreatorClient) uploadDrawing(ctx context.Context, sub CatSubmission) (string, error) {
	body, err := json.Marshal(map[string]string{
		"name":  sub.Name,
		"image": sub.ImageB64,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.StorageURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("storage service returned %s", resp.Status)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("storage service returned no asset url")
	}
	return out.URL, nil
}

func (c *CreatorClient) registerCat(ctx context.Context, sub CatSubmission, iconURL string) (CatRecord, error) {
	body, err := json.Marshal(map[string]string{
		"name":    sub.Name,
		"rarity":  sub.Rarity,
		"iconUrl": iconURL,
	})
	if err != nil {
		return CatRecord{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BackendURL, bytes.NewReader(body))
	if err != nil {
		return CatRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return CatRecord{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return CatRecord{}, fmt.Errorf("catalog backend returned %s", resp.Status)
	}

	var rec CatRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rec); err != nil {
		return CatRecord{}, err
	}
	return rec, nil
}
