package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aouyang1/flickrframe/api/models"
	"github.com/aouyang1/flickrframe/slideshow"
)

const defaultTimeout = 30 * time.Second

// ErrProxyFailure is returned when the proxy answered but reported no success.
var ErrProxyFailure = errors.New("flickr proxy reported failure")

// PhotoClient fetches the photo collection through the flickr proxy so the
// api key never leaves the server side.
type PhotoClient struct {
	proxyURL string
	client   *http.Client
}

func NewPhotoClient(proxyURL string) *PhotoClient {
	return &PhotoClient{
		proxyURL: proxyURL,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// FetchPhotos retrieves every photo record of the configured photoset. It is
// called once per slideshow session.
func (pc *PhotoClient) FetchPhotos(ctx context.Context) ([]slideshow.Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.proxyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ProxyErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrProxyFailure, errResp.Message)
		}
		return nil, fmt.Errorf("proxy returned status %d: %s", resp.StatusCode, string(body))
	}

	var proxyResp models.ProxyResponse
	if err := json.Unmarshal(body, &proxyResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !proxyResp.Success {
		return nil, fmt.Errorf("%w: %s", ErrProxyFailure, proxyResp.Message)
	}

	photos := make([]slideshow.Photo, 0, len(proxyResp.Photos))
	for i, raw := range proxyResp.Photos {
		var p slideshow.Photo
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Warn("skipping malformed photo record", "index", i, "error", err)
			continue
		}
		photos = append(photos, p)
	}

	slog.Info("photos fetched from proxy", "count", len(photos))
	return photos, nil
}
