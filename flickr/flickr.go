// Package flickr calls the Flickr REST API with server held credentials
package flickr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	DefaultAPIURL  = "https://api.flickr.com/services/rest/"
	DefaultExtras  = "description,geo,owner_name,url_b,url_h,url_k,url_3k,url_4k,url_5k,url_6k,url_o"
	defaultTimeout = 30 * time.Second

	getPhotosMethod = "flickr.photosets.getPhotos"
	statOK          = "ok"
	redacted        = "API_KEY_REDACTED"
)

// requiredExtras are always requested since the slideshow cannot render a
// photo without its sized urls.
var requiredExtras = []string{"url_b", "url_o"}

var ErrMissingCredentials = errors.New("flickr api key and photoset id are required")

// APIError is returned when Flickr answers with a stat other than "ok".
type APIError struct {
	Stat    string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flickr api error %d (%s): %s", e.Code, e.Stat, e.Message)
}

type Config struct {
	APIKey     string
	PhotosetID string
	UserID     string
	Extras     string
	APIURL     string
}

type Client struct {
	cfg    Config
	client *http.Client
}

// photosetResponse is the envelope of flickr.photosets.getPhotos. Photo records
// are kept raw so they pass through the proxy unmodified.
type photosetResponse struct {
	Stat     string `json:"stat"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Photoset struct {
		Photo []json.RawMessage `json:"photo"`
	} `json:"photoset"`
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" || cfg.PhotosetID == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.Extras = NormalizeExtras(cfg.Extras)

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, client: httpClient}, nil
}

// NormalizeExtras dedupes a comma separated extras list, keeping the
// configured order, and appends the url fields the slideshow depends on when
// they are missing. An empty list yields DefaultExtras.
func NormalizeExtras(extras string) string {
	if strings.TrimSpace(extras) == "" {
		return DefaultExtras
	}

	seen := mapset.NewSet[string]()
	var out []string
	add := func(e string) {
		if e = strings.TrimSpace(e); e != "" && seen.Add(e) {
			out = append(out, e)
		}
	}
	for _, e := range strings.Split(extras, ",") {
		add(e)
	}
	for _, e := range requiredExtras {
		add(e)
	}
	return strings.Join(out, ",")
}

func (c *Client) requestURL() string {
	q := url.Values{}
	q.Set("method", getPhotosMethod)
	q.Set("api_key", c.cfg.APIKey)
	q.Set("photoset_id", c.cfg.PhotosetID)
	if c.cfg.UserID != "" {
		q.Set("user_id", c.cfg.UserID)
	}
	q.Set("extras", c.cfg.Extras)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	return c.cfg.APIURL + "?" + q.Encode()
}

// Redact removes the api key from s so it can be logged.
func (c *Client) Redact(s string) string {
	if c.cfg.APIKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.cfg.APIKey, redacted)
}

// PhotosetPhotos fetches the configured photoset in a single request. A
// response with a failing stat is returned as *APIError.
func (c *Client) PhotosetPhotos(ctx context.Context) ([]json.RawMessage, error) {
	reqURL := c.requestURL()
	slog.Info("fetching from flickr api", "url", c.Redact(reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.Redact(urlErr.URL)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	slog.Debug("flickr api response", "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data photosetResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response with status %d: %w", resp.StatusCode, err)
	}
	slog.Info("flickr api response", "stat", data.Stat, "photos", len(data.Photoset.Photo))

	if data.Stat != statOK {
		return nil, &APIError{Stat: data.Stat, Code: data.Code, Message: data.Message}
	}
	if data.Photoset.Photo == nil {
		return []json.RawMessage{}, nil
	}
	return data.Photoset.Photo, nil
}
