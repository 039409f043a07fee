// Package config reads the frame configuration from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aouyang1/flickrframe/flickr"
	"github.com/aouyang1/flickrframe/slideshow"
)

const (
	DefaultAddr     = "0.0.0.0:8080"
	DefaultEnvFile  = ".env"
	databaseName    = "frame.db"
	proxyPathPrefix = "/flickr-api-proxy/"

	defaultRefreshMinutes = 60
)

type Config struct {
	Addr     string
	RootPath string
	ProxyURL string
	LogLevel slog.Level

	ViewportWidth int
	Params        slideshow.Params

	// RefreshInterval is how often the photoset is checked for changes.
	RefreshInterval time.Duration

	AssetsDir      string
	AssetsS3Bucket string
	AWSProfile     string

	Flickr flickr.Config
}

// LoadEnvFile loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}

// FromEnv builds the configuration from FRAME_* and FLICKR_* variables.
// Malformed values are logged and replaced by their defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("FRAME_ADDR", DefaultAddr),
		RootPath:        getenv("FRAME_ROOT_PATH", "."),
		LogLevel:        parseLevel(os.Getenv("FRAME_LOG_LEVEL")),
		ViewportWidth:   getInt("FRAME_VIEWPORT_WIDTH", slideshow.DefaultViewportWidth),
		RefreshInterval: time.Duration(getInt("FRAME_REFRESH_MINUTES", defaultRefreshMinutes)) * time.Minute,
		AssetsDir:       os.Getenv("FRAME_ASSETS_DIR"),
		AssetsS3Bucket:  os.Getenv("FRAME_ASSETS_S3_BUCKET"),
		AWSProfile:      os.Getenv("FRAME_AWS_PROFILE"),
		Params: slideshow.Params{
			HideInfo:           getBool("FRAME_HIDE_INFO"),
			DisableTransitions: getBool("FRAME_DISABLE_TRANSITIONS"),
			FillImage:          getBool("FRAME_FILL_IMAGE"),
		},
		Flickr: flickr.Config{
			APIKey:     os.Getenv("FLICKR_API_KEY"),
			PhotosetID: os.Getenv("FLICKR_PHOTOSET_ID"),
			UserID:     os.Getenv("FLICKR_USER_ID"),
			Extras:     os.Getenv("FLICKR_EXTRAS"),
			APIURL:     getenv("FLICKR_API_URL", flickr.DefaultAPIURL),
		},
	}
	cfg.ProxyURL = getenv("FRAME_PROXY_URL", localProxyURL(cfg.Addr))
	return cfg
}

func (c Config) DatabasePath() string {
	return filepath.Join(c.RootPath, databaseName)
}

// localProxyURL points the slideshow at this server's own proxy route.
func localProxyURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		slog.Warn("unable to parse listen address for proxy url", "addr", addr, "error", err)
		return "http://127.0.0.1:8080" + proxyPathPrefix
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + proxyPathPrefix
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using false", "key", key, "value", v)
		return false
	}
	return b
}

func parseLevel(v string) slog.Level {
	if v == "" {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("invalid log level, using info", "value", v)
		return slog.LevelInfo
	}
	return level
}
