package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aouyang1/flickrframe/api"
	"github.com/aouyang1/flickrframe/api/client"
	"github.com/aouyang1/flickrframe/assets"
	"github.com/aouyang1/flickrframe/flickr"
	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/aouyang1/flickrframe/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the slideshow and the Flickr proxy.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.RootPath, 0o755); err != nil {
		return fmt.Errorf("failed to create root path %s: %w", cfg.RootPath, err)
	}

	database, err := store.NewDatabase(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// The proxy answers with an error until credentials are configured, the
	// server itself still starts.
	var fetcher api.PhotosetFetcher
	flickrClient, err := flickr.NewClient(cfg.Flickr, nil)
	switch {
	case errors.Is(err, flickr.ErrMissingCredentials):
		slog.Warn("flickr credentials missing, proxy disabled", "error", err)
	case err != nil:
		return fmt.Errorf("failed to initialize flickr client: %w", err)
	default:
		fetcher = flickrClient
	}

	src, err := assetSource(ctx)
	if err != nil {
		return err
	}

	opts := slideshow.DefaultOptions()
	opts.UserID = cfg.Flickr.UserID
	opts.ViewportWidth = cfg.ViewportWidth
	opts.Params = cfg.Params

	webServer, err := api.NewWebServer(api.Options{
		DB:        database,
		Flickr:    fetcher,
		Source:    client.NewPhotoClient(cfg.ProxyURL),
		Assets:    src,
		Slideshow: opts,

		PhotosetCheckInterval: cfg.RefreshInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize web server: %w", err)
	}

	if err := webServer.Run(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("web server stopped")
	return nil
}

// assetSource layers the configured asset overrides over the embedded assets.
func assetSource(ctx context.Context) (assets.Source, error) {
	staticFS, err := api.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("failed to create static filesystem: %w", err)
	}

	var chain assets.Chain
	if cfg.AssetsDir != "" {
		dir, err := assets.NewDirSource(cfg.AssetsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open assets dir: %w", err)
		}
		chain = append(chain, dir)
		slog.Info("serving assets from directory", "dir", cfg.AssetsDir)
	}
	if cfg.AssetsS3Bucket != "" {
		bucket, err := assets.NewS3Source(ctx, cfg.AssetsS3Bucket, cfg.AWSProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 assets: %w", err)
		}
		chain = append(chain, bucket)
		slog.Info("serving assets from s3", "bucket", cfg.AssetsS3Bucket)
	}
	return append(chain, assets.NewEmbeddedSource(staticFS)), nil
}
