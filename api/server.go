// Package api is the main api web server
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aouyang1/flickrframe/api/models"
	"github.com/aouyang1/flickrframe/api/web/templates"
	"github.com/aouyang1/flickrframe/assets"
	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/aouyang1/flickrframe/store"
	"github.com/aouyang1/flickrframe/surface"
)

const shutdownTimeout = 5 * time.Second

//go:embed web/static
var webFiles embed.FS

// StaticFS is the embedded display assets, rooted at web/static.
func StaticFS() (fs.FS, error) {
	return fs.Sub(webFiles, "web/static")
}

type Options struct {
	DB *store.Database

	// Flickr serves the proxy route. Nil answers every proxy request with an
	// error.
	Flickr PhotosetFetcher

	// Source feeds the slideshow sessions, normally the proxy itself.
	Source slideshow.PhotoSource

	// Assets serves every path no route matches. Nil uses the embedded assets.
	Assets assets.Source

	Slideshow slideshow.Options

	// PhotosetCheckInterval is how often the photoset is checked for added or
	// removed photos.
	PhotosetCheckInterval time.Duration
}

type WebServer struct {
	router *gin.Engine
	db     *store.Database
	hub    *surface.Hub
	flickr PhotosetFetcher
	assets assets.Source
	params slideshow.Params

	carouselManager *CarouselManager
	scheduleManager *ScheduleManager
	photosetManager *PhotosetManager
}

func NewWebServer(opts Options) (*WebServer, error) {
	router := gin.New()
	router.Use(gin.Logger(), gin.CustomRecovery(recoverInternalError))

	src := opts.Assets
	if src == nil {
		staticFS, err := StaticFS()
		if err != nil {
			return nil, fmt.Errorf("failed to create static filesystem: %w", err)
		}
		src = assets.NewEmbeddedSource(staticFS)
	}

	hub := surface.NewHub()
	carouselManager, err := NewCarouselManager(opts.DB, hub, opts.Source, opts.Slideshow)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize carousel manager: %w", err)
	}
	scheduleManager, err := NewScheduleManager(opts.DB, carouselManager)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schedule manager: %w", err)
	}
	photosetManager, err := NewPhotosetManager(opts.Source, carouselManager, opts.PhotosetCheckInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photoset manager: %w", err)
	}

	ws := &WebServer{
		router:          router,
		db:              opts.DB,
		hub:             hub,
		flickr:          opts.Flickr,
		assets:          src,
		params:          opts.Slideshow.Params,
		carouselManager: carouselManager,
		scheduleManager: scheduleManager,
		photosetManager: photosetManager,
	}

	ws.setupRoutes()
	return ws, nil
}

func (ws *WebServer) setupRoutes() {
	ws.router.Any("/flickr-api-proxy/*path", ws.handleFlickrProxy)

	ws.router.GET("/", ws.handleIndex)
	ws.router.GET("/ws", ws.handleWebSocket)
	ws.router.GET("/favicon.ico", func(c *gin.Context) {
		c.Request.URL.Path = "/images/favicon.svg"
		assets.Handler(ws.assets).ServeHTTP(c.Writer, c.Request)
	})

	// API routes
	ws.router.GET("/slideshow/status", ws.handleStatus)
	ws.router.POST("/slideshow/next", ws.handleSlideshowAction("next", (*slideshow.Carousel).Next))
	ws.router.POST("/slideshow/previous", ws.handleSlideshowAction("previous", (*slideshow.Carousel).Previous))
	ws.router.POST("/slideshow/pause", ws.handleSlideshowAction("pause", (*slideshow.Carousel).Pause))
	ws.router.POST("/slideshow/resume", ws.handleSlideshowAction("resume", (*slideshow.Carousel).Resume))
	ws.router.POST("/slideshow/play/:id", ws.handlePlayFromPhoto)
	ws.router.GET("/settings", ws.handleGetSettings)
	ws.router.PUT("/settings", ws.handleUpdateSettings)
	ws.router.GET("/schedule", ws.handleGetSchedule)
	ws.router.PUT("/schedule", ws.handleUpdateSchedule)

	// everything else is a static asset
	ws.router.NoRoute(gin.WrapH(assets.Handler(ws.assets)))
}

// Handler exposes the router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Run serves on addr and runs the slideshow until ctx is cancelled.
func (ws *WebServer) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ws.Serve(ctx, ln)
}

// Serve runs the slideshow and serves on ln until ctx is cancelled. The
// managers start only once ln is bound so the first session can reach the
// proxy.
func (ws *WebServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: ws.router}

	go ws.hub.Run()
	defer ws.hub.Stop()

	go ws.carouselManager.Run(ctx)
	go ws.scheduleManager.Run(ctx)
	go ws.photosetManager.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web server shutdown", "error", err)
		}
	}()

	slog.Info("starting web server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	return nil
}

func (ws *WebServer) handleIndex(c *gin.Context) {
	params := ws.params.Merge(slideshow.ParseParams(c.Request.URL.Query()))

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := templates.IndexPage(params).Render(c.Request.Context(), c.Writer); err != nil {
		slog.Error("failed to render index page", "error", err)
	}
}

func (ws *WebServer) handleWebSocket(c *gin.Context) {
	if err := ws.hub.ServeWS(c.Writer, c.Request); err != nil {
		slog.Warn("display connection rejected", "error", err)
	}
}

func (ws *WebServer) currentCarousel(c *gin.Context) (*slideshow.Carousel, bool) {
	carousel, err := ws.carouselManager.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Slideshow is not running"})
		return nil, false
	}
	return carousel, true
}

func (ws *WebServer) handleStatus(c *gin.Context) {
	carousel, ok := ws.currentCarousel(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:   carousel.Status(),
		Params:   ws.params,
		Surfaces: ws.hub.ClientCount(),
	})
}

func slideshowErrorStatus(err error) int {
	switch {
	case errors.Is(err, slideshow.ErrPhotoNotFound):
		return http.StatusNotFound
	case errors.Is(err, slideshow.ErrLoading):
		return http.StatusConflict
	case errors.Is(err, slideshow.ErrNotRunning):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (ws *WebServer) handleSlideshowAction(action string, fn func(*slideshow.Carousel) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		carousel, ok := ws.currentCarousel(c)
		if !ok {
			return
		}

		if err := fn(carousel); err != nil {
			c.JSON(slideshowErrorStatus(err), models.ErrorResponse{Error: fmt.Sprintf("Failed to %s slideshow: %v", action, err)})
			return
		}
		c.JSON(http.StatusOK, models.ActionResponse{Action: action, Status: carousel.Status()})
	}
}

func (ws *WebServer) handlePlayFromPhoto(c *gin.Context) {
	photoID := c.Param("id")
	if photoID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Photo id is required"})
		return
	}

	carousel, ok := ws.currentCarousel(c)
	if !ok {
		return
	}

	if err := carousel.JumpTo(photoID); err != nil {
		c.JSON(slideshowErrorStatus(err), models.ErrorResponse{Error: fmt.Sprintf("Failed to play from photo: %v", err)})
		return
	}
	c.JSON(http.StatusOK, models.ActionResponse{Action: "play", Status: carousel.Status()})
}

func (ws *WebServer) handleGetSettings(c *gin.Context) {
	settings, err := ws.db.GetAppSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get settings: %v", err)})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (ws *WebServer) handleUpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	newSettings := &store.AppSettings{
		SlideshowIntervalSeconds: req.SlideshowIntervalSeconds,
		RandomizeOrder:           req.RandomizeOrder,
		ShowPhotographer:         req.ShowPhotographer,
		ShowLocation:             req.ShowLocation,
		TransitionDelayMillis:    req.TransitionDelayMillis,
	}
	if err := newSettings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ws.db.UpsertAppSettings(newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update settings: %v", err)})
		return
	}

	// After updating settings, restart the slideshow with the new configuration.
	ws.carouselManager.Notify()

	c.JSON(http.StatusOK, newSettings)
}

func (ws *WebServer) handleGetSchedule(c *gin.Context) {
	schedule, err := ws.db.GetSchedule()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get schedule: %v", err)})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

var validScheduleTime = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

func (ws *WebServer) handleUpdateSchedule(c *gin.Context) {
	var req store.Schedule
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if !validScheduleTime.MatchString(req.Start) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid start time format: need 23:15, got %s", req.Start)})
		return
	}

	if !validScheduleTime.MatchString(req.End) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid end time format: need 23:15, got %s", req.End)})
		return
	}

	newSchedule := &store.Schedule{
		Enabled: req.Enabled,
		Start:   req.Start,
		End:     req.End,
	}

	if err := ws.db.UpsertSchedule(newSchedule); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update schedule: %v", err)})
		return
	}

	// apply the new window now rather than at the next minute
	ws.scheduleManager.checkSchedule()

	c.JSON(http.StatusOK, newSchedule)
}
