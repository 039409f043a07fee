package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/aouyang1/flickrframe/store"
	"github.com/aouyang1/flickrframe/surface"
)

var ErrNoSession = errors.New("no slideshow session")

// CarouselManager owns the running slideshow session. A session is restarted
// whenever settings change, with the stored settings applied on top of the
// base options.
type CarouselManager struct {
	db     *store.Database
	hub    *surface.Hub
	source slideshow.PhotoSource
	base   slideshow.Options

	mu      sync.Mutex
	current *slideshow.Carousel
	cancel  context.CancelFunc
	held    bool

	Updated chan bool
}

func NewCarouselManager(db *store.Database, hub *surface.Hub, source slideshow.PhotoSource, base slideshow.Options) (*CarouselManager, error) {
	if db == nil {
		return nil, errors.New("no database provided for carousel manager")
	}
	if hub == nil {
		return nil, errors.New("no display hub provided for carousel manager")
	}
	if source == nil {
		return nil, errors.New("no photo source provided for carousel manager")
	}

	return &CarouselManager{
		db:      db,
		hub:     hub,
		source:  source,
		base:    base,
		Updated: make(chan bool, 1),
	}, nil
}

// Notify asks Run to restart the session. Requests made while a restart is
// already pending are merged.
func (m *CarouselManager) Notify() {
	select {
	case m.Updated <- true:
	default:
	}
}

// Current returns the running session, if any.
func (m *CarouselManager) Current() (*slideshow.Carousel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current, nil
}

// Hold pauses the session and keeps restarted sessions paused until it is
// released. Holding twice or releasing twice does nothing.
func (m *CarouselManager) Hold(hold bool) error {
	m.mu.Lock()
	if m.held == hold {
		m.mu.Unlock()
		return nil
	}
	m.held = hold
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return nil
	}

	var err error
	if hold {
		err = current.Pause()
	} else {
		err = current.Resume()
	}
	if errors.Is(err, slideshow.ErrLoading) {
		// the session started before the hold changed, restart it with the new state
		m.Notify()
		return nil
	}
	return err
}

func (m *CarouselManager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

func (m *CarouselManager) options() (slideshow.Options, error) {
	settings, err := m.db.GetAppSettings()
	if err != nil {
		return slideshow.Options{}, err
	}

	opts := m.base
	opts.Interval = settings.Interval()
	opts.TransitionDelay = settings.TransitionDelay()
	opts.RandomOrder = settings.RandomizeOrder
	opts.ShowPhotographer = settings.ShowPhotographer
	opts.ShowLocation = settings.ShowLocation
	return opts, nil
}

func (m *CarouselManager) start(ctx context.Context) error {
	opts, err := m.options()
	if err != nil {
		return err
	}

	m.mu.Lock()
	opts.StartPaused = m.held
	m.mu.Unlock()

	carousel, err := slideshow.New(m.source, m.hub, opts)
	if err != nil {
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	m.hub.Reset()
	m.hub.SetController(carousel)

	m.mu.Lock()
	m.current = carousel
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		if err := carousel.Run(sessionCtx); err != nil {
			slog.Error("slideshow session ended", "error", err)
		}
	}()
	slog.Info("slideshow session started", "interval", opts.Interval, "random", opts.RandomOrder, "paused", opts.StartPaused)
	return nil
}

func (m *CarouselManager) stop() {
	m.mu.Lock()
	current, cancel := m.current, m.cancel
	m.current, m.cancel = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	m.hub.SetController(nil)
	cancel()
	<-current.Done()
}

func (m *CarouselManager) restart(ctx context.Context) {
	m.stop()
	if err := m.start(ctx); err != nil {
		slog.Error("error while starting slideshow", "error", err)
	}
}

// Run starts the first session and restarts it on every update until ctx is
// cancelled.
func (m *CarouselManager) Run(ctx context.Context) {
	m.restart(ctx)
	defer m.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.Updated:
			slog.Info("settings updated, restarting slideshow")
			m.restart(ctx)
		}
	}
}
