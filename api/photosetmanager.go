package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/aouyang1/flickrframe/slideshow"
)

const defaultPhotosetCheckInterval = time.Hour

// notifier is told when the photoset changed.
type notifier interface {
	Notify()
}

// PhotosetManager periodically fetches the photoset and restarts the slideshow
// when photos were added to or removed from it.
type PhotosetManager struct {
	source   slideshow.PhotoSource
	notifier notifier
	interval time.Duration

	trackedPhotos mapset.Set[string]
	// missedFirst is set when scans failed before any succeeded. The session
	// started alongside them has likely failed its fetch too.
	missedFirst bool
}

func NewPhotosetManager(source slideshow.PhotoSource, n notifier, interval time.Duration) (*PhotosetManager, error) {
	if source == nil {
		return nil, errors.New("no photo source provided for photoset manager")
	}
	if n == nil {
		return nil, errors.New("no notifier provided for photoset manager")
	}
	if interval <= 0 {
		interval = defaultPhotosetCheckInterval
	}

	return &PhotosetManager{
		source:   source,
		notifier: n,
		interval: interval,
	}, nil
}

func (p *PhotosetManager) getCurrentPhotos(ctx context.Context) (mapset.Set[string], error) {
	photos, err := p.source.FetchPhotos(ctx)
	if err != nil {
		return nil, err
	}

	current := mapset.NewSet[string]()
	for _, photo := range photos {
		current.Add(photo.ID)
	}
	return current, nil
}

func (p *PhotosetManager) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial scan
	p.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

// scan records the current photo ids and reports whether they differ from
// the last successful scan. The first scan only records, unless earlier scans
// failed, then it restarts the slideshow.
func (p *PhotosetManager) scan(ctx context.Context) bool {
	current, err := p.getCurrentPhotos(ctx)
	if err != nil {
		slog.Warn("error checking photoset for changes", "error", err)
		if p.trackedPhotos == nil {
			p.missedFirst = true
		}
		return false
	}

	if p.trackedPhotos == nil {
		p.trackedPhotos = current
		slog.Debug("tracking photoset", "photos", current.Cardinality())
		if !p.missedFirst {
			return false
		}
		slog.Info("photoset reachable again, restarting slideshow", "photos", current.Cardinality())
		p.notifier.Notify()
		return true
	}

	added := current.Difference(p.trackedPhotos)
	removed := p.trackedPhotos.Difference(current)
	p.trackedPhotos = current

	if added.Cardinality() == 0 && removed.Cardinality() == 0 {
		return false
	}

	slog.Info("photoset changed, restarting slideshow", "added", added.Cardinality(), "removed", removed.Cardinality())
	p.notifier.Notify()
	return true
}
