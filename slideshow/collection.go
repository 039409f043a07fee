package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

//go:generate mockgen -source=collection.go -destination=mocks/mock_source.go -package=mocks

// ErrNoPhotos is returned when initialization ends with an empty collection.
var ErrNoPhotos = errors.New("no photos available to display")

// PhotoSource supplies the raw photo list for a session.
type PhotoSource interface {
	FetchPhotos(ctx context.Context) ([]Photo, error)
}

// Filter keeps the photos that have a usable image URL at viewportWidth,
// preserving order.
func Filter(photos []Photo, viewportWidth int) []Photo {
	filtered := make([]Photo, 0, len(photos))
	for _, p := range photos {
		if _, ok := BestImageURL(p, viewportWidth); ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Shuffle returns a uniformly shuffled copy of photos using Fisher-Yates.
// A nil rng uses the global source.
func Shuffle(photos []Photo, rng *rand.Rand) []Photo {
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	shuffled := make([]Photo, len(photos))
	copy(shuffled, photos)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Initialize fetches the photo list once, drops unusable records and
// optionally shuffles the rest. Any path that ends with no photos returns
// ErrNoPhotos, wrapping the fetch error if there was one.
func Initialize(ctx context.Context, src PhotoSource, viewportWidth int, randomize bool, rng *rand.Rand) ([]Photo, error) {
	all, err := src.FetchPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPhotos, err)
	}

	photos := Filter(all, viewportWidth)
	slog.Info("photos loaded", "fetched", len(all), "usable", len(photos))
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}

	if randomize {
		photos = Shuffle(photos, rng)
		slog.Debug("photos shuffled into random order")
	}
	return photos, nil
}
