package slideshow_test

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/aouyang1/flickrframe/slideshow/mocks"
	"go.uber.org/mock/gomock"
)

func makePhotos(n int) []slideshow.Photo {
	photos := make([]slideshow.Photo, n)
	for i := range photos {
		id := strconv.Itoa(i)
		photos[i] = slideshow.Photo{ID: id, URLs: map[string]string{"b": "https://img/" + id + "_b.jpg"}}
	}
	return photos
}

func ids(photos []slideshow.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}

func TestShuffle_IsPermutation(t *testing.T) {
	for n := range 12 {
		photos := makePhotos(n)
		want := ids(photos)
		slices.Sort(want)

		for seed := int64(0); seed < 200; seed++ {
			shuffled := slideshow.Shuffle(photos, rand.New(rand.NewSource(seed)))
			got := ids(shuffled)
			slices.Sort(got)
			if !slices.Equal(got, want) {
				t.Fatalf("n=%d seed=%d: shuffle is not a permutation: %v", n, seed, got)
			}
		}

		if !slices.Equal(ids(photos), ids(makePhotos(n))) {
			t.Fatalf("n=%d: shuffle mutated its input", n)
		}
	}
}

func TestShuffle_ReachesEveryPosition(t *testing.T) {
	photos := makePhotos(4)
	rng := rand.New(rand.NewSource(42))
	firsts := make(map[string]int)
	for range 4000 {
		firsts[slideshow.Shuffle(photos, rng)[0].ID]++
	}
	for _, id := range ids(photos) {
		// expected ~1000 each
		if firsts[id] < 800 || firsts[id] > 1200 {
			t.Errorf("photo %s led %d of 4000 shuffles", id, firsts[id])
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	photos := makePhotos(5)
	photos[1].URLs = map[string]string{}
	photos[3].URLs = map[string]string{"6k": "https://img/3_6k.jpg"}

	for _, width := range []int{800, 1920, 6000} {
		once := slideshow.Filter(photos, width)
		twice := slideshow.Filter(once, width)
		if !slices.Equal(ids(once), ids(twice)) {
			t.Errorf("width %d: filter not idempotent: %v vs %v", width, ids(once), ids(twice))
		}
	}

	if got := ids(slideshow.Filter(photos, 1920)); !slices.Equal(got, []string{"0", "2", "4"}) {
		t.Errorf("unexpected filter result at 1920: %v", got)
	}
	if got := ids(slideshow.Filter(photos, 6000)); !slices.Equal(got, []string{"0", "2", "3", "4"}) {
		t.Errorf("unexpected filter result at 6000: %v", got)
	}
}

func TestInitialize(t *testing.T) {
	fetchErr := errors.New("connection refused")

	tests := []struct {
		name      string
		setupMock func(*mocks.MockPhotoSource)
		randomize bool
		wantErr   error
		wantIDs   []string
	}{
		{
			name: "Success - Source Order Kept",
			setupMock: func(m *mocks.MockPhotoSource) {
				m.EXPECT().FetchPhotos(gomock.Any()).Return(makePhotos(3), nil)
			},
			wantIDs: []string{"0", "1", "2"},
		},
		{
			name: "Success - Unusable Photos Dropped",
			setupMock: func(m *mocks.MockPhotoSource) {
				photos := makePhotos(3)
				photos[1].URLs = nil
				m.EXPECT().FetchPhotos(gomock.Any()).Return(photos, nil)
			},
			wantIDs: []string{"0", "2"},
		},
		{
			name: "Error - Fetch Failure",
			setupMock: func(m *mocks.MockPhotoSource) {
				m.EXPECT().FetchPhotos(gomock.Any()).Return(nil, fetchErr)
			},
			wantErr: fetchErr,
		},
		{
			name: "Error - Empty Source",
			setupMock: func(m *mocks.MockPhotoSource) {
				m.EXPECT().FetchPhotos(gomock.Any()).Return([]slideshow.Photo{}, nil)
			},
			wantErr: slideshow.ErrNoPhotos,
		},
		{
			name: "Error - All Unusable",
			setupMock: func(m *mocks.MockPhotoSource) {
				photos := makePhotos(3)
				for i := range photos {
					photos[i].URLs = map[string]string{"thumbnail": "https://img/t.jpg"}
				}
				m.EXPECT().FetchPhotos(gomock.Any()).Return(photos, nil)
			},
			randomize: true,
			wantErr:   slideshow.ErrNoPhotos,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			src := mocks.NewMockPhotoSource(ctrl)
			tt.setupMock(src)

			photos, err := slideshow.Initialize(context.Background(), src, 1920, tt.randomize, rand.New(rand.NewSource(1)))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if !errors.Is(err, slideshow.ErrNoPhotos) {
					t.Errorf("every initialization failure should be ErrNoPhotos, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(ids(photos), tt.wantIDs) {
				t.Errorf("expected %v, got %v", tt.wantIDs, ids(photos))
			}
		})
	}
}

func TestInitialize_Randomized(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPhotoSource(ctrl)
	src.EXPECT().FetchPhotos(gomock.Any()).Return(makePhotos(20), nil)

	photos, err := slideshow.Initialize(context.Background(), src, 1920, true, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ids(photos)
	want := ids(makePhotos(20))
	if slices.Equal(got, want) {
		t.Error("expected a shuffled order")
	}
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("randomized collection lost photos: %v", got)
	}
}
