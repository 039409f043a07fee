package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "frame.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppSettings_BootstrapDefaults(t *testing.T) {
	db := newTestDatabase(t)

	s, err := db.GetAppSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *s != *DefaultAppSettings() {
		t.Errorf("expected defaults, got %+v", s)
	}
	if s.Interval() != 10*time.Second || s.TransitionDelay() != time.Second {
		t.Errorf("unexpected durations: %v, %v", s.Interval(), s.TransitionDelay())
	}
}

func TestAppSettings_Upsert(t *testing.T) {
	db := newTestDatabase(t)

	want := &AppSettings{
		SlideshowIntervalSeconds: 30,
		RandomizeOrder:           false,
		ShowPhotographer:         false,
		ShowLocation:             true,
		TransitionDelayMillis:    0,
	}
	if err := db.UpsertAppSettings(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetAppSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestAppSettings_Invalid(t *testing.T) {
	db := newTestDatabase(t)

	tests := []*AppSettings{
		{SlideshowIntervalSeconds: 0, TransitionDelayMillis: 100},
		{SlideshowIntervalSeconds: 5, TransitionDelayMillis: -1},
	}
	for _, s := range tests {
		if err := db.UpsertAppSettings(s); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("%+v: expected ErrInvalidSettings, got %v", s, err)
		}
	}
}

func TestSchedule(t *testing.T) {
	db := newTestDatabase(t)

	s, err := db.GetSchedule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Enabled || s.Start != "06:00" || s.End != "23:00" {
		t.Errorf("unexpected default schedule: %+v", s)
	}

	want := &Schedule{Enabled: true, Start: "07:30", End: "22:15"}
	if err := db.UpsertSchedule(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := db.GetSchedule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := db.UpsertSchedule(&Schedule{Enabled: true, Start: "7am", End: "22:00"}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
