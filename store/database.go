// Package store database for slideshow settings and schedule
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeOfDayLayout = "15:04"

var ErrInvalidSettings = errors.New("invalid settings")

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return database, nil
}

func (d *Database) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS app_settings (
		singleton INTEGER NOT NULL DEFAULT 1 CHECK (singleton = 1),
		slideshow_interval_seconds INTEGER NOT NULL,
		randomize_order            INTEGER NOT NULL,
		show_photographer          INTEGER NOT NULL,
		show_location              INTEGER NOT NULL,
		transition_delay_ms        INTEGER NOT NULL,
		PRIMARY KEY (singleton)
	);
	CREATE TABLE IF NOT EXISTS schedule (
		singleton INTEGER NOT NULL DEFAULT 1 CHECK (singleton = 1),
		enabled INTEGER NOT NULL,
		start   TEXT NOT NULL,
		end     TEXT NOT NULL,
		PRIMARY KEY (singleton)
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// DefaultAppSettings match the slideshow defaults: a 10 second interval,
// random order, photographer and location shown, 1 second transitions.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		SlideshowIntervalSeconds: 10,
		RandomizeOrder:           true,
		ShowPhotographer:         true,
		ShowLocation:             true,
		TransitionDelayMillis:    1000,
	}
}

func (s *AppSettings) Validate() error {
	if s.SlideshowIntervalSeconds <= 0 {
		return fmt.Errorf("%w: slideshow interval must be positive, got %d", ErrInvalidSettings, s.SlideshowIntervalSeconds)
	}
	if s.TransitionDelayMillis < 0 {
		return fmt.Errorf("%w: transition delay cannot be negative, got %d", ErrInvalidSettings, s.TransitionDelayMillis)
	}
	return nil
}

func (s *Schedule) Validate() error {
	if _, err := time.Parse(timeOfDayLayout, s.Start); err != nil {
		return fmt.Errorf("%w: start must be HH:MM, got %q", ErrInvalidSettings, s.Start)
	}
	if _, err := time.Parse(timeOfDayLayout, s.End); err != nil {
		return fmt.Errorf("%w: end must be HH:MM, got %q", ErrInvalidSettings, s.End)
	}
	return nil
}

func (d *Database) GetAppSettings() (*AppSettings, error) {
	const query = `
		SELECT slideshow_interval_seconds,
		       randomize_order,
		       show_photographer,
		       show_location,
		       transition_delay_ms
		FROM app_settings
		WHERE singleton = 1
	`

	var s AppSettings
	err := d.db.QueryRow(query).Scan(
		&s.SlideshowIntervalSeconds,
		&s.RandomizeOrder,
		&s.ShowPhotographer,
		&s.ShowLocation,
		&s.TransitionDelayMillis,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Bootstrap defaults if no settings row exists yet
		defaults := DefaultAppSettings()
		if err := d.UpsertAppSettings(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get app settings: %w", err)
	}
	return &s, nil
}

func (d *Database) UpsertAppSettings(s *AppSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	const stmt = `
		INSERT INTO app_settings (
			singleton,
			slideshow_interval_seconds,
			randomize_order,
			show_photographer,
			show_location,
			transition_delay_ms
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			slideshow_interval_seconds = excluded.slideshow_interval_seconds,
			randomize_order            = excluded.randomize_order,
			show_photographer          = excluded.show_photographer,
			show_location              = excluded.show_location,
			transition_delay_ms        = excluded.transition_delay_ms
	`

	_, err := d.db.Exec(
		stmt,
		s.SlideshowIntervalSeconds,
		boolToInt(s.RandomizeOrder),
		boolToInt(s.ShowPhotographer),
		boolToInt(s.ShowLocation),
		s.TransitionDelayMillis,
	)
	if err != nil {
		return fmt.Errorf("upsert app settings: %w", err)
	}
	return nil
}

func (d *Database) GetSchedule() (*Schedule, error) {
	const query = `
		SELECT enabled,
		       start,
		       end
		FROM schedule
		WHERE singleton = 1
	`

	var enabled bool
	var start, end string

	err := d.db.QueryRow(query).Scan(&enabled, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		// the frame plays all day until a schedule is set
		defaults := &Schedule{
			Enabled: false,
			Start:   "06:00",
			End:     "23:00",
		}
		if err := d.UpsertSchedule(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	return &Schedule{
		Enabled: enabled,
		Start:   start,
		End:     end,
	}, nil
}

func (d *Database) UpsertSchedule(s *Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	const stmt = `
		INSERT INTO schedule (
			singleton,
			enabled,
			start,
			end
		) VALUES (1, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			enabled = excluded.enabled,
			start   = excluded.start,
			end     = excluded.end
	`

	_, err := d.db.Exec(
		stmt,
		boolToInt(s.Enabled),
		s.Start,
		s.End,
	)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d *Database) Close() error {
	return d.db.Close()
}
