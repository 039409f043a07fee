package store

import "time"

// AppSettings are the slideshow behavior settings that survive restarts.
type AppSettings struct {
	SlideshowIntervalSeconds int  `json:"slideshow_interval_seconds"`
	RandomizeOrder           bool `json:"randomize_order"`
	ShowPhotographer         bool `json:"show_photographer"`
	ShowLocation             bool `json:"show_location"`
	TransitionDelayMillis    int  `json:"transition_delay_ms"`
}

func (s *AppSettings) Interval() time.Duration {
	return time.Duration(s.SlideshowIntervalSeconds) * time.Second
}

func (s *AppSettings) TransitionDelay() time.Duration {
	return time.Duration(s.TransitionDelayMillis) * time.Millisecond
}

// Schedule is the daily window the slideshow plays in. Outside of it the
// slideshow is paused.
type Schedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}
