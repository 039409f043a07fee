// Package models tracks all api models for request and responses
package models

import (
	"encoding/json"

	"github.com/aouyang1/flickrframe/slideshow"
)

// ProxyResponse is the body of a /flickr-api-proxy/ reply once Flickr has
// answered, whatever its stat.
type ProxyResponse struct {
	Success bool              `json:"success"`
	Photos  []json.RawMessage `json:"photos"`
	Message string            `json:"message"`
}

// ProxyErrorResponse is returned when Flickr could not be reached or the
// request failed inside the server.
type ProxyErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UpdateSettingsRequest struct {
	SlideshowIntervalSeconds int  `json:"slideshow_interval_seconds"`
	RandomizeOrder           bool `json:"randomize_order"`
	ShowPhotographer         bool `json:"show_photographer"`
	ShowLocation             bool `json:"show_location"`
	TransitionDelayMillis    int  `json:"transition_delay_ms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	slideshow.Status
	Params   slideshow.Params `json:"params"`
	Surfaces int              `json:"surfaces"`
}

type ActionResponse struct {
	Action string `json:"action"`
	slideshow.Status
}
