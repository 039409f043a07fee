package slideshow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const urlFieldPrefix = "url_"

// Photo is a single Flickr photoset record as returned by the proxy. Only the
// fields the slideshow reads are decoded; sized image URLs are kept by suffix.
type Photo struct {
	ID          string
	Title       string
	Description string
	Latitude    string
	Longitude   string
	OwnerName   string
	Owner       string

	// URLs maps a size suffix ("b", "k", "4k", "o", ...) to its image URL.
	URLs map[string]string
}

// URL returns the image URL for the given size suffix, or an empty string.
func (p Photo) URL(suffix string) string {
	return p.URLs[suffix]
}

// HasLocation reports whether the photo carries a usable geo tag. Flickr
// reports untagged photos with a latitude/longitude of "0".
func (p Photo) HasLocation() bool {
	return p.Latitude != "" && p.Longitude != "" && p.Latitude != "0" && p.Longitude != "0"
}

type rawPhoto struct {
	ID          flexString      `json:"id"`
	Title       string          `json:"title"`
	Description json.RawMessage `json:"description"`
	Latitude    flexString      `json:"latitude"`
	Longitude   flexString      `json:"longitude"`
	OwnerName   string          `json:"ownername"`
	Owner       string          `json:"owner"`
}

func (p *Photo) UnmarshalJSON(data []byte) error {
	var raw rawPhoto
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode photo: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode photo fields: %w", err)
	}

	urls := make(map[string]string)
	for key, value := range fields {
		if !strings.HasPrefix(key, urlFieldPrefix) {
			continue
		}
		var u string
		if err := json.Unmarshal(value, &u); err != nil || u == "" {
			continue
		}
		urls[strings.TrimPrefix(key, urlFieldPrefix)] = u
	}

	*p = Photo{
		ID:          string(raw.ID),
		Title:       raw.Title,
		Description: decodeDescription(raw.Description),
		Latitude:    string(raw.Latitude),
		Longitude:   string(raw.Longitude),
		OwnerName:   raw.OwnerName,
		Owner:       raw.Owner,
		URLs:        urls,
	}
	return nil
}

// decodeDescription accepts both the Flickr form {"_content": "..."} and a
// plain string.
func decodeDescription(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var content struct {
		Content string `json:"_content"`
	}
	if err := json.Unmarshal(data, &content); err == nil {
		return content.Content
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return ""
}

// flexString decodes a JSON string or number into its textual form. Flickr
// returns geo coordinates as numbers for some photosets and strings for others.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
