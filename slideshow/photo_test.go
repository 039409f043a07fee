package slideshow

import (
	"encoding/json"
	"testing"
)

func TestPhoto_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"id": "53012345678",
		"title": "Golden Gate",
		"description": {"_content": "Fog rolling in"},
		"latitude": "37.8199",
		"longitude": -122.4783,
		"ownername": "aouyang",
		"owner": "12345@N00",
		"url_b": "https://live.staticflickr.com/b.jpg",
		"height_b": 683,
		"url_k": "https://live.staticflickr.com/k.jpg",
		"url_o": ""
	}`)

	var p Photo
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.ID != "53012345678" {
		t.Errorf("ID: expected '53012345678', got '%s'", p.ID)
	}
	if p.Description != "Fog rolling in" {
		t.Errorf("Description: expected 'Fog rolling in', got '%s'", p.Description)
	}
	if p.Latitude != "37.8199" || p.Longitude != "-122.4783" {
		t.Errorf("Location: got %s, %s", p.Latitude, p.Longitude)
	}
	if len(p.URLs) != 2 {
		t.Errorf("expected 2 urls, got %d: %v", len(p.URLs), p.URLs)
	}
	if p.URL("k") != "https://live.staticflickr.com/k.jpg" {
		t.Errorf("url_k not decoded: %v", p.URLs)
	}
	if p.URL("o") != "" {
		t.Errorf("empty url_o should be dropped, got %q", p.URL("o"))
	}
}

func TestPhoto_HasLocation(t *testing.T) {
	tests := []struct {
		lat, lon string
		want     bool
	}{
		{"12.3", "45.6", true},
		{"0", "10", false},
		{"10", "0", false},
		{"", "45.6", false},
		{"0", "0", false},
	}

	for _, tt := range tests {
		p := Photo{Latitude: tt.lat, Longitude: tt.lon}
		if got := p.HasLocation(); got != tt.want {
			t.Errorf("HasLocation(%q, %q): expected %v, got %v", tt.lat, tt.lon, tt.want, got)
		}
	}
}

func TestBuildInfo(t *testing.T) {
	opts := DefaultOptions()
	opts.UserID = "12345@N00"

	located := Photo{ID: "1", Title: "Bridge", Latitude: "12.3", Longitude: "45.6", OwnerName: "ann"}
	unlocated := Photo{ID: "2", Latitude: "0", Longitude: "10"}

	info := buildInfo(located, true, opts)
	if info.Location != "Location: 12.3, 45.6" || !info.ShowLocation {
		t.Errorf("expected visible location, got %q (shown %v)", info.Location, info.ShowLocation)
	}
	if info.Photographer != "Photographer: ann" || !info.ShowPhotographer {
		t.Errorf("unexpected photographer %q (shown %v)", info.Photographer, info.ShowPhotographer)
	}
	if info.PageURL != "https://www.flickr.com/photos/12345@N00/1" {
		t.Errorf("unexpected page url %q", info.PageURL)
	}

	collapsed := buildInfo(located, false, opts)
	if collapsed.ShowLocation || collapsed.ShowDescription || collapsed.ShowPhotographer {
		t.Errorf("collapsed info should only show the title: %+v", collapsed)
	}

	info = buildInfo(unlocated, true, opts)
	if info.ShowLocation || info.Location != "" {
		t.Errorf("location should be hidden for latitude 0, got %q", info.Location)
	}
	if info.Title != "Untitled" || info.Description != "No description available" || info.Photographer != "Photographer: Unknown" {
		t.Errorf("unexpected fallbacks: %+v", info)
	}

	noLocation := opts
	noLocation.ShowLocation = false
	if info := buildInfo(located, true, noLocation); info.ShowLocation {
		t.Error("location should be hidden when location display is disabled")
	}

	hidden := opts
	hidden.Params.HideInfo = true
	if info := buildInfo(located, true, hidden); info.ShowLocation || info.ShowDescription || !info.Hidden {
		t.Errorf("hideInfo should hide every detail: %+v", info)
	}
}
