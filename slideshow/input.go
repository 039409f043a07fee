package slideshow

import (
	"math"
	"net/url"

	mapset "github.com/deckarep/golang-set/v2"
)

// Params are the presentation switches a display can be opened with.
type Params struct {
	HideInfo           bool `json:"hide_info"`
	DisableTransitions bool `json:"disable_transitions"`
	FillImage          bool `json:"fill_image"`
}

const (
	ParamHideInfo           = "hideInfo"
	ParamDisableTransitions = "disableTransitions"
	ParamFillImage          = "fillImage"
)

// ParseParams reads the display switches from a query string. A switch is on
// when its key is present, whatever its value.
func ParseParams(q url.Values) Params {
	return Params{
		HideInfo:           q.Has(ParamHideInfo),
		DisableTransitions: q.Has(ParamDisableTransitions),
		FillImage:          q.Has(ParamFillImage),
	}
}

// Merge turns on every switch set in either p or other.
func (p Params) Merge(other Params) Params {
	return Params{
		HideInfo:           p.HideInfo || other.HideInfo,
		DisableTransitions: p.DisableTransitions || other.DisableTransitions,
		FillImage:          p.FillImage || other.FillImage,
	}
}

// Values is the query string form of p, the inverse of ParseParams.
func (p Params) Values() url.Values {
	q := url.Values{}
	if p.HideInfo {
		q.Set(ParamHideInfo, "")
	}
	if p.DisableTransitions {
		q.Set(ParamDisableTransitions, "")
	}
	if p.FillImage {
		q.Set(ParamFillImage, "")
	}
	return q
}

// AcceptsKey reports whether a display opened with p may send key. A display
// without the info panel has no fullscreen or info controls.
func (p Params) AcceptsKey(key string) bool {
	if !p.HideInfo {
		return true
	}
	return key != KeyFullscreen && key != keyInfo
}

var (
	nextKeys     = mapset.NewSet("ArrowRight", "n", "l")
	previousKeys = mapset.NewSet("ArrowLeft", "p", "h")
)

// KeyFullscreen toggles fullscreen on the display it was pressed on.
const KeyFullscreen = "f"

const (
	keyPause   = " "
	keyFitMode = "m"
	keyInfo    = "i"
)

// swipeThreshold is the minimum horizontal travel in pixels for a swipe.
const swipeThreshold = 50

// swipeStep converts a touch gesture into a navigation step. dx and dy are
// start minus end, so a leftward swipe has a positive dx and moves forward.
func swipeStep(dx, dy float64) int {
	if math.Abs(dx) <= math.Abs(dy) || math.Abs(dx) <= swipeThreshold {
		return 0
	}
	if dx > 0 {
		return 1
	}
	return -1
}
