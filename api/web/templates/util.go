// Package templates renders the display page
package templates

import (
	"strconv"

	"github.com/aouyang1/flickrframe/slideshow"
)

const websocketPath = "/ws"

func boolAttr(b bool) string {
	return strconv.FormatBool(b)
}

// websocketURL carries the page switches to the hub, which filters each
// display's messages and input by them.
func websocketURL(params slideshow.Params) string {
	if q := params.Values(); len(q) > 0 {
		return websocketPath + "?" + q.Encode()
	}
	return websocketPath
}

// fitClass is the container class for the initial fit mode.
func fitClass(params slideshow.Params) string {
	if params.FillImage {
		return "fit-" + string(slideshow.FitWidth)
	}
	return "fit-" + string(slideshow.FitHeight)
}
