package slideshow

// OriginalSuffix identifies the full size upload, used when no sized variant fits.
const OriginalSuffix = "o"

type sizeOption struct {
	suffix   string
	minWidth int
}

// sizeOptions is ordered from the largest variant to the smallest. "b" has no
// threshold so it is acceptable on any viewport.
var sizeOptions = []sizeOption{
	{suffix: "6k", minWidth: 5120},
	{suffix: "5k", minWidth: 4096},
	{suffix: "4k", minWidth: 3072},
	{suffix: "3k", minWidth: 2048},
	{suffix: "k", minWidth: 1600},
	{suffix: "h", minWidth: 1024},
	{suffix: "b", minWidth: 0},
}

// BestImageURL picks the largest image variant of the photo whose width
// threshold fits within viewportWidth, falling back to the original upload.
// It returns false when the photo has no usable URL at all.
func BestImageURL(p Photo, viewportWidth int) (string, bool) {
	for _, opt := range sizeOptions {
		u := p.URL(opt.suffix)
		if u != "" && viewportWidth >= opt.minWidth {
			return u, true
		}
	}

	if u := p.URL(OriginalSuffix); u != "" {
		return u, true
	}
	return "", false
}
