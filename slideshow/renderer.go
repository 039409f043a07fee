package slideshow

import "fmt"

// Renderer is the rendering surface a carousel draws on.
type Renderer interface {
	ShowLoading()
	HideLoading()
	ShowError(message string)
	FadeOut()
	FadeIn()
	ShowSlide(slide Slide)
	// UpcomingSlide announces the slide a transition will show once the
	// current one has faded out. Surfaces that skip transitions show it now.
	UpcomingSlide(slide Slide)
	SetImage(url string)
	SetInfo(info Info)
	SetFitMode(mode FitMode)
	ToggleFullscreen()
	Preload(url string)
}

// Slide is everything the surface needs to display one photo.
type Slide struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	PhotoID  string `json:"photo_id"`
	ImageURL string `json:"image_url"`
	Info     Info   `json:"info"`
}

// Info is the text of the info panel and which parts of it are visible.
type Info struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	Photographer     string `json:"photographer"`
	PageURL          string `json:"page_url"`
	Expanded         bool   `json:"expanded"`
	Hidden           bool   `json:"hidden"`
	ShowDescription  bool   `json:"show_description"`
	ShowLocation     bool   `json:"show_location"`
	ShowPhotographer bool   `json:"show_photographer"`
}

const (
	untitled         = "Untitled"
	noDescription    = "No description available"
	unknownOwner     = "Unknown"
	flickrPhotoPage  = "https://www.flickr.com/photos/%s/%s"
	initErrorMessage = "Error loading carousel. Please try again later."
)

func buildInfo(p Photo, expanded bool, opts Options) Info {
	visible := expanded && !opts.Params.HideInfo

	info := Info{
		Title:           p.Title,
		Description:     p.Description,
		Photographer:    "Photographer: " + p.OwnerName,
		Expanded:        expanded,
		Hidden:          opts.Params.HideInfo,
		ShowDescription: visible,
	}
	if info.Title == "" {
		info.Title = untitled
	}
	if info.Description == "" {
		info.Description = noDescription
	}
	if p.OwnerName == "" {
		info.Photographer = "Photographer: " + unknownOwner
	}
	info.ShowPhotographer = opts.ShowPhotographer && visible

	if p.HasLocation() {
		info.Location = fmt.Sprintf("Location: %s, %s", p.Latitude, p.Longitude)
		info.ShowLocation = opts.ShowLocation && visible
	}

	owner := opts.UserID
	if owner == "" {
		owner = p.Owner
	}
	if owner != "" && p.ID != "" {
		info.PageURL = fmt.Sprintf(flickrPhotoPage, owner, p.ID)
	}
	return info
}
