// Package slideshow runs the photo carousel: it loads a collection, keeps the
// playback state and drives a rendering surface on a timer and on user input.
package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultInterval        = 10 * time.Second
	DefaultTransitionDelay = time.Second
	DefaultViewportWidth   = 1920
)

var (
	ErrNotRunning    = errors.New("carousel is not running")
	ErrLoading       = errors.New("carousel is still loading")
	ErrPhotoNotFound = errors.New("photo not found in collection")
)

// Options configure one carousel session.
type Options struct {
	Interval         time.Duration
	TransitionDelay  time.Duration
	RandomOrder      bool
	ShowPhotographer bool
	ShowLocation     bool

	// UserID is the Flickr user the photo page links point at.
	UserID string

	// ViewportWidth is used for URL selection until a surface reports its size.
	ViewportWidth    int
	PreloadCacheSize int
	Params           Params

	// StartPaused holds the first photo instead of starting the interval.
	StartPaused bool

	// Rand drives the shuffle. Nil uses the global source.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Interval:         DefaultInterval,
		TransitionDelay:  DefaultTransitionDelay,
		RandomOrder:      true,
		ShowPhotographer: true,
		ShowLocation:     true,
		ViewportWidth:    DefaultViewportWidth,
	}
}

// Status is a snapshot of the playback state.
type Status struct {
	State         string  `json:"state"`
	Index         int     `json:"index"`
	Total         int     `json:"total"`
	PhotoID       string  `json:"photo_id"`
	Title         string  `json:"title"`
	ImageURL      string  `json:"image_url"`
	InfoExpanded  bool    `json:"info_expanded"`
	FitMode       FitMode `json:"fit_mode"`
	ViewportWidth int     `json:"viewport_width"`
}

type commandKind int

const (
	cmdStatus commandKind = iota
	cmdNext
	cmdPrevious
	cmdPause
	cmdResume
	cmdTogglePause
	cmdToggleInfo
	cmdToggleFitMode
	cmdToggleFullscreen
	cmdResize
	cmdImageFailed
	cmdJump
)

type command struct {
	kind    commandKind
	width   int
	photoID string
	reply   chan reply
}

type reply struct {
	status Status
	err    error
}

type loadResult struct {
	photos []Photo
	err    error
}

// Carousel is one slideshow session. All playback state is owned by the
// goroutine running Run; the exported methods hand commands to it and wait
// until they have been applied.
type Carousel struct {
	opts     Options
	source   PhotoSource
	renderer Renderer
	preload  *PreloadCache

	commands chan command
	done     chan struct{}
	started  atomic.Bool

	mu   sync.Mutex
	last Status

	state          State
	photos         []Photo
	index          int
	infoExpanded   bool
	fitMode        FitMode
	width          int
	imageURL       string
	loadingVisible bool
	ticker         *time.Ticker
	swapTimer      *time.Timer
	pending        *Slide
}

func New(source PhotoSource, renderer Renderer, opts Options) (*Carousel, error) {
	if source == nil {
		return nil, errors.New("no photo source provided for carousel")
	}
	if renderer == nil {
		return nil, errors.New("no renderer provided for carousel")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.TransitionDelay < 0 {
		opts.TransitionDelay = 0
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}

	preload, err := NewPreloadCache(renderer, opts.PreloadCacheSize)
	if err != nil {
		return nil, err
	}

	fitMode := FitHeight
	if opts.Params.FillImage {
		fitMode = FitWidth
	}

	c := &Carousel{
		opts:     opts,
		source:   source,
		renderer: renderer,
		preload:  preload,
		commands: make(chan command),
		done:     make(chan struct{}),
		state:    StateLoading,
		fitMode:  fitMode,
		width:    opts.ViewportWidth,
	}
	c.last = c.status()
	return c, nil
}

// Run loads the collection and plays it until ctx is cancelled. It returns an
// error wrapping ErrNoPhotos when the session fails to initialize.
func (c *Carousel) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("carousel already started")
	}
	defer close(c.done)
	defer func() {
		c.stopTimers()
		c.setLast(c.status())
	}()

	c.renderer.ShowLoading()
	c.loadingVisible = true
	if c.fitMode == FitWidth {
		c.renderer.SetFitMode(c.fitMode)
	}

	loaded := make(chan loadResult, 1)
	width := c.width
	go func() {
		photos, err := Initialize(ctx, c.source, width, c.opts.RandomOrder, c.opts.Rand)
		loaded <- loadResult{photos: photos, err: err}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("carousel stopped", "state", c.state)
			return nil
		case res := <-loaded:
			if err := c.handleLoaded(res); err != nil {
				return err
			}
		case cmd := <-c.commands:
			cmd.reply <- c.handle(cmd)
		case <-c.tickC():
			c.step(1)
			c.showPhoto()
		case <-c.swapC():
			c.finishTransition()
		}
	}
}

// Done is closed once Run has returned.
func (c *Carousel) Done() <-chan struct{} {
	return c.done
}

func (c *Carousel) Status() Status {
	s, _ := c.do(command{kind: cmdStatus})
	return s
}

func (c *Carousel) Next() error {
	_, err := c.do(command{kind: cmdNext})
	return err
}

func (c *Carousel) Previous() error {
	_, err := c.do(command{kind: cmdPrevious})
	return err
}

func (c *Carousel) Pause() error {
	_, err := c.do(command{kind: cmdPause})
	return err
}

func (c *Carousel) Resume() error {
	_, err := c.do(command{kind: cmdResume})
	return err
}

func (c *Carousel) TogglePause() error {
	_, err := c.do(command{kind: cmdTogglePause})
	return err
}

func (c *Carousel) ToggleInfo() error {
	_, err := c.do(command{kind: cmdToggleInfo})
	return err
}

func (c *Carousel) ToggleFitMode() error {
	_, err := c.do(command{kind: cmdToggleFitMode})
	return err
}

func (c *Carousel) ToggleFullscreen() error {
	_, err := c.do(command{kind: cmdToggleFullscreen})
	return err
}

// Resize records the viewport width of the surface and re-resolves the
// current image for it.
func (c *Carousel) Resize(width int) error {
	_, err := c.do(command{kind: cmdResize, width: width})
	return err
}

// ImageFailed skips the photo the surface could not load.
func (c *Carousel) ImageFailed() error {
	_, err := c.do(command{kind: cmdImageFailed})
	return err
}

// JumpTo displays the photo with the given id and restarts the interval.
func (c *Carousel) JumpTo(photoID string) error {
	_, err := c.do(command{kind: cmdJump, photoID: photoID})
	return err
}

// HandleKey applies a keyboard shortcut. Unknown keys are ignored.
func (c *Carousel) HandleKey(key string) error {
	switch {
	case nextKeys.Contains(key):
		return c.Next()
	case previousKeys.Contains(key):
		return c.Previous()
	}

	switch key {
	case keyPause:
		return c.TogglePause()
	case KeyFullscreen:
		return c.ToggleFullscreen()
	case keyFitMode:
		return c.ToggleFitMode()
	case keyInfo:
		return c.ToggleInfo()
	}
	return nil
}

// Swipe navigates on a horizontal touch gesture; dx and dy are start minus end.
func (c *Carousel) Swipe(dx, dy float64) error {
	switch swipeStep(dx, dy) {
	case 1:
		return c.Next()
	case -1:
		return c.Previous()
	}
	return nil
}

// PointerEnter pauses while the pointer is over the info panel.
func (c *Carousel) PointerEnter() error {
	if c.opts.Params.HideInfo {
		return nil
	}
	return c.Pause()
}

// PointerLeave resumes once the pointer leaves the info panel.
func (c *Carousel) PointerLeave() error {
	if c.opts.Params.HideInfo {
		return nil
	}
	return c.Resume()
}

func (c *Carousel) do(cmd command) (Status, error) {
	cmd.reply = make(chan reply, 1)
	select {
	case c.commands <- cmd:
	case <-c.done:
		return c.lastStatus(), ErrNotRunning
	}

	select {
	case r := <-cmd.reply:
		return r.status, r.err
	case <-c.done:
		select {
		case r := <-cmd.reply:
			return r.status, r.err
		default:
		}
		return c.lastStatus(), ErrNotRunning
	}
}

func (c *Carousel) handle(cmd command) reply {
	var err error
	switch cmd.kind {
	case cmdStatus:
	case cmdResize:
		c.resize(cmd.width)
	default:
		if c.state == StatePlaying || c.state == StatePaused {
			err = c.apply(cmd)
		} else {
			err = ErrLoading
		}
	}
	return reply{status: c.status(), err: err}
}

func (c *Carousel) apply(cmd command) error {
	switch cmd.kind {
	case cmdNext:
		c.navigate(1)
	case cmdPrevious:
		c.navigate(-1)
	case cmdPause:
		c.pause()
	case cmdResume:
		c.resume()
	case cmdTogglePause:
		if c.state == StatePaused {
			c.resume()
		} else {
			c.pause()
		}
	case cmdToggleInfo:
		c.toggleInfo()
	case cmdToggleFitMode:
		c.fitMode = c.fitMode.toggle()
		c.renderer.SetFitMode(c.fitMode)
		slog.Info("fit mode changed", "mode", c.fitMode)
	case cmdToggleFullscreen:
		if c.opts.Params.HideInfo {
			slog.Debug("controls hidden, fullscreen toggle ignored")
			return nil
		}
		c.renderer.ToggleFullscreen()
	case cmdImageFailed:
		slog.Error("failed to load image", "index", c.index, "url", c.imageURL)
		c.step(1)
		c.showPhoto()
	case cmdJump:
		idx := c.find(cmd.photoID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrPhotoNotFound, cmd.photoID)
		}
		c.index = idx
		c.showPhoto()
		if c.state == StatePlaying {
			c.startTicker()
		}
	}
	return nil
}

func (c *Carousel) handleLoaded(res loadResult) error {
	if res.err != nil {
		c.state, _ = transition(c.state, eventLoadFailed)
		c.renderer.ShowError(initErrorMessage)
		slog.Error("carousel initialization failed", "error", res.err)
		return fmt.Errorf("carousel initialization failed: %w", res.err)
	}

	c.photos = res.photos
	c.index = 0
	c.preloadIndex(0)
	if len(c.photos) > 1 {
		c.preloadIndex(1)
	}

	c.showPhoto()
	c.state, _ = transition(c.state, eventLoaded)
	if c.opts.StartPaused {
		c.pause()
	} else {
		c.startTicker()
	}
	slog.Info("carousel started", "photos", len(c.photos), "interval", c.opts.Interval, "state", c.state)
	return nil
}

// navigate moves by step photos. While playing, the interval restarts so the
// next automatic advance is a full interval after the user action.
func (c *Carousel) navigate(step int) {
	c.step(step)
	c.showPhoto()
	if c.state == StatePlaying {
		c.startTicker()
	}
}

func (c *Carousel) step(step int) {
	n := len(c.photos)
	if n == 0 {
		return
	}
	c.index = ((c.index+step)%n + n) % n
}

func (c *Carousel) pause() {
	next, ok := transition(c.state, eventPause)
	if !ok {
		return
	}
	c.state = next
	c.stopTicker()
	slog.Info("carousel paused")
}

func (c *Carousel) resume() {
	next, ok := transition(c.state, eventResume)
	if !ok {
		return
	}
	c.state = next
	c.startTicker()
	slog.Info("carousel resumed")
}

func (c *Carousel) toggleInfo() {
	if c.opts.Params.HideInfo {
		slog.Debug("info display hidden, toggle ignored")
		return
	}
	c.infoExpanded = !c.infoExpanded

	info := buildInfo(c.photos[c.index], c.infoExpanded, c.opts)
	if c.pending != nil {
		c.pending.Info = info
	}
	c.renderer.SetInfo(info)
}

// showPhoto renders the photo at the current index. Photos without a usable
// URL at the current width are skipped, at most once around the collection.
func (c *Carousel) showPhoto() {
	for range len(c.photos) {
		photo := c.photos[c.index]
		url, ok := BestImageURL(photo, c.width)
		if ok {
			c.render(photo, url)
			return
		}
		slog.Error("no suitable image url, skipping", "index", c.index, "id", photo.ID, "width", c.width)
		c.step(1)
	}
	slog.Error("no photo is usable at the current viewport width", "width", c.width)
}

func (c *Carousel) render(photo Photo, url string) {
	if c.loadingVisible {
		c.renderer.HideLoading()
		c.loadingVisible = false
	}

	c.renderer.FadeOut()
	c.preloadIndex((c.index + 1) % len(c.photos))

	slide := Slide{
		Index:    c.index,
		Total:    len(c.photos),
		PhotoID:  photo.ID,
		ImageURL: url,
		Info:     buildInfo(photo, c.infoExpanded, c.opts),
	}

	delay := c.opts.TransitionDelay
	if c.opts.Params.DisableTransitions {
		delay = 0
	}
	c.stopSwapTimer()
	if delay <= 0 {
		c.swap(slide)
		return
	}
	c.renderer.UpcomingSlide(slide)
	c.pending = &slide
	c.swapTimer = time.NewTimer(delay)
}

func (c *Carousel) finishTransition() {
	c.swapTimer = nil
	if c.pending == nil {
		return
	}
	slide := *c.pending
	c.swap(slide)
}

func (c *Carousel) swap(slide Slide) {
	c.pending = nil
	c.imageURL = slide.ImageURL
	c.renderer.ShowSlide(slide)
	c.renderer.FadeIn()
}

func (c *Carousel) resize(width int) {
	if width <= 0 || width == c.width {
		return
	}
	c.width = width
	if len(c.photos) == 0 {
		return
	}

	if url, ok := BestImageURL(c.photos[c.index], width); ok {
		switch {
		case c.pending != nil:
			c.pending.ImageURL = url
		case url != c.imageURL:
			slog.Info("viewport resized, updating image resolution", "width", width, "url", url)
			c.imageURL = url
			c.renderer.SetImage(url)
		}
	}

	c.preload.Purge()
	c.preloadIndex((c.index + 1) % len(c.photos))
}

func (c *Carousel) preloadIndex(index int) {
	if index >= len(c.photos) {
		return
	}
	if url, ok := BestImageURL(c.photos[index], c.width); ok {
		c.preload.Preload(index, url)
	}
}

func (c *Carousel) find(photoID string) int {
	for i, p := range c.photos {
		if p.ID == photoID {
			return i
		}
	}
	return -1
}

func (c *Carousel) startTicker() {
	c.stopTicker()
	c.ticker = time.NewTicker(c.opts.Interval)
}

func (c *Carousel) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Carousel) stopSwapTimer() {
	if c.swapTimer != nil {
		c.swapTimer.Stop()
		c.swapTimer = nil
	}
}

func (c *Carousel) stopTimers() {
	c.stopTicker()
	c.stopSwapTimer()
}

func (c *Carousel) tickC() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C
}

func (c *Carousel) swapC() <-chan time.Time {
	if c.swapTimer == nil {
		return nil
	}
	return c.swapTimer.C
}

func (c *Carousel) status() Status {
	s := Status{
		State:         c.state.String(),
		Index:         c.index,
		Total:         len(c.photos),
		ImageURL:      c.imageURL,
		InfoExpanded:  c.infoExpanded,
		FitMode:       c.fitMode,
		ViewportWidth: c.width,
	}
	if c.index < len(c.photos) {
		s.PhotoID = c.photos[c.index].ID
		s.Title = c.photos[c.index].Title
	}
	return s
}

func (c *Carousel) lastStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Carousel) setLast(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = s
}

// Running reports whether the session is still accepting commands.
func (c *Carousel) Running() bool {
	select {
	case <-c.done:
		return false
	default:
		return c.started.Load()
	}
}
