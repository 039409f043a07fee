package slideshow

// State is the playback state of a carousel session.
type State int

const (
	StateLoading State = iota
	StatePlaying
	StatePaused
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type event int

const (
	eventLoaded event = iota
	eventLoadFailed
	eventPause
	eventResume
)

// transition returns the state that follows s on e, and whether e applies to s
// at all. Events that do not apply leave the state unchanged.
func transition(s State, e event) (State, bool) {
	switch s {
	case StateLoading:
		switch e {
		case eventLoaded:
			return StatePlaying, true
		case eventLoadFailed:
			return StateFailed, true
		}
	case StatePlaying:
		if e == eventPause {
			return StatePaused, true
		}
	case StatePaused:
		if e == eventResume {
			return StatePlaying, true
		}
	}
	return s, false
}

// FitMode selects which image dimension is prioritized by the surface.
type FitMode string

const (
	FitHeight FitMode = "height"
	FitWidth  FitMode = "width"
)

func (m FitMode) toggle() FitMode {
	if m == FitWidth {
		return FitHeight
	}
	return FitWidth
}
