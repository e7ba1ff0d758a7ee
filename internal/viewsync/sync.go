// Package viewsync mirrors the primary map camera onto the secondary map in
// dual view without the two maps echoing moves back and forth.
package viewsync

import (
	"math"
	"sync"
	"time"
)

// DefaultReleaseDelay is how long echoes of a mirrored jump are ignored
const DefaultReleaseDelay = 50 * time.Millisecond

// echoTolerance absorbs float noise picked up by a camera round trip through the renderer
const echoTolerance = 1e-7

// Camera is a map camera pose
type Camera struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`
}

// Viewport is a map that accepts immediate, non-animated camera jumps
type Viewport interface {
	JumpTo(cam Camera)
}

// CommitFunc stores a settled primary camera in the shared view state
type CommitFunc func(cam Camera)

// Near reports whether two poses match within the renderer's float noise
func (c Camera) Near(o Camera) bool {
	return math.Abs(c.Lon-o.Lon) <= echoTolerance &&
		math.Abs(c.Lat-o.Lat) <= echoTolerance &&
		math.Abs(c.Zoom-o.Zoom) <= echoTolerance &&
		math.Abs(c.Bearing-o.Bearing) <= echoTolerance &&
		math.Abs(c.Pitch-o.Pitch) <= echoTolerance
}

// Synchronizer drives the secondary viewport from primary camera changes.
// A single guard flag suppresses the events caused by its own jumps until
// the release delay has passed. Echoes that arrive after the release are
// recognised by matching the pose last jumped to on that viewport.
type Synchronizer struct {
	mu        sync.Mutex
	syncing   bool
	dualView  bool
	primary   *side
	secondary *side
	commit    CommitFunc
	delay     time.Duration
}

// side is one viewport and the pose most recently forced onto it
type side struct {
	vp     Viewport
	jumped *Camera
}

// echo reports whether cam is the viewport reporting back our own jump
func (sd *side) echo(cam Camera) bool {
	return sd.jumped != nil && sd.jumped.Near(cam)
}

// New creates a synchronizer. A non-positive delay uses DefaultReleaseDelay.
func New(commit CommitFunc, delay time.Duration) *Synchronizer {
	if delay <= 0 {
		delay = DefaultReleaseDelay
	}
	return &Synchronizer{
		commit:    commit,
		delay:     delay,
		primary:   &side{},
		secondary: &side{},
	}
}

// SetDualView turns mirroring on or off
func (s *Synchronizer) SetDualView(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dualView = active
}

// DualView reports whether mirroring is on
func (s *Synchronizer) DualView() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dualView
}

// Attach sets the viewport handles. Either may be nil.
func (s *Synchronizer) Attach(primary, secondary Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary = &side{vp: primary}
	s.secondary = &side{vp: secondary}
}

// Syncing reports whether a mirrored jump is being settled
func (s *Synchronizer) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// OnCameraChange handles a camera change of the primary viewport
func (s *Synchronizer) OnCameraChange(cam Camera) {
	s.mirror(cam, func() (*side, *side) { return s.primary, s.secondary })
}

// OnSecondaryCameraChange handles a camera change of the secondary viewport.
// User moves on the secondary map are mirrored to the primary under the same guard.
func (s *Synchronizer) OnSecondaryCameraChange(cam Camera) {
	s.mirror(cam, func() (*side, *side) { return s.secondary, s.primary })
}

func (s *Synchronizer) mirror(cam Camera, sides func() (from, to *side)) {
	s.mu.Lock()
	if s.syncing || !s.dualView {
		s.mu.Unlock()
		return
	}
	from, to := sides()
	if from.echo(cam) || to.vp == nil {
		s.mu.Unlock()
		return
	}
	// The source moved on its own; its next reports are user input again
	from.jumped = nil
	jumped := cam
	to.jumped = &jumped
	vp := to.vp
	s.syncing = true
	s.mu.Unlock()

	// Called without the lock: the jump may synchronously raise camera events
	vp.JumpTo(cam)

	time.AfterFunc(s.delay, s.release)
}

func (s *Synchronizer) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
}

// OnMoveEnd commits the primary camera once it settles, unless a mirrored
// jump is still in progress
func (s *Synchronizer) OnMoveEnd(cam Camera) {
	s.mu.Lock()
	syncing := s.syncing
	s.mu.Unlock()

	if syncing || s.commit == nil {
		return
	}
	s.commit(cam)
}
