// Package app orchestrates the meeting session: stream acquisition,
// device switching, mute/video/screen-share toggling and teardown.
package app

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/emyildirim/meetweb/internal/media"
	"github.com/emyildirim/meetweb/internal/session"
)

var (
	ErrNotInMeeting      = errors.New("not in a meeting")
	ErrScreenShareActive = errors.New("screen share already active")
	ErrSessionEnded      = errors.New("session ended")
)

// SlotState tracks the camera slot's lifecycle.
type SlotState int32

const (
	SlotIdle SlotState = iota
	SlotAcquiring
	SlotLive
	SlotSwitching
	SlotReleased
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotAcquiring:
		return "acquiring"
	case SlotLive:
		return "live"
	case SlotSwitching:
		return "switching"
	case SlotReleased:
		return "released"
	}
	return "unknown"
}

// Manager owns the live stream handles on behalf of the current user.
// Camera-slot operations (join, switch, leave) are serialized; the
// screen-share slot is independent and may proceed concurrently.
type Manager struct {
	store *session.Store
	gw    media.Gateway

	camMu    sync.Mutex
	screenMu sync.Mutex
	state    atomic.Int32

	// gen is the session generation. Leave bumps it so that an
	// acquisition resolving afterwards is released, never attached.
	gen atomic.Int64
}

func NewManager(store *session.Store, gw media.Gateway) *Manager {
	return &Manager{store: store, gw: gw}
}

func (m *Manager) State() SlotState {
	return SlotState(m.state.Load())
}

func (m *Manager) setState(s SlotState) {
	m.state.Store(int32(s))
}

// constraints builds acquisition constraints from the last selected
// device IDs, falling back to platform defaults.
func (m *Manager) constraints() media.Constraints {
	st := m.store.Settings()
	c := media.DefaultConstraints()
	if st.AudioInput != "" {
		c.Audio = media.ByDevice(st.AudioInput)
	}
	if st.VideoInput != "" {
		c.Video = media.ByDevice(st.VideoInput)
	}
	return c
}

// attachCamera stores the stream and forces its tracks into agreement
// with the user's desired mute/video flags (enabled = NOT flag).
func (m *Manager) attachCamera(s media.Stream) {
	if u := m.store.CurrentUser(); u != nil {
		if t, ok := s.Track(media.TrackAudio); ok {
			t.SetEnabled(!u.IsMuted)
		}
		if t, ok := s.Track(media.TrackVideo); ok {
			t.SetEnabled(!u.IsVideoOff)
		}
	}
	m.store.SetCameraStream(s)
}

// releaseCamera drops the current camera stream, if any.
func (m *Manager) releaseCamera() {
	if s := m.store.CameraStream(); s != nil {
		m.gw.ReleaseStream(s)
		m.store.SetCameraStream(nil)
	}
}
