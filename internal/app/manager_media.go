package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/media"
)

// SwitchDevice records the new device ID in settings, releases the
// current stream and re-acquires with the new constraint while keeping
// the other kind's prior selection. On failure the user is left with
// no stream at all; the old one is already gone and there is no
// rollback (at-most-one-stream invariant).
func (m *Manager) SwitchDevice(ctx context.Context, kind media.TrackKind, deviceID string) error {
	m.camMu.Lock()
	defer m.camMu.Unlock()

	if m.store.CurrentUser() == nil {
		return ErrNotInMeeting
	}

	patch := domain.SettingsPatch{}
	switch kind {
	case media.TrackAudio:
		patch.AudioInput = &deviceID
	case media.TrackVideo:
		patch.VideoInput = &deviceID
	default:
		return fmt.Errorf("%w: device kind %q", media.ErrDeviceUnavailable, kind)
	}
	m.store.MergeSettings(patch)

	m.releaseCamera()

	gen := m.gen.Load()
	m.setState(SlotSwitching)
	stream, err := m.gw.AcquireMediaStream(ctx, m.constraints())
	if err != nil {
		m.setState(SlotIdle)
		log.Warn().Err(err).Str("module", "app.manager").Str("kind", string(kind)).Str("device", deviceID).Msg("device switch failed")
		return err
	}
	if m.gen.Load() != gen {
		m.gw.ReleaseStream(stream)
		return ErrSessionEnded
	}
	m.attachCamera(stream)
	m.setState(SlotLive)
	log.Info().Str("module", "app.manager").Str("kind", string(kind)).Str("device", deviceID).Msg("device switched")
	return nil
}

// StartScreenShare acquires a display stream into the independent
// screen slot. The sharing state only changes when acquisition
// succeeded; a failed acquire leaves the slot empty and the UI must
// not claim an active share.
func (m *Manager) StartScreenShare(ctx context.Context) error {
	m.screenMu.Lock()
	defer m.screenMu.Unlock()

	if m.store.CurrentUser() == nil {
		return ErrNotInMeeting
	}
	if m.store.ScreenStream() != nil {
		return ErrScreenShareActive
	}

	gen := m.gen.Load()
	stream, err := m.gw.AcquireScreenStream(ctx)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.manager").Msg("screen share acquisition failed")
		return err
	}
	if m.gen.Load() != gen {
		m.gw.ReleaseStream(stream)
		return ErrSessionEnded
	}
	m.store.SetScreenStream(stream)
	log.Info().Str("module", "app.manager").Str("stream", stream.ID()).Msg("screen share started")
	return nil
}

// StopScreenShare releases the screen stream and clears the slot.
// Safe to call when no share is active.
func (m *Manager) StopScreenShare() {
	m.screenMu.Lock()
	defer m.screenMu.Unlock()

	if s := m.store.ScreenStream(); s != nil {
		m.gw.ReleaseStream(s)
		m.store.SetScreenStream(nil)
		log.Info().Str("module", "app.manager").Msg("screen share stopped")
	}
}

func (m *Manager) IsScreenSharing() bool {
	return m.store.ScreenStream() != nil
}

// ToggleMute flips the logical flag first, then sets the audio track's
// enabled state to the negation of the new flag: enabled when not
// muted. Reading state after the flip is the one deterministic rule;
// deriving it from a pre-flip capture inverts the outcome.
func (m *Manager) ToggleMute() (muted bool, ok bool) {
	muted, ok = m.store.ToggleMute()
	if !ok {
		return false, false
	}
	if s := m.store.CameraStream(); s != nil {
		if t, found := s.Track(media.TrackAudio); found {
			t.SetEnabled(!muted)
		}
	}
	return muted, true
}

// ToggleVideo follows the same rule for the video track.
func (m *Manager) ToggleVideo() (videoOff bool, ok bool) {
	videoOff, ok = m.store.ToggleVideoOff()
	if !ok {
		return false, false
	}
	if s := m.store.CameraStream(); s != nil {
		if t, found := s.Track(media.TrackVideo); found {
			t.SetEnabled(!videoOff)
		}
	}
	return videoOff, true
}
