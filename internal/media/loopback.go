package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type loopTrack struct {
	kind TrackKind

	mu      sync.Mutex
	enabled bool
	stopped bool
}

func (t *loopTrack) Kind() TrackKind { return t.kind }

func (t *loopTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *loopTrack) SetEnabled(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.enabled = v
}

func (t *loopTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.enabled = false
}

type loopStream struct {
	id     string
	tracks []Track
}

func (s *loopStream) ID() string { return s.id }

func (s *loopStream) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *loopStream) Track(kind TrackKind) (Track, bool) {
	for _, t := range s.tracks {
		if t.Kind() == kind {
			return t, true
		}
	}
	return nil, false
}

// Loopback is an in-memory Gateway over a configurable device table.
// It produces inert streams with the right track shape, which is all
// the core needs; real capture stays behind the platform boundary.
type Loopback struct {
	mu            sync.Mutex
	audio         []DeviceDescriptor
	video         []DeviceDescriptor
	denyMedia     bool
	denyScreen    bool
	screenCapable bool
	enumBroken    bool
}

func NewLoopback() *Loopback {
	return &Loopback{
		audio:         []DeviceDescriptor{{DeviceID: "mic-default", Label: "Default Microphone"}},
		video:         []DeviceDescriptor{{DeviceID: "cam-default", Label: "Default Camera"}},
		screenCapable: true,
	}
}

// SetDevices replaces the device table.
func (g *Loopback) SetDevices(audio, video []DeviceDescriptor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.audio, g.video = audio, video
}

// DenyMedia makes camera/microphone acquisition fail with
// ErrPermissionDenied, as a user declining the permission prompt would.
func (g *Loopback) DenyMedia(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.denyMedia = v
}

func (g *Loopback) DenyScreen(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.denyScreen = v
}

func (g *Loopback) SetScreenCapable(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screenCapable = v
}

// BreakEnumeration simulates enumeration failure for both kinds.
func (g *Loopback) BreakEnumeration(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enumBroken = v
}

func (g *Loopback) has(table []DeviceDescriptor, id string) bool {
	for _, d := range table {
		if d.DeviceID == id {
			return true
		}
	}
	return false
}

func (g *Loopback) AcquireMediaStream(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.denyMedia {
		return nil, ErrPermissionDenied
	}
	if !c.Audio.Enabled && !c.Video.Enabled {
		return nil, fmt.Errorf("%w: no capture requested", ErrDeviceUnavailable)
	}
	if c.Audio.Enabled && c.Audio.DeviceID != "" && !g.has(g.audio, c.Audio.DeviceID) {
		return nil, fmt.Errorf("%w: audio input %q", ErrDeviceUnavailable, c.Audio.DeviceID)
	}
	if c.Video.Enabled && c.Video.DeviceID != "" && !g.has(g.video, c.Video.DeviceID) {
		return nil, fmt.Errorf("%w: video input %q", ErrDeviceUnavailable, c.Video.DeviceID)
	}

	s := &loopStream{id: uuid.NewString()}
	if c.Audio.Enabled {
		s.tracks = append(s.tracks, &loopTrack{kind: TrackAudio, enabled: true})
	}
	if c.Video.Enabled {
		s.tracks = append(s.tracks, &loopTrack{kind: TrackVideo, enabled: true})
	}
	log.Debug().Str("module", "media.loopback").Str("stream", s.id).Msg("media stream acquired")
	return s, nil
}

func (g *Loopback) AcquireScreenStream(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.screenCapable {
		return nil, fmt.Errorf("%w: display capture", ErrNotSupported)
	}
	if g.denyScreen {
		return nil, ErrPermissionDenied
	}
	s := &loopStream{
		id:     uuid.NewString(),
		tracks: []Track{&loopTrack{kind: TrackVideo, enabled: true}},
	}
	log.Debug().Str("module", "media.loopback").Str("stream", s.id).Msg("screen stream acquired")
	return s, nil
}

func (g *Loopback) ReleaseStream(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
	log.Debug().Str("module", "media.loopback").Str("stream", s.ID()).Msg("stream released")
}

func (g *Loopback) ListAudioInputs(ctx context.Context) []DeviceDescriptor {
	return g.list(ctx, TrackAudio)
}

func (g *Loopback) ListVideoInputs(ctx context.Context) []DeviceDescriptor {
	return g.list(ctx, TrackVideo)
}

func (g *Loopback) list(ctx context.Context, kind TrackKind) []DeviceDescriptor {
	if err := ctx.Err(); err != nil {
		log.Error().Err(err).Str("module", "media.loopback").Msg("enumeration aborted")
		return []DeviceDescriptor{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enumBroken {
		log.Error().Str("module", "media.loopback").Str("kind", string(kind)).Msg("enumeration failed")
		return []DeviceDescriptor{}
	}
	table := g.audio
	if kind == TrackVideo {
		table = g.video
	}
	out := make([]DeviceDescriptor, len(table))
	copy(out, table)
	return out
}
