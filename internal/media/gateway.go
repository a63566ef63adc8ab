// Package media defines the capability boundary to the platform
// capture layer. The core only talks to these interfaces; it never
// reimplements capture or enumeration.
package media

import (
	"context"
	"errors"
)

var (
	ErrPermissionDenied  = errors.New("media: permission denied")
	ErrDeviceUnavailable = errors.New("media: device unavailable")
	ErrNotSupported      = errors.New("media: not supported")
)

type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// Track is a single media channel within a stream. It can be enabled
// or disabled without releasing the stream.
type Track interface {
	Kind() TrackKind
	Enabled() bool
	SetEnabled(bool)
	Stop()
}

// Stream is an exclusively-owned handle to a live capture.
// Owned by the lifecycle manager; the gateway must release it.
type Stream interface {
	ID() string
	Tracks() []Track
	// Track returns the first track of the given kind, if any.
	Track(kind TrackKind) (Track, bool)
}

// DeviceDescriptor identifies a selectable capture device.
type DeviceDescriptor struct {
	DeviceID string `json:"deviceId"`
	Label    string `json:"label"`
}

// Selector picks a capture kind: disabled, enabled with the platform
// default, or bound to a specific device ID.
type Selector struct {
	Enabled  bool
	DeviceID string
}

func Enable() Selector            { return Selector{Enabled: true} }
func Disable() Selector           { return Selector{} }
func ByDevice(id string) Selector { return Selector{Enabled: true, DeviceID: id} }

type Constraints struct {
	Audio Selector
	Video Selector
}

func DefaultConstraints() Constraints {
	return Constraints{Audio: Enable(), Video: Enable()}
}

// Gateway wraps platform capture and enumeration into a uniform async
// interface. Acquire calls may suspend on user permission prompts.
type Gateway interface {
	// AcquireMediaStream requests capture matching the constraints.
	// Fails with ErrPermissionDenied or ErrDeviceUnavailable.
	AcquireMediaStream(ctx context.Context, c Constraints) (Stream, error)
	// AcquireScreenStream requests display capture; additionally fails
	// with ErrNotSupported when the platform lacks the capability.
	AcquireScreenStream(ctx context.Context) (Stream, error)
	// ReleaseStream idempotently stops all tracks. Safe on an
	// already-stopped stream.
	ReleaseStream(s Stream)
	// ListAudioInputs and ListVideoInputs return an empty slice on
	// enumeration failure, never an error; the cause is logged.
	ListAudioInputs(ctx context.Context) []DeviceDescriptor
	ListVideoInputs(ctx context.Context) []DeviceDescriptor
}
