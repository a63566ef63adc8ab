// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

type UserID string

// User is the local participant. ID is immutable after creation; the
// mute/video flags describe desired state, the lifecycle manager keeps
// the live stream's tracks consistent with them.
type User struct {
	ID         UserID `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"isHost"`
	IsMuted    bool   `json:"isMuted"`
	IsVideoOff bool   `json:"isVideoOff"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, name string, isHost bool) (*User, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &User{ID: id, Name: name, IsHost: isHost}, nil
}
