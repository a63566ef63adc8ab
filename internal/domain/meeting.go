package domain

import (
	"errors"
	"time"
)

var ErrMeetingIDEmpty = errors.New("meeting id empty")

type MeetingID string

// Meeting groups participants under a shared ID. Participants is
// append-only; there is no removal in the single-client scope.
type Meeting struct {
	ID           MeetingID `json:"id"`
	Passcode     string    `json:"passcode,omitempty"`
	Participants []User    `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewMeeting(id MeetingID, passcode string) (*Meeting, error) {
	if len(id) == 0 {
		return nil, ErrMeetingIDEmpty
	}
	return &Meeting{ID: id, Passcode: passcode, CreatedAt: time.Now()}, nil
}

func (m *Meeting) AddParticipant(u User) {
	m.Participants = append(m.Participants, u)
}
