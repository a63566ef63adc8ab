package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/identity"
)

// JoinResult is what create/join hands back to the presentation layer.
// The meeting ID doubles as the navigate-to-room signal.
type JoinResult struct {
	User    domain.User
	Meeting domain.Meeting

	// MediaErr reports a failed default stream acquisition. The join
	// itself succeeded; the session is just stream-less and the UI
	// decides whether to retry.
	MediaErr error
}

// CreateMeeting starts a new meeting with the caller as host. A
// provided passcode wins over a generated one.
func (m *Manager) CreateMeeting(ctx context.Context, name, passcode string) (JoinResult, error) {
	if passcode == "" {
		passcode = identity.NewPasscode()
	}
	return m.join(ctx, name, domain.MeetingID(identity.NewMeetingID()), passcode, true)
}

// JoinMeeting joins an existing meeting; the meeting ID comes from the
// navigation layer (shared link).
func (m *Manager) JoinMeeting(ctx context.Context, name string, meetingID domain.MeetingID, passcode string) (JoinResult, error) {
	if meetingID == "" {
		return JoinResult{}, domain.ErrMeetingIDEmpty
	}
	return m.join(ctx, name, meetingID, passcode, false)
}

func (m *Manager) join(ctx context.Context, name string, meetingID domain.MeetingID, passcode string, host bool) (JoinResult, error) {
	m.camMu.Lock()
	defer m.camMu.Unlock()

	// Validation failures mutate nothing.
	user, err := domain.NewUser(domain.UserID(identity.NewAccountID()), name, host)
	if err != nil {
		return JoinResult{}, err
	}
	meeting, err := domain.NewMeeting(meetingID, passcode)
	if err != nil {
		return JoinResult{}, err
	}
	meeting.AddParticipant(*user)

	// Re-joining without leaving: at most one live stream per user,
	// so the previous one goes first.
	m.releaseCamera()

	m.store.SetCurrentUser(user)
	m.store.SetMeeting(meeting)
	accountID := string(user.ID)
	mid := string(meetingID)
	m.store.MergeSettings(domain.SettingsPatch{
		AccountID: &accountID,
		MeetingID: &mid,
		Passcode:  &passcode,
	})
	log.Info().Str("module", "app.manager").Str("meeting", mid).Str("user", accountID).Bool("host", host).Msg("joined meeting")

	res := JoinResult{User: *user, Meeting: *meeting}

	gen := m.gen.Load()
	m.setState(SlotAcquiring)
	stream, err := m.gw.AcquireMediaStream(ctx, m.constraints())
	if err != nil {
		// Not fatal to the session: joined, but stream-less.
		m.setState(SlotIdle)
		log.Warn().Err(err).Str("module", "app.manager").Msg("default stream acquisition failed")
		res.MediaErr = err
		return res, nil
	}
	if m.gen.Load() != gen {
		// Leave arrived while acquiring: release immediately, never attach.
		m.gw.ReleaseStream(stream)
		res.MediaErr = ErrSessionEnded
		return res, nil
	}
	m.attachCamera(stream)
	m.setState(SlotLive)
	return res, nil
}

// SendMessage appends an immutable chat message from the current user.
func (m *Manager) SendMessage(content string) (domain.ChatMessage, error) {
	u := m.store.CurrentUser()
	if u == nil {
		return domain.ChatMessage{}, ErrNotInMeeting
	}
	msg, err := domain.NewChatMessage(u, content)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	m.store.AppendMessage(msg)
	return msg, nil
}

// Leave releases every owned stream (camera and screen) exactly once,
// clears the session aggregate and ends the current session
// generation. An acquisition still in flight is released by its own
// goroutine once it resolves.
func (m *Manager) Leave() {
	m.gen.Add(1)

	m.camMu.Lock()
	defer m.camMu.Unlock()
	m.screenMu.Lock()
	defer m.screenMu.Unlock()

	m.releaseCamera()
	if s := m.store.ScreenStream(); s != nil {
		m.gw.ReleaseStream(s)
		m.store.SetScreenStream(nil)
	}
	m.store.SetCurrentUser(nil)
	m.store.SetMeeting(nil)
	m.setState(SlotReleased)
	log.Info().Str("module", "app.manager").Msg("left meeting")
}
