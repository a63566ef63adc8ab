// Package session owns the client-wide meeting aggregate: current
// user, current meeting, chat log, settings and layout. All mutations
// go through the Store, which notifies subscribers on every change.
package session

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/media"
)

// DefaultHistoryLimit caps the chat log. The oldest messages are
// dropped once the cap is reached; there is no delete operation.
const DefaultHistoryLimit = 1000

// Snapshot is a read view of the aggregate. Entities are copies; the
// stream fields are display references owned by the lifecycle manager.
type Snapshot struct {
	CurrentUser  *domain.User
	Meeting      *domain.Meeting
	Messages     []domain.ChatMessage
	Settings     domain.Settings
	Layout       domain.Layout
	CameraStream media.Stream
	ScreenStream media.Stream
}

// Store is a threadsafe in-memory session aggregate.
// It holds stream references for display but never releases them.
type Store struct {
	mu           sync.RWMutex
	currentUser  *domain.User
	meeting      *domain.Meeting
	messages     []domain.ChatMessage
	settings     domain.Settings
	layout       domain.Layout
	camera       media.Stream
	screen       media.Stream
	historyLimit int

	subs    map[int]chan Snapshot
	nextSub int
}

func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{
		layout:       domain.LayoutGrid,
		historyLimit: historyLimit,
		subs:         make(map[int]chan Snapshot),
	}
}

func (s *Store) SetCurrentUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = u
	s.notifyLocked()
}

func (s *Store) SetMeeting(m *domain.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meeting = m
	s.notifyLocked()
}

// AppendMessage appends to the tail of the chat log. Order is defined
// by call order, not by message timestamps.
func (s *Store) AppendMessage(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) >= s.historyLimit {
		s.messages = append(s.messages[:0:0], s.messages[1:]...)
	}
	s.messages = append(s.messages, msg)
	s.notifyLocked()
}

// MergeSettings overwrites the fields present in the patch; absent
// fields keep their prior value.
func (s *Store) MergeSettings(p domain.SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Apply(p)
	s.notifyLocked()
}

func (s *Store) SetLayout(l domain.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
	s.notifyLocked()
}

// ToggleMute flips the current user's muted flag. Without a current
// user it is a no-op, not an error. Returns the new value.
func (s *Store) ToggleMute() (muted bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return false, false
	}
	s.currentUser.IsMuted = !s.currentUser.IsMuted
	s.notifyLocked()
	return s.currentUser.IsMuted, true
}

// ToggleVideoOff flips the current user's video-off flag; no-op
// without a current user. Returns the new value.
func (s *Store) ToggleVideoOff() (videoOff bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return false, false
	}
	s.currentUser.IsVideoOff = !s.currentUser.IsVideoOff
	s.notifyLocked()
	return s.currentUser.IsVideoOff, true
}

func (s *Store) SetCameraStream(st media.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = st
	s.notifyLocked()
}

func (s *Store) SetScreenStream(st media.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = st
	s.notifyLocked()
}

func (s *Store) CameraStream() media.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

func (s *Store) ScreenStream() media.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// CurrentUser returns a copy of the current user, or nil.
func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.currentUser)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer. Every mutation delivers a fresh
// snapshot on the returned channel; slow subscribers miss snapshots
// instead of blocking mutators. The cancel func is safe to call twice.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 8)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	log.Debug().Str("module", "session.store").Int("sub", id).Msg("subscriber added")
	return ch, cancel
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		CurrentUser:  copyUser(s.currentUser),
		Settings:     s.settings,
		Layout:       s.layout,
		CameraStream: s.camera,
		ScreenStream: s.screen,
	}
	if s.meeting != nil {
		m := *s.meeting
		m.Participants = append([]domain.User(nil), s.meeting.Participants...)
		snap.Meeting = &m
	}
	snap.Messages = append([]domain.ChatMessage(nil), s.messages...)
	return snap
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			log.Debug().Str("module", "session.store").Int("sub", id).Msg("subscriber slow, snapshot dropped")
		}
	}
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
