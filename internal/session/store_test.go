package session_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("1ABCDEFGHI", "Alice", true)
	require.NoError(t, err)
	return u
}

func TestMergeSettings(t *testing.T) {
	t.Run("merge never drops unrelated fields", func(t *testing.T) {
		s := session.NewStore(0)
		s.MergeSettings(domain.SettingsPatch{AccountID: ptr("A")})
		s.MergeSettings(domain.SettingsPatch{AudioInput: ptr("X")})

		got := s.Settings()
		assert.Equal(t, "A", got.AccountID)
		assert.Equal(t, "X", got.AudioInput)
	})

	t.Run("present keys overwrite", func(t *testing.T) {
		s := session.NewStore(0)
		s.MergeSettings(domain.SettingsPatch{MeetingID: ptr("M1"), Passcode: ptr("A1B2C3")})
		s.MergeSettings(domain.SettingsPatch{MeetingID: ptr("M2")})

		got := s.Settings()
		assert.Equal(t, "M2", got.MeetingID)
		assert.Equal(t, "A1B2C3", got.Passcode)
	})
}

func TestAppendMessage(t *testing.T) {
	t.Run("append-only, ordered by call order", func(t *testing.T) {
		s := session.NewStore(0)
		u := newUser(t)
		// Timestamps deliberately out of order: they must not affect order.
		base := time.Now()
		for i := 0; i < 5; i++ {
			msg, err := domain.NewChatMessage(u, fmt.Sprintf("msg-%d", i))
			require.NoError(t, err)
			msg.Timestamp = base.Add(-time.Duration(i) * time.Minute)
			s.AppendMessage(msg)
		}

		msgs := s.Snapshot().Messages
		require.Len(t, msgs, 5)
		for i, m := range msgs {
			assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
		}
	})

	t.Run("history cap drops the oldest", func(t *testing.T) {
		s := session.NewStore(3)
		u := newUser(t)
		for i := 0; i < 5; i++ {
			msg, err := domain.NewChatMessage(u, fmt.Sprintf("msg-%d", i))
			require.NoError(t, err)
			s.AppendMessage(msg)
		}

		msgs := s.Snapshot().Messages
		require.Len(t, msgs, 3)
		assert.Equal(t, "msg-2", msgs[0].Content)
		assert.Equal(t, "msg-4", msgs[2].Content)
	})
}

func TestToggles(t *testing.T) {
	t.Run("no-op without current user", func(t *testing.T) {
		s := session.NewStore(0)
		_, ok := s.ToggleMute()
		assert.False(t, ok)
		_, ok = s.ToggleVideoOff()
		assert.False(t, ok)
	})

	t.Run("double toggle restores the flag", func(t *testing.T) {
		s := session.NewStore(0)
		s.SetCurrentUser(newUser(t))

		muted, ok := s.ToggleMute()
		require.True(t, ok)
		assert.True(t, muted)

		muted, ok = s.ToggleMute()
		require.True(t, ok)
		assert.False(t, muted)
	})
}

func TestSnapshotIsolation(t *testing.T) {
	s := session.NewStore(0)
	s.SetCurrentUser(newUser(t))

	snap := s.Snapshot()
	snap.CurrentUser.Name = "Mallory"

	assert.Equal(t, "Alice", s.CurrentUser().Name)
}

func TestSubscribe(t *testing.T) {
	t.Run("every mutation notifies", func(t *testing.T) {
		s := session.NewStore(0)
		ch, cancel := s.Subscribe()
		defer cancel()

		s.SetLayout(domain.LayoutSpeaker)
		snap := <-ch
		assert.Equal(t, domain.LayoutSpeaker, snap.Layout)

		s.SetCurrentUser(newUser(t))
		snap = <-ch
		require.NotNil(t, snap.CurrentUser)
		assert.Equal(t, "Alice", snap.CurrentUser.Name)
	})

	t.Run("cancel is idempotent and stops delivery", func(t *testing.T) {
		s := session.NewStore(0)
		ch, cancel := s.Subscribe()
		cancel()
		cancel()

		s.SetLayout(domain.LayoutSpeaker)
		_, open := <-ch
		assert.False(t, open)
	})

	t.Run("slow subscriber does not block mutators", func(t *testing.T) {
		s := session.NewStore(0)
		_, cancel := s.Subscribe()
		defer cancel()

		// More mutations than the subscriber buffer holds.
		for i := 0; i < 20; i++ {
			s.SetLayout(domain.LayoutGrid)
		}
	})
}
