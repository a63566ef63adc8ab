// Package state pushes session snapshots to connected UI clients over
// a websocket, so the view re-renders on every store mutation.
package state

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/session"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	store      *session.Store
	pingPeriod time.Duration
}

func NewController(store *session.Store, pingPeriod time.Duration) *Controller {
	return &Controller{store: store, pingPeriod: pingPeriod}
}

// UserDTO is a read-only view for clients (no stream handles).
type UserDTO struct {
	ID         domain.UserID `json:"id"`
	Name       string        `json:"name"`
	IsHost     bool          `json:"isHost"`
	IsMuted    bool          `json:"isMuted"`
	IsVideoOff bool          `json:"isVideoOff"`
	HasStream  bool          `json:"hasStream"`
}

type StateDTO struct {
	CurrentUser   *UserDTO             `json:"currentUser"`
	Meeting       *domain.Meeting      `json:"meeting"`
	Messages      []domain.ChatMessage `json:"messages"`
	Settings      domain.Settings      `json:"settings"`
	Layout        domain.Layout        `json:"layout"`
	ScreenSharing bool                 `json:"screenSharing"`
}

func ToDTO(snap session.Snapshot) StateDTO {
	dto := StateDTO{
		Meeting:       snap.Meeting,
		Messages:      snap.Messages,
		Settings:      snap.Settings,
		Layout:        snap.Layout,
		ScreenSharing: snap.ScreenStream != nil,
	}
	if u := snap.CurrentUser; u != nil {
		dto.CurrentUser = &UserDTO{
			ID:         u.ID,
			Name:       u.Name,
			IsHost:     u.IsHost,
			IsMuted:    u.IsMuted,
			IsVideoOff: u.IsVideoOff,
			HasStream:  snap.CameraStream != nil,
		}
	}
	return dto
}

// Handle upgrades the request and forwards store snapshots until the
// client goes away or ctx is canceled.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.state").Msg("ws upgrade")
		return
	}

	snapshots, cancel := ctl.store.Subscribe()
	ctx, stop := context.WithCancel(ctx)

	go ctl.writePump(ctx, ws, snapshots)

	// Read pump only detects the client going away.
	go func() {
		defer func() {
			stop()
			cancel()
			_ = ws.Close()
			log.Info().Str("module", "adapters.state").Msg("state subscriber closed")
		}()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (ctl *Controller) writePump(ctx context.Context, ws *websocket.Conn, snapshots <-chan session.Snapshot) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	write := func(snap session.Snapshot) error {
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return ws.WriteJSON(ToDTO(snap))
	}

	if err := write(ctl.store.Snapshot()); err != nil {
		log.Error().Err(err).Str("module", "adapters.state").Msg("initial snapshot write")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := write(snap); err != nil {
				log.Error().Err(err).Str("module", "adapters.state").Msg("snapshot write")
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
