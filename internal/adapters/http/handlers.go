package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/adapters/rtc"
	"github.com/emyildirim/meetweb/internal/adapters/state"
	"github.com/emyildirim/meetweb/internal/app"
	"github.com/emyildirim/meetweb/internal/domain"
	"github.com/emyildirim/meetweb/internal/media"
	"github.com/emyildirim/meetweb/internal/session"
)

// Handlers binds the lifecycle manager and session store to the HTTP
// surface. It also owns the unwired peer connection built around the
// current camera stream.
type Handlers struct {
	mgr   *app.Manager
	store *session.Store
	gw    media.Gateway

	mu   sync.Mutex
	peer *rtc.Peer
}

func NewHandlers(mgr *app.Manager, store *session.Store, gw media.Gateway) *Handlers {
	return &Handlers{mgr: mgr, store: store, gw: gw}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrMeetingIDEmpty),
		errors.Is(err, domain.ErrMessageEmpty),
		errors.Is(err, domain.ErrUnknownLayout):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotInMeeting),
		errors.Is(err, app.ErrScreenShareActive),
		errors.Is(err, app.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, media.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, media.ErrDeviceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, media.ErrNotSupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

type createRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type joinRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

func (h *Handlers) createMeeting(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.mgr.CreateMeeting(c.Request.Context(), req.Name, req.Passcode)
	if err != nil {
		fail(c, err)
		return
	}
	h.finishJoin(c, res, http.StatusCreated)
}

func (h *Handlers) joinMeeting(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	meetingID := domain.MeetingID(c.Param("id"))
	res, err := h.mgr.JoinMeeting(c.Request.Context(), req.Name, meetingID, req.Passcode)
	if err != nil {
		fail(c, err)
		return
	}
	h.finishJoin(c, res, http.StatusOK)
}

func (h *Handlers) finishJoin(c *gin.Context, res app.JoinResult, status int) {
	sess := sessions.Default(c)
	sess.Set("account_id", string(res.User.ID))
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}

	h.resetPeer()

	resp := gin.H{
		"user":       res.User,
		"meeting":    res.Meeting,
		"navigateTo": "/meeting/" + string(res.Meeting.ID),
	}
	if res.MediaErr != nil {
		resp["mediaError"] = res.MediaErr.Error()
	}
	c.JSON(status, resp)
}

func (h *Handlers) leave(c *gin.Context) {
	h.mgr.Leave()
	h.closePeer()
	c.JSON(http.StatusOK, gin.H{"navigateTo": "/"})
}

func (h *Handlers) readState(c *gin.Context) {
	c.JSON(http.StatusOK, state.ToDTO(h.store.Snapshot()))
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *Handlers) sendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	msg, err := h.mgr.SendMessage(req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

func (h *Handlers) setLayout(c *gin.Context) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	layout, err := domain.ParseLayout(req.Layout)
	if err != nil {
		fail(c, err)
		return
	}
	h.store.SetLayout(layout)
	c.JSON(http.StatusOK, gin.H{"layout": layout})
}

func (h *Handlers) toggleMute(c *gin.Context) {
	muted, ok := h.mgr.ToggleMute()
	c.JSON(http.StatusOK, gin.H{"isMuted": muted, "applied": ok})
}

func (h *Handlers) toggleVideo(c *gin.Context) {
	videoOff, ok := h.mgr.ToggleVideo()
	c.JSON(http.StatusOK, gin.H{"isVideoOff": videoOff, "applied": ok})
}

func (h *Handlers) startScreenShare(c *gin.Context) {
	if err := h.mgr.StartScreenShare(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screenSharing": true})
}

func (h *Handlers) stopScreenShare(c *gin.Context) {
	h.mgr.StopScreenShare()
	c.JSON(http.StatusOK, gin.H{"screenSharing": false})
}

func (h *Handlers) listDevices(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"audioInputs": h.gw.ListAudioInputs(ctx),
		"videoInputs": h.gw.ListVideoInputs(ctx),
	})
}

type switchDeviceRequest struct {
	Kind     string `json:"kind"`
	DeviceID string `json:"deviceId"`
}

func (h *Handlers) switchDevice(c *gin.Context) {
	var req switchDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.mgr.SwitchDevice(c.Request.Context(), media.TrackKind(req.Kind), req.DeviceID); err != nil {
		fail(c, err)
		return
	}
	h.resetPeer()
	c.JSON(http.StatusOK, gin.H{"settings": h.store.Settings()})
}

func (h *Handlers) readSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Settings())
}

func (h *Handlers) mergeSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.store.MergeSettings(patch)
	c.JSON(http.StatusOK, h.store.Settings())
}

// resetPeer rebuilds the unwired peer connection around the current
// camera stream, dropping any previous one.
func (h *Handlers) resetPeer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.peer != nil {
		h.peer.Close()
		h.peer = nil
	}
	stream := h.store.CameraStream()
	if stream == nil {
		return
	}
	peer, err := rtc.NewPeer(rtc.DefaultConfig(), stream)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("peer setup failed")
		return
	}
	h.peer = peer
}

func (h *Handlers) closePeer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.peer != nil {
		h.peer.Close()
		h.peer = nil
	}
}
