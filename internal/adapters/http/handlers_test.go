package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/emyildirim/meetweb/internal/adapters/http"
	"github.com/emyildirim/meetweb/internal/app"
	"github.com/emyildirim/meetweb/internal/config"
	"github.com/emyildirim/meetweb/internal/media"
	"github.com/emyildirim/meetweb/internal/session"
)

func newTestRouter(t *testing.T) (*gin.Engine, *media.Loopback) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:             "test",
		StaticPath:       t.TempDir(),
		Secret:           "test-secret",
		PingPeriod:       time.Minute,
		ChatHistoryLimit: 100,
	}
	store := session.NewStore(cfg.ChatHistoryLimit)
	gw := media.NewLoopback()
	mgr := app.NewManager(store, gw)
	return router.SetupRouter(context.Background(), cfg, mgr, store, gw), gw
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateMeetingEndpoint(t *testing.T) {
	t.Run("created with navigation signal", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"name": "Alice"})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decode(t, w)
		assert.Regexp(t, `^/meeting/[A-Z][0-9]{10}$`, body["navigateTo"])
		user := body["user"].(map[string]any)
		assert.Equal(t, true, user["isHost"])
	})

	t.Run("empty name is a validation error", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"name": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("denied capture still joins", func(t *testing.T) {
		r, gw := newTestRouter(t)
		gw.DenyMedia(true)
		w := doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"name": "Alice"})
		require.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Contains(t, body, "mediaError")
	})
}

func TestJoinMeetingEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/meetings/A0123456789/join", gin.H{"name": "Bob"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "/meeting/A0123456789", body["navigateTo"])
	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["isHost"])
}

func TestMessageEndpoint(t *testing.T) {
	t.Run("without a meeting", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{"content": "hi"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("appends and returns the message", func(t *testing.T) {
		r, _ := newTestRouter(t)
		doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"name": "Alice"})
		w := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{"content": "hi"})
		require.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, "hi", body["content"])
		assert.Equal(t, "Alice", body["senderName"])
	})
}

func TestControlEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/meetings", gin.H{"name": "Alice"})

	w := doJSON(t, r, http.MethodPost, "/api/controls/mute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["isMuted"])
	assert.Equal(t, true, body["applied"])

	w = doJSON(t, r, http.MethodPost, "/api/controls/screen-share/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stateBody := decode(t, w)
	assert.Equal(t, true, stateBody["screenSharing"])

	w = doJSON(t, r, http.MethodPost, "/api/leave", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/state", nil)
	stateBody = decode(t, w)
	assert.Nil(t, stateBody["currentUser"])
	assert.Nil(t, stateBody["meeting"])
}

func TestLayoutEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/layout", gin.H{"layout": "speaker"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/layout", gin.H{"layout": "mosaic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/api/settings", gin.H{"accountId": "A"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPatch, "/api/settings", gin.H{"audioInput": "X"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/settings", nil)
	body := decode(t, w)
	assert.Equal(t, "A", body["accountId"])
	assert.Equal(t, "X", body["audioInput"])
}

func TestDevicesEndpoint(t *testing.T) {
	r, gw := newTestRouter(t)
	gw.SetDevices(
		[]media.DeviceDescriptor{{DeviceID: "m1", Label: "Mic 1"}},
		[]media.DeviceDescriptor{{DeviceID: "c1", Label: "Cam 1"}, {DeviceID: "c2", Label: "Cam 2"}},
	)

	w := doJSON(t, r, http.MethodGet, "/api/devices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["audioInputs"], 1)
	assert.Len(t, body["videoInputs"], 2)
}
