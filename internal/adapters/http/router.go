package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/adapters/state"
	"github.com/emyildirim/meetweb/internal/app"
	"github.com/emyildirim/meetweb/internal/config"
	"github.com/emyildirim/meetweb/internal/media"
	"github.com/emyildirim/meetweb/internal/session"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, mgr *app.Manager, store *session.Store, gw media.Gateway) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MeetSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	// Shared meeting links land on the same client app.
	r.GET("/meeting/:id", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := NewHandlers(mgr, store, gw)
	stateCtl := state.NewController(store, cfg.PingPeriod)

	api := r.Group("/api")

	api.POST("/meetings", h.createMeeting)
	api.POST("/meetings/:id/join", h.joinMeeting)
	api.POST("/leave", h.leave)
	api.GET("/state", h.readState)

	api.POST("/messages", h.sendMessage)
	api.POST("/layout", h.setLayout)

	api.POST("/controls/mute", h.toggleMute)
	api.POST("/controls/video", h.toggleVideo)
	api.POST("/controls/screen-share/start", h.startScreenShare)
	api.POST("/controls/screen-share/stop", h.stopScreenShare)

	api.GET("/devices", h.listDevices)
	api.POST("/devices/switch", h.switchDevice)

	api.GET("/settings", h.readSettings)
	api.PATCH("/settings", h.mergeSettings)

	api.GET("/ws/state", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws state endpoint hit")
		stateCtl.Handle(ctx, c)
	})

	return r
}
