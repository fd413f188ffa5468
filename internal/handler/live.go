package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/config"
	"github.com/iliyamo/live-waitlist/internal/live"
	"github.com/iliyamo/live-waitlist/internal/service"
	"github.com/iliyamo/live-waitlist/internal/utils"
)

// LiveHandler upgrades GET /v1/queue/live to a websocket and attaches
// the client to the projection topic its identity earns. Anonymous
// connections get the public topic. A token can arrive two ways: as a
// `token` query parameter on the handshake (browsers cannot set an
// Authorization header on a websocket), or later in-band as an auth
// message, which re-evaluates the role and switches the topic without
// reconnecting.
type LiveHandler struct {
	Cfg       config.Config
	Admins    service.AdminChecker
	Hub       *live.Hub
	Projector *live.Projector
}

func NewLiveHandler(cfg config.Config, a service.AdminChecker, h *live.Hub, p *live.Projector) *LiveHandler {
	return &LiveHandler{Cfg: cfg, Admins: a, Hub: h, Projector: p}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type authMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// topicFor resolves a raw token to a projection topic. Any failure on
// the way (bad token, missing email, allowlist lookup error) lands
// on the public topic. Nothing privileged is ever the fallback.
func (h *LiveHandler) topicFor(ctx context.Context, rawToken string) string {
	if rawToken == "" {
		return live.TopicPublic
	}
	email, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, rawToken)
	if err != nil || email == "" {
		return live.TopicPublic
	}
	ok, err := h.Admins.IsAdmin(ctx, email)
	if err != nil || !ok {
		return live.TopicPublic
	}
	return live.TopicAdmin
}

// Serve handles the websocket endpoint.
func (h *LiveHandler) Serve(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	topic := h.topicFor(ctx, c.QueryParam("token"))
	cancel()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		return nil
	}

	client := live.NewClient(h.Hub, conn, topic, h.onMessage)

	go func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		h.Projector.SendSnapshot(sctx, client)
	}()

	client.Run()
	return nil
}

// onMessage handles in-band frames from a live client. The only
// recognized message is {"type":"auth","token":"..."}; everything
// else is ignored. Re-auth with a weaker or absent identity demotes
// the client to the public topic the same way a stronger identity
// promotes it.
func (h *LiveHandler) onMessage(cl *live.Client, data []byte) {
	var msg authMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "auth" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topic := h.topicFor(ctx, msg.Token)
	if topic == cl.Topic() {
		return
	}
	h.Hub.Switch(cl, topic)
	log.Printf("live: client switched to %s view", topic)
	h.Projector.SendSnapshot(ctx, cl)
}
