package ws

import (
	"net/http"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/auth"
)

// Handler upgrades authenticated HTTP requests to WebSocket sessions.
type Handler struct {
	registry *Registry
	upgrader gorillawebsocket.Upgrader
}

// NewHandler creates a handler bound to the given registry. Upgrade
// requests are accepted only from the listed origins, matching the
// CORS policy on the HTTP surface; "*" allows any origin and requests
// without an Origin header (non-browser clients) always pass.
func NewHandler(registry *Registry, allowedOrigins []string) *Handler {
	return &Handler{
		registry: registry,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return OriginAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

// OriginAllowed applies the origin allowlist to one Origin header value.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// RegisterRoutes registers the WebSocket endpoint on the provided group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the connection and registers a session whose room
// membership is derived from the authenticated identity. The caller's role
// and ids were verified by the auth middleware; the registry trusts them.
func (h *Handler) HandleConnect(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	role, err := ParseRole(id.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}

	actorID := id.ActorID
	if role == RoleAdmin {
		actorID = id.UserID
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	session := NewSession(id.UserID, role, actorID, &gorillaConnAdapter{conn})
	h.registry.Register(session)

	go h.writePump(session)
	go h.readPump(session)

	return nil
}

// readPump drains inbound frames until the client disconnects. Clients send
// nothing meaningful; membership is fixed at connect time.
func (h *Handler) readPump(s *Session) {
	defer func() {
		h.registry.Unregister(s.ID)
		s.conn.Close()
	}()

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes queued payloads to the connection until the session's
// send channel is closed by Unregister.
func (h *Handler) writePump(s *Session) {
	defer s.conn.Close()

	for message := range s.send {
		if err := s.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
