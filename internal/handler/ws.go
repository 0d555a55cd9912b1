package handler

import (
	"net/http"

	"nhooyr.io/websocket"

	internal_jwt "github.com/skobelevs/gochat/internal/jwt"
)

// LiveChannel upgrades the connection and registers it as the caller's
// presence session. Push-only: the client never sends data frames, but
// CloseRead keeps control frames processed.
// Browsers can't set headers on native WebSocket, so auth rides a query param.
func (h *Handler) LiveChannel(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	token, err := h.jwt.DecodeToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	user, err := internal_jwt.User(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.Public.AllowedOrigins,
	})
	if err != nil {
		return // Accept already wrote the error response
	}

	ctx := conn.CloseRead(r.Context())

	client := h.hub.Add(user.Id, conn)
	defer h.hub.Remove(client)

	// Block until the client disconnects or a reconnect replaces the session.
	select {
	case <-ctx.Done():
	case <-client.Done():
	}
}
