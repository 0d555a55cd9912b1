package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/skobelevs/gochat/internal/config"
	"github.com/skobelevs/gochat/internal/jwt"
	"github.com/skobelevs/gochat/internal/service"
	"github.com/skobelevs/gochat/internal/ws"
)

// MediaReader serves stored attachments back to clients.
type MediaReader interface {
	Read(filename string) (io.ReadCloser, error)
}

type Handler struct {
	auth     service.AuthService
	friends  service.FriendsService
	delivery service.DeliveryService
	media    MediaReader
	jwt      jwt.JwtService
	hub      *ws.Hub
	cfg      *config.Config
}

func New(auth service.AuthService, friends service.FriendsService, delivery service.DeliveryService, media MediaReader, jwtService jwt.JwtService, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{auth, friends, delivery, media, jwtService, hub, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Print(err.Error())
	}
}
