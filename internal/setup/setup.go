package setup

import (
	"github.com/skobelevs/gochat/internal/config"
	"github.com/skobelevs/gochat/internal/handler"
	"github.com/skobelevs/gochat/internal/jwt"
	"github.com/skobelevs/gochat/internal/service"
	"github.com/skobelevs/gochat/internal/storage/fs"
	"github.com/skobelevs/gochat/internal/storage/pg"
	"github.com/skobelevs/gochat/internal/ws"
)

// Dependencies holds all initialized application dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Media   *fs.Storage
	Hub     *ws.Hub
	Handler *handler.Handler
	Jwt     jwt.JwtService
}

// SetupDependencies initializes everything the API server needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	media, err := fs.New(cfg.Public.MediaRoot, cfg.Public.MediaBaseURL, cfg.Public.MaxFileBytes)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub()
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, jwtService)
	friends := service.NewFriends(storage)
	delivery := service.NewDelivery(storage, media, hub)

	h := handler.New(auth, friends, delivery, media, jwtService, hub, cfg)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Media:   media,
		Hub:     hub,
		Handler: h,
		Jwt:     jwtService,
	}, nil
}
