package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/skobelevs/gochat/internal/middleware"
	"github.com/skobelevs/gochat/internal/middleware/metrics"
	rl "github.com/skobelevs/gochat/internal/ratelimiter"
	"github.com/skobelevs/gochat/internal/setup"
)

// New creates and configures the mux router with all the routes.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(handlers.CompressHandler)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(deps.Config.Public.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	))
	r.Use(metrics.Middleware)

	// Avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := deps.Handler

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/media/{file}", h.GetMedia).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Auth routes, rate limited by IP
	auth := v1.PathPrefix("/auth").Subrouter()
	authLimited := auth.NewRoute().Subrouter()
	authLimited.Use(mw.RateLimit(rl.New(1, 3, 1*time.Hour), mw.GetIP)) // 1 per second by IP
	authLimited.HandleFunc("/signup", h.Signup).Methods("POST")
	authLimited.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")

	// Live channel authenticates through its query token, not the cookie
	v1.HandleFunc("/ws", h.LiveChannel).Methods("GET")

	// Logged-in routes. Specific paths are registered before the
	// conversation wildcard so /users and /search never match it.
	loggedIn := v1.NewRoute().Subrouter()
	loggedIn.Use(mw.NeedAuth(deps.Jwt))

	loggedIn.HandleFunc("/users", h.GetFriends).Methods("GET")
	loggedIn.HandleFunc("/search", h.SearchUsers).Methods("GET")
	loggedIn.HandleFunc("/add-friend", h.AddFriend).Methods("POST")
	// SendMessage: 1 per second per user
	loggedIn.Handle("/send/{user}", mw.RateLimit(rl.New(1, 1, 1*time.Hour), mw.GetUserIDFromContext)(http.HandlerFunc(h.SendMessage))).Methods("POST")
	loggedIn.HandleFunc("/{user}", h.GetConversation).Methods("GET")

	return r
}
