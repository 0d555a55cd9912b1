package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/skobelevs/gochat/internal/domain"
	internal_jwt "github.com/skobelevs/gochat/internal/jwt"
	"github.com/skobelevs/gochat/internal/utils"
)

// Key to store the user claims in the request context
type key int

const userClaimsKey key = 0

// NeedAuth enforces a valid accessToken cookie and stores the user in the request context.
func NeedAuth(jwtService internal_jwt.JwtService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessCookie, err := r.Cookie("accessToken")
			if err == http.ErrNoCookie {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			} else if err != nil {
				log.Print(err)
				// this error shouldnt happen
				http.Error(w, "Invalid cookie", http.StatusInternalServerError)
				return
			}

			token, err := jwtService.DecodeToken(accessCookie.Value)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			user, err := internal_jwt.User(token)
			if err != nil {
				log.Print(err)
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, WithUser(r, &user))
		})
	}
}

// WithUser returns a request whose context carries the authenticated user.
func WithUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userClaimsKey, user))
}

// GetUserFromContext retrieves the authenticated user, or nil outside NeedAuth.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
