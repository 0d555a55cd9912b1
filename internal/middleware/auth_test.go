package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skobelevs/gochat/internal/domain"
	internal_jwt "github.com/skobelevs/gochat/internal/jwt"
)

func TestNeedAuth(t *testing.T) {
	jwtService := internal_jwt.New("secret", time.Minute)

	var seenUser *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
	protected := NeedAuth(jwtService)(next)

	t.Run("valid cookie puts the user into the context", func(t *testing.T) {
		seenUser = nil
		token, err := jwtService.NewToken(domain.User{Id: 7, Email: "alice@example.com"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seenUser)
		assert.Equal(t, domain.UserId(7), seenUser.Id)
		assert.Equal(t, "alice@example.com", seenUser.Email)
	})

	t.Run("missing cookie", func(t *testing.T) {
		seenUser = nil
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seenUser)
	})

	t.Run("tampered token", func(t *testing.T) {
		seenUser = nil
		token, err := internal_jwt.New("other-secret", time.Minute).NewToken(domain.User{Id: 7})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seenUser)
	})
}

func TestGetUserFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserFromContext(req))
}
