package utils

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/skobelevs/gochat/internal/errors"
)

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("coded error keeps its status and message", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteErrorAndStatusCode(rr, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", strings.TrimSpace(rr.Body.String()))
	})

	t.Run("plain error is a generic 500", func(t *testing.T) {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)

		rr := httptest.NewRecorder()

		WriteErrorAndStatusCode(rr, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		// Internal detail must not reach the client.
		assert.NotContains(t, rr.Body.String(), "pq:")
	})
}

func TestDecodeValidate(t *testing.T) {
	type body struct {
		Email string `validate:"required,email" json:"email"`
	}

	t.Run("valid body", func(t *testing.T) {
		var b body
		err := DecodeValidate(io.NopCloser(bytes.NewBufferString(`{"email": "a@b.com"}`)), &b)

		require.NoError(t, err)
		assert.Equal(t, "a@b.com", b.Email)
	})

	t.Run("invalid json", func(t *testing.T) {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)

		var b body
		err := DecodeValidate(io.NopCloser(bytes.NewBufferString(`{]`)), &b)

		require.Error(t, err)
		e, ok := err.(*internal_errors.ErrorWithStatusCode)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, e.StatusCode)
	})

	t.Run("missing required field", func(t *testing.T) {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)

		var b body
		err := DecodeValidate(io.NopCloser(bytes.NewBufferString(`{}`)), &b)

		require.Error(t, err)
		e, ok := err.(*internal_errors.ErrorWithStatusCode)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, e.StatusCode)
	})
}

func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:4321"

	ip, err := GetIP(req)

	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", ip)
}
