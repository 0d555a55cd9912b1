package fs

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/skobelevs/gochat/internal/domain"
	internal_errors "github.com/skobelevs/gochat/internal/errors"
	"github.com/skobelevs/gochat/internal/logger"
	"github.com/skobelevs/gochat/internal/service"
)

// Storage keeps uploaded attachments on the local filesystem and hands out
// stable /media URLs for them.
type Storage struct {
	rootPath string
	baseURL  string
	maxBytes int64
}

// Ensure Storage implements the dispatcher's collaborator interface.
var _ service.Uploader = (*Storage)(nil)

func New(rootPath, baseURL string, maxBytes int64) (*Storage, error) {
	// filepath.Clean prevents path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Upload decodes the base64 payload, stores it under a generated name and
// returns the descriptor that gets embedded into the message. Called before
// the message is persisted; any error here aborts the whole send.
func (s *Storage) Upload(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error) {
	data := payload.Data
	// Clients send data URIs ("data:image/png;base64,...") as well as bare base64.
	if i := strings.Index(data, "base64,"); i >= 0 {
		data = data[i+len("base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return domain.FileDescriptor{}, &internal_errors.ErrorWithStatusCode{Message: "File data is not valid base64", StatusCode: http.StatusBadRequest}
	}
	if len(raw) == 0 {
		return domain.FileDescriptor{}, &internal_errors.ErrorWithStatusCode{Message: "File data is empty", StatusCode: http.StatusBadRequest}
	}
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return domain.FileDescriptor{}, &internal_errors.ErrorWithStatusCode{Message: "File is too large", StatusCode: http.StatusRequestEntityTooLarge}
	}

	// Sniff the real content type instead of trusting the client.
	mt := mimetype.Detect(raw)
	fileType := payload.Type
	if fileType == "" {
		fileType = mt.String()
	}

	if strings.HasPrefix(mt.String(), "image/") {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
			logger.Log.Debug("image attachment", "width", cfg.Width, "height", cfg.Height, "mime", mt.String())
		}
	}

	ext := mt.Extension()
	if ext == "" {
		ext = filepath.Ext(payload.Name)
	}
	filename := uuid.NewString() + ext

	fullPath := filepath.Join(s.rootPath, filename)
	if err := os.WriteFile(fullPath, raw, 0644); err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("failed to write attachment: %w", err)
	}

	return domain.FileDescriptor{
		Url:  s.baseURL + "/" + filename,
		Type: fileType,
		Name: payload.Name,
		Size: int64(len(raw)),
	}, nil
}

// Read opens a stored attachment for serving.
func (s *Storage) Read(filename string) (io.ReadCloser, error) {
	// Only bare filenames are handed out, so only bare filenames come back.
	if filename != filepath.Base(filename) || filename == "." || filename == "" {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Attachment not found", StatusCode: http.StatusNotFound}
	}

	file, err := os.Open(filepath.Join(s.rootPath, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Attachment not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}

	return file, nil
}
