package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/skobelevs/gochat/internal/utils"
)

// GetMedia streams a stored attachment back to the client.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["file"]

	file, err := h.media.Read(filename)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	io.Copy(w, file)
}
