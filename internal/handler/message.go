package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skobelevs/gochat/internal/domain"
	"github.com/skobelevs/gochat/internal/middleware"
	"github.com/skobelevs/gochat/internal/utils"
)

// GetConversation returns the full message history with the user in the path.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	otherId, err := strconv.ParseInt(mux.Vars(r)["user"], 10, 64)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	messages, err := h.delivery.Conversation(r.Context(), user.Id, otherId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, messages)
}

// SendMessage persists a message for the receiver in the path and pushes it
// live when the receiver is online.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	receiverId, err := strconv.ParseInt(mux.Vars(r)["user"], 10, 64)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	type bodyJson struct {
		Text string              `json:"text"`
		File *domain.FilePayload `json:"file"`
	}
	var body bodyJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.delivery.Send(r.Context(), user.Id, receiverId, body.Text, body.File)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, msg)
}
