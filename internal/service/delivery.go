package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/skobelevs/gochat/internal/domain"
	"github.com/skobelevs/gochat/internal/errors"
	"github.com/skobelevs/gochat/internal/logger"
)

// EventNewMessage tags live-push frames carrying a freshly persisted message.
const EventNewMessage = "newMessage"

type DeliveryService interface {
	Send(ctx context.Context, senderId, receiverId domain.UserId, text string, file *domain.FilePayload) (domain.Message, error)
	Conversation(ctx context.Context, userA, userB domain.UserId) ([]domain.Message, error)
}

// Delivery turns a send request into a durable record plus a best-effort
// live notification to the receiver's session, if one exists.
type Delivery struct {
	storage  MessageStorage
	uploader Uploader
	presence Presence
	policy   *bluemonday.Policy
}

type MessageStorage interface {
	CreateMessage(msg domain.Message) (domain.Message, error)
	Conversation(userA, userB domain.UserId) ([]domain.Message, error)
}

type Uploader interface {
	Upload(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error)
}

// Session is a live push channel to one online user.
type Session interface {
	Push(event string, data any) error
}

// Presence maps online user ids to their active session. The connection
// layer owns mutation; the dispatcher only reads, with no staleness
// guarantee beyond "some recent connect/disconnect state".
type Presence interface {
	Session(userId domain.UserId) (Session, bool)
}

func NewDelivery(storage MessageStorage, uploader Uploader, presence Presence) DeliveryService {
	return &Delivery{storage, uploader, presence, bluemonday.StrictPolicy()}
}

func (d *Delivery) Send(ctx context.Context, senderId, receiverId domain.UserId, text string, file *domain.FilePayload) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && file == nil {
		return domain.Message{}, &errors.ErrorWithStatusCode{Message: "Message must contain text or a file", StatusCode: http.StatusBadRequest}
	}

	var descriptor *domain.FileDescriptor
	if file != nil {
		desc, err := d.uploader.Upload(ctx, *file)
		if err != nil {
			// Nothing persisted yet, the whole send aborts.
			return domain.Message{}, err
		}
		descriptor = &desc
	}

	msg := domain.Message{
		SenderId:   senderId,
		ReceiverId: receiverId,
		Text:       d.policy.Sanitize(text),
		File:       descriptor,
	}

	persisted, err := d.storage.CreateMessage(msg)
	if err != nil {
		return domain.Message{}, err
	}

	// The write is durable at this point. The push that follows is
	// best-effort: an offline receiver catches up via conversation lookup,
	// and a failed push never changes the sender's response.
	if session, ok := d.presence.Session(receiverId); ok {
		if err := session.Push(EventNewMessage, persisted); err != nil {
			logger.Log.Warn("live push failed", "receiver", receiverId, "message", persisted.Id, "error", err)
		}
	}

	return persisted, nil
}

func (d *Delivery) Conversation(ctx context.Context, userA, userB domain.UserId) ([]domain.Message, error) {
	return d.storage.Conversation(userA, userB)
}
