package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skobelevs/gochat/internal/domain"
	internal_errors "github.com/skobelevs/gochat/internal/errors"
)

type MockMessageStorage struct {
	MockCreateMessage func(msg domain.Message) (domain.Message, error)
	MockConversation  func(userA, userB domain.UserId) ([]domain.Message, error)
}

func (m *MockMessageStorage) CreateMessage(msg domain.Message) (domain.Message, error) {
	if m.MockCreateMessage != nil {
		return m.MockCreateMessage(msg)
	}
	msg.Id = 1
	return msg, nil // Default behavior
}

func (m *MockMessageStorage) Conversation(userA, userB domain.UserId) ([]domain.Message, error) {
	if m.MockConversation != nil {
		return m.MockConversation(userA, userB)
	}
	return []domain.Message{}, nil // Default behavior
}

type MockUploader struct {
	MockUpload func(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error)
}

func (m *MockUploader) Upload(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error) {
	if m.MockUpload != nil {
		return m.MockUpload(ctx, payload)
	}
	return domain.FileDescriptor{}, nil // Default behavior
}

type MockSession struct {
	MockPush func(event string, data any) error
}

func (m *MockSession) Push(event string, data any) error {
	if m.MockPush != nil {
		return m.MockPush(event, data)
	}
	return nil // Default behavior
}

type MockPresence struct {
	MockSession func(userId domain.UserId) (Session, bool)
}

func (m *MockPresence) Session(userId domain.UserId) (Session, bool) {
	if m.MockSession != nil {
		return m.MockSession(userId)
	}
	return nil, false // Default behavior: nobody online
}

func TestDeliverySend(t *testing.T) {
	ctx := context.Background()

	t.Run("persists trimmed text and returns the stored message", func(t *testing.T) {
		var saved domain.Message
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				saved = msg
				msg.Id = 42
				return msg, nil
			},
		}
		d := NewDelivery(storage, &MockUploader{}, &MockPresence{})

		msg, err := d.Send(ctx, 1, 2, "  hello  ", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.MsgId(42), msg.Id)
		assert.Equal(t, domain.UserId(1), saved.SenderId)
		assert.Equal(t, domain.UserId(2), saved.ReceiverId)
		assert.Equal(t, "hello", saved.Text)
		assert.Nil(t, saved.File)
	})

	t.Run("strips markup from text", func(t *testing.T) {
		var saved domain.Message
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				saved = msg
				return msg, nil
			},
		}
		d := NewDelivery(storage, &MockUploader{}, &MockPresence{})

		_, err := d.Send(ctx, 1, 2, "<b>hello</b>", nil)

		require.NoError(t, err)
		assert.Equal(t, "hello", saved.Text)
	})

	t.Run("rejects a message with neither text nor file", func(t *testing.T) {
		storageCalled := false
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				storageCalled = true
				return msg, nil
			},
		}
		d := NewDelivery(storage, &MockUploader{}, &MockPresence{})

		_, err := d.Send(ctx, 1, 2, "   ", nil)

		require.Error(t, err)
		e, ok := err.(*internal_errors.ErrorWithStatusCode)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, e.StatusCode)
		assert.False(t, storageCalled)
	})

	t.Run("pushes once to the receiver session after persistence", func(t *testing.T) {
		var calls []string
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				calls = append(calls, "persist")
				msg.Id = 7
				return msg, nil
			},
		}
		var pushedEvent string
		var pushedMsg domain.Message
		session := &MockSession{
			MockPush: func(event string, data any) error {
				calls = append(calls, "push")
				pushedEvent = event
				pushedMsg = data.(domain.Message)
				return nil
			},
		}
		presence := &MockPresence{
			MockSession: func(userId domain.UserId) (Session, bool) {
				assert.Equal(t, domain.UserId(2), userId)
				return session, true
			},
		}
		d := NewDelivery(storage, &MockUploader{}, presence)

		_, err := d.Send(ctx, 1, 2, "hi", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"persist", "push"}, calls)
		assert.Equal(t, EventNewMessage, pushedEvent)
		assert.Equal(t, domain.MsgId(7), pushedMsg.Id)
	})

	t.Run("skips the push when the receiver is offline", func(t *testing.T) {
		sessionLookups := 0
		presence := &MockPresence{
			MockSession: func(userId domain.UserId) (Session, bool) {
				sessionLookups++
				return nil, false
			},
		}
		d := NewDelivery(&MockMessageStorage{}, &MockUploader{}, presence)

		_, err := d.Send(ctx, 1, 2, "hi", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, sessionLookups)
	})

	t.Run("a failed push does not fail the send", func(t *testing.T) {
		session := &MockSession{
			MockPush: func(event string, data any) error {
				return errors.New("send buffer full")
			},
		}
		presence := &MockPresence{
			MockSession: func(userId domain.UserId) (Session, bool) {
				return session, true
			},
		}
		d := NewDelivery(&MockMessageStorage{}, &MockUploader{}, presence)

		msg, err := d.Send(ctx, 1, 2, "hi", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.MsgId(1), msg.Id)
	})

	t.Run("uploads the attachment and embeds the descriptor", func(t *testing.T) {
		uploader := &MockUploader{
			MockUpload: func(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error) {
				assert.Equal(t, "cat.png", payload.Name)
				return domain.FileDescriptor{Url: "/media/abc.png", Type: "image/png", Name: "cat.png", Size: 3}, nil
			},
		}
		var saved domain.Message
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				saved = msg
				return msg, nil
			},
		}
		d := NewDelivery(storage, uploader, &MockPresence{})

		_, err := d.Send(ctx, 1, 2, "", &domain.FilePayload{Data: "aGk=", Name: "cat.png"})

		require.NoError(t, err)
		require.NotNil(t, saved.File)
		assert.Equal(t, "/media/abc.png", saved.File.Url)
		assert.Equal(t, "image/png", saved.File.Type)
	})

	t.Run("a failed upload persists nothing", func(t *testing.T) {
		mockErr := &internal_errors.ErrorWithStatusCode{Message: "File is too large", StatusCode: http.StatusRequestEntityTooLarge}
		uploader := &MockUploader{
			MockUpload: func(ctx context.Context, payload domain.FilePayload) (domain.FileDescriptor, error) {
				return domain.FileDescriptor{}, mockErr
			},
		}
		storageCalled := false
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				storageCalled = true
				return msg, nil
			},
		}
		d := NewDelivery(storage, uploader, &MockPresence{})

		_, err := d.Send(ctx, 1, 2, "hi", &domain.FilePayload{Data: "aGk="})

		assert.Equal(t, mockErr, err)
		assert.False(t, storageCalled)
	})

	t.Run("a storage error aborts the push", func(t *testing.T) {
		mockErr := errors.New("db down")
		storage := &MockMessageStorage{
			MockCreateMessage: func(msg domain.Message) (domain.Message, error) {
				return domain.Message{}, mockErr
			},
		}
		presence := &MockPresence{
			MockSession: func(userId domain.UserId) (Session, bool) {
				t.Error("presence should not be consulted when persistence fails")
				return nil, false
			},
		}
		d := NewDelivery(storage, &MockUploader{}, presence)

		_, err := d.Send(ctx, 1, 2, "hi", nil)

		assert.Equal(t, mockErr, err)
	})
}

func TestDeliveryConversation(t *testing.T) {
	expected := []domain.Message{{Id: 1, SenderId: 1, ReceiverId: 2, Text: "hi"}}
	storage := &MockMessageStorage{
		MockConversation: func(userA, userB domain.UserId) ([]domain.Message, error) {
			assert.Equal(t, domain.UserId(1), userA)
			assert.Equal(t, domain.UserId(2), userB)
			return expected, nil
		},
	}
	d := NewDelivery(storage, &MockUploader{}, &MockPresence{})

	messages, err := d.Conversation(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Equal(t, expected, messages)
}
