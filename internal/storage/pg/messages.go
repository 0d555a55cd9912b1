package pg

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skobelevs/gochat/internal/domain"
)

// CreateMessage persists the message and returns it with its assigned id and
// timestamp. Messages are immutable; there is no update or delete path.
func (s *Storage) CreateMessage(msg domain.Message) (domain.Message, error) {
	createdTs := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway

	var fileUrl, fileType, fileName *string
	var fileSize *int64
	if msg.File != nil {
		fileUrl, fileType, fileName, fileSize = &msg.File.Url, &msg.File.Type, &msg.File.Name, &msg.File.Size
	}

	err := s.db.QueryRow(`
	INSERT INTO messages(sender_id, receiver_id, text, file_url, file_type, file_name, file_size, created)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`,
		msg.SenderId, msg.ReceiverId, msg.Text, fileUrl, fileType, fileName, fileSize, createdTs).Scan(&msg.Id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	msg.CreatedAt = createdTs
	return msg, nil
}

// Conversation returns every message exchanged between the two users, in
// insertion order, without pagination.
func (s *Storage) Conversation(userA, userB domain.UserId) ([]domain.Message, error) {
	rows, err := s.db.Query(`
	SELECT id, sender_id, receiver_id, text, file_url, file_type, file_name, file_size, created
	FROM messages
	WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	ORDER BY id`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var fileUrl, fileType, fileName sql.NullString
		var fileSize sql.NullInt64
		err := rows.Scan(&msg.Id, &msg.SenderId, &msg.ReceiverId, &msg.Text,
			&fileUrl, &fileType, &fileName, &fileSize, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if fileUrl.Valid {
			msg.File = &domain.FileDescriptor{
				Url:  fileUrl.String,
				Type: fileType.String,
				Name: fileName.String,
				Size: fileSize.Int64,
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return messages, nil
}
