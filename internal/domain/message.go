package domain

import "time"

type MsgId = int64

// FileDescriptor references an attachment stored outside the message row.
// Produced once by the uploader and embedded verbatim into the message.
type FileDescriptor struct {
	Url  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// FilePayload is an inbound attachment: base64 data plus client-reported metadata.
type FilePayload struct {
	Data string `validate:"required" json:"data"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Message is immutable after creation. CreatedAt is assigned at persistence time.
type Message struct {
	Id         MsgId           `json:"id"`
	SenderId   UserId          `json:"senderId"`
	ReceiverId UserId          `json:"receiverId"`
	Text       string          `json:"text,omitempty"`
	File       *FileDescriptor `json:"file"`
	CreatedAt  time.Time       `json:"createdAt"`
}
