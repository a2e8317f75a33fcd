package queue

import (
	"encoding/json"
	"errors"
)

// Message kinds.
const (
	KindNotification = "notification"
)

// CurrentVersion is stamped on every message this build produces.
const CurrentVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	ID           string          `json:"id,omitempty"`
	Kind         string          `json:"kind"`
	Notification json.RawMessage `json:"notification,omitempty"`
	RequestID    string          `json:"requestId"`
	EnqueuedAt   string          `json:"enqueuedAt"`
	Version      int             `json:"version"`
}

var ErrUnknownKind = errors.New("unknown message kind")

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
