package amqp

import (
	"encoding/json"
	"time"
)

// ArchiveMessage points the sync worker at one archived expense row. It
// carries only the id; the worker fetches the full record from the archive.
type ArchiveMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewArchiveMessage creates an archive message for a stored row id.
func NewArchiveMessage(id int64) *ArchiveMessage {
	return &ArchiveMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ArchiveMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ArchiveMessageFromJSON parses a message from JSON bytes.
func ArchiveMessageFromJSON(data []byte) (*ArchiveMessage, error) {
	var msg ArchiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
