package amqp

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// MessageTypeImportCompleted labels import events in metrics and logs.
const MessageTypeImportCompleted = "import_completed"

// ImportCompletedMessage announces a persisted import batch. Periods lists
// every YYYY-MM touched by the batch so consumers can rebuild those reports.
type ImportCompletedMessage struct {
	ImportID     string    `json:"importId"`
	Imported     int       `json:"imported"`
	Skipped      int       `json:"skipped"`
	Unclassified int       `json:"unclassified"`
	Periods      []string  `json:"periods"`
	Currencies   []string  `json:"currencies"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewImportCompletedMessage copies and sorts periods and currencies.
func NewImportCompletedMessage(importID string, imported, skipped, unclassified int, periods, currencies []string) *ImportCompletedMessage {
	p := append([]string(nil), periods...)
	c := append([]string(nil), currencies...)
	sort.Strings(p)
	sort.Strings(c)
	return &ImportCompletedMessage{
		ImportID:     importID,
		Imported:     imported,
		Skipped:      skipped,
		Unclassified: unclassified,
		Periods:      p,
		Currencies:   c,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON decodes a message and rejects one without an import ID.
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ImportID == "" {
		return nil, errors.New("import completed message without importId")
	}
	return &msg, nil
}
