package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerSavedMessage announces that a ledger document was written. It carries
// only the document key and its size; consumers reload the document itself.
type LedgerSavedMessage struct {
	Key       string    `json:"key"`
	Lists     int       `json:"lists"`
	Items     int       `json:"items"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSavedMessage(key string, lists, items int) *LedgerSavedMessage {
	return &LedgerSavedMessage{
		Key:       key,
		Lists:     lists,
		Items:     items,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSavedMessageFromJSON decodes a message body. A message without a key
// is rejected.
func LedgerSavedMessageFromJSON(data []byte) (*LedgerSavedMessage, error) {
	var msg LedgerSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("ledger saved message without key")
	}
	return &msg, nil
}
