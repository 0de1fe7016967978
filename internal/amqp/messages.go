package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"smartcents/internal/core"
)

// MessageVersion is bumped when the envelope layout changes incompatibly.
const MessageVersion = 1

// EventMessage is the envelope published for every ledger event. It carries
// the full event so the worker never needs access to the ledger database.
type EventMessage struct {
	Version     int              `json:"version"`
	Event       core.LedgerEvent `json:"event"`
	PublishedAt time.Time        `json:"published_at"`
}

func NewEventMessage(e core.LedgerEvent) *EventMessage {
	return &EventMessage{
		Version:     MessageVersion,
		Event:       e,
		PublishedAt: time.Now(),
	}
}

func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON decodes an envelope and rejects versions and kinds
// this build does not understand.
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	switch msg.Event.Kind {
	case core.EventTransactionRecorded:
		if msg.Event.Transaction == nil {
			return nil, fmt.Errorf("%s event without transaction", msg.Event.Kind)
		}
	case core.EventTransactionDeleted, core.EventCategoryDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Event.Kind)
	}
	if msg.Event.ID == "" {
		return nil, fmt.Errorf("event without id")
	}
	return &msg, nil
}
