package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExchangeLedgerEvents exchange topic por defecto para los eventos del ledger.
const ExchangeLedgerEvents = "inventory.ledger.events"

// Event sobre común de todos los mensajes publicados.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent serializa data dentro de un sobre nuevo.
func NewEvent(eventType, source, correlationID string, data any, now time.Time) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("serializar datos del evento: %w", err)
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     now.UTC(),
		CorrelationID: correlationID,
		Data:          raw,
	}, nil
}

// UnmarshalData decodifica Data en v.
func (e *Event) UnmarshalData(v any) error {
	return json.Unmarshal(e.Data, v)
}
