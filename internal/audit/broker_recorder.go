package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/message_broaker"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// BrokerRecorder publishes records as JSON to a message broker queue.
type BrokerRecorder struct {
	broker message_broaker.Publisher
	queue  string
}

func NewBrokerRecorder(broker message_broaker.Publisher, queue string) *BrokerRecorder {
	return &BrokerRecorder{broker: broker, queue: queue}
}

func (b *BrokerRecorder) Record(_ context.Context, rec types.AuditRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if err := b.broker.Publish(b.queue, body); err != nil {
		return fmt.Errorf("publish audit record: %w", err)
	}
	return nil
}
