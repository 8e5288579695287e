package events

import (
	"context"

	"github.com/mealforge/recipe-service/pkg/messaging"
	"github.com/mealforge/recipe-service/pkg/utilx/jsonx"
)

// PubsubSink delivers events to a Pub/Sub topic through the buffered
// publisher, so bursts of recipe changes are batched on the wire.
type PubsubSink struct {
	publisher messaging.BufferedPublisherWithRetry
	topic     string
}

// NewPubsubSink - PubsubSink constructor.
func NewPubsubSink(publisher messaging.BufferedPublisherWithRetry, topic string) *PubsubSink {
	return &PubsubSink{publisher: publisher, topic: topic}
}

// Deliver - enqueue the event for publication.
func (s *PubsubSink) Deliver(ctx context.Context, event Event) error {
	payload, err := jsonx.MarshalJSON(event)
	if err != nil {
		return err
	}

	return s.publisher.Publish(ctx, s.topic, &messaging.MsgPayload{
		MessageId: event.EventID,
		Data:      payload,
		Attributes: map[string]string{
			"event_type": event.Type,
		},
	})
}

// Close - flush and stop the underlying publisher.
func (s *PubsubSink) Close(ctx context.Context) error {
	return s.publisher.Close(ctx)
}
