package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-streaming-store/internal/kafka"
)

// Publisher announces that a row in table changed.
type Publisher interface {
	Publish(ctx context.Context, table string, op Op, id string)
}

type KafkaPublisher struct {
	Producer *kafkax.Producer
	Service  string
}

func NewEnvelope(service, table string, op Op, id string) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventTableChanged,
		EventVersion:  EventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      service,
		CorrelationID: id,
		Payload:       kafkax.MustMarshal(ChangePayload{Table: table, Op: op, ID: id}),
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, table string, op Op, id string) {
	ev := NewEnvelope(p.Service, table, op, id)
	p.Producer.Publish(PartitionKey(table), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventTableChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// LocalPublisher delivers changes straight to a listener in the same process.
type LocalPublisher struct {
	Listener *Listener
}

func (p *LocalPublisher) Publish(_ context.Context, table string, _ Op, _ string) {
	p.Listener.Dispatch(table)
}

// Discard drops every change.
type Discard struct{}

func (Discard) Publish(context.Context, string, Op, string) {}

// Fanout publishes every change to each publisher in turn.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, table string, op Op, id string) {
	for _, p := range f {
		p.Publish(ctx, table, op, id)
	}
}
