package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-streaming-store/internal/kafka"
)

// Invalidator is anything holding state derived from a table.
type Invalidator interface {
	Invalidate()
}

// Deduper remembers processed event ids. FirstSeen returns false for repeats.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

// Listener routes change events to the invalidators registered for each table.
type Listener struct {
	mu     sync.RWMutex
	routes map[string][]Invalidator
	dedup  Deduper
	log    *slog.Logger
}

func NewListener(dedup Deduper, logger *slog.Logger) *Listener {
	return &Listener{routes: map[string][]Invalidator{}, dedup: dedup, log: logger}
}

func (l *Listener) Register(inv Invalidator, tables ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range tables {
		l.routes[t] = append(l.routes[t], inv)
	}
}

// Dispatch invalidates everything watching table.
func (l *Listener) Dispatch(table string) {
	l.mu.RLock()
	invs := l.routes[table]
	l.mu.RUnlock()
	for _, inv := range invs {
		inv.Invalidate()
	}
}

// Handle is the kafka consumer handler.
func (l *Listener) Handle(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		l.log.Warn("dropping undecodable change event", slog.Any("error", err))
		return nil
	}
	if env.EventType != EventTableChanged {
		return nil
	}
	if l.dedup != nil {
		first, err := l.dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			// a lost dedup only costs an extra reload
			l.log.Warn("dedup check failed", slog.String("event_id", env.EventID), slog.Any("error", err))
		} else if !first {
			return nil
		}
	}
	p, err := kafkax.UnwrapPayload[ChangePayload](env.Payload)
	if err != nil {
		l.log.Warn("dropping change event", slog.String("event_id", env.EventID), slog.Any("error", err))
		return nil
	}
	l.log.Debug("table changed", slog.String("table", p.Table), slog.String("op", string(p.Op)), slog.String("id", p.ID))
	l.Dispatch(p.Table)
	return nil
}
