// v1
// internal/publish/kafka.go
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// sender abstracts the Kafka writer for tests.
type sender interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher emits completed analysis summaries to a results topic so
// rendering and persistence collaborators can pick them up. A nil Publisher
// (no brokers configured) is a no-op.
type Publisher struct {
	log   *slog.Logger
	w     sender
	topic string
}

// New returns nil when no brokers are configured; every method is nil-safe.
func New(log *slog.Logger, brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 5 * time.Millisecond,
	}
	return &Publisher{log: log, w: w, topic: topic}
}

// envelope is the wire shape of one published result.
type envelope struct {
	RunID   string         `json:"run_id"`
	Kind    string         `json:"kind"` // "building" or "portfolio"
	Ts      time.Time      `json:"ts"`
	Summary map[string]any `json:"summary"`
}

// Publish sends one summary keyed by its subject id. Errors are logged and
// returned; callers treat publishing as best-effort.
func (p *Publisher) Publish(ctx context.Context, runID, kind, key string, summary map[string]any) error {
	if p == nil {
		return nil
	}
	val, err := json.Marshal(envelope{RunID: runID, Kind: kind, Ts: time.Now().UTC(), Summary: summary})
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: val}); err != nil {
		p.log.Error("result publish failed", "kind", kind, "key", key, "err", err)
		return err
	}
	p.log.Info("result published", "topic", p.topic, "kind", kind, "key", key)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if w, ok := p.w.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
