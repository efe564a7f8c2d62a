package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbtale/lease-sentinel/internal/logger"
	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/sweep"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PublisherConfig struct {
	Brokers      []string
	Topic        string        // e.g. "sentinel.dispatches"
	WriteTimeout time.Duration // default 3s
}

// Publisher is a thin wrapper around a segmentio/kafka-go Writer publishing
// one dispatch event per attempt. Delivery is best effort; the dispatch_log
// table stays the durable record.
type Publisher struct {
	w       *kafka.Writer
	timeout time.Duration
}

func NewPublisher(c PublisherConfig) *Publisher {
	wt := c.WriteTimeout
	if wt <= 0 {
		wt = 3 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{w: w, timeout: wt}
}

var _ sweep.EventSink = (*Publisher)(nil)

// Record publishes one dispatch event keyed by sentinel id. Write errors are
// logged, never returned; a slow broker must not stall the sweep past the
// write timeout.
func (p *Publisher) Record(ctx context.Context, ev model.DispatchEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("marshal dispatch event", zap.Error(err))
		return
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.w.WriteMessages(cctx, kafka.Message{
		Key:   []byte(ev.SentinelID),
		Value: b,
		Time:  ev.FiredAt,
	})
	if err != nil {
		logger.Log.Warn("publish dispatch event",
			zap.String("sentinel_id", ev.SentinelID),
			zap.Error(err),
		)
	}
}

func (p *Publisher) Close() error { return p.w.Close() }
