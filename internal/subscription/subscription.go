// Package subscription joins the realtime metrics topic and feeds its
// broadcasts to the worker
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"launchpad/internal/catalog"
	"launchpad/internal/telemetry"
	"launchpad/internal/worker"
)

// MetricsEvent is the broadcast event name carrying market data
const MetricsEvent = "metrics"

// Conn is the websocket surface the subscription reads and writes
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
}

// Queue receives parsed updates
type Queue interface {
	AddJob(u worker.Update) bool
}

type Subscription struct {
	conn   Conn
	topic  string
	queue  Queue
	logger logrus.FieldLogger
}

// JoinPayload is the phx_join message for a broadcast-only channel
type JoinPayload struct {
	Event   string `json:"event"`
	Topic   string `json:"topic"`
	Payload struct {
		Config struct {
			Broadcast struct {
				Self bool `json:"self"`
			} `json:"broadcast"`
		} `json:"config"`
	} `json:"payload"`
	Ref string `json:"ref"`
}

// Envelope is a Phoenix frame as received
type Envelope struct {
	Event   string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
}

type broadcast struct {
	Event   string       `json:"event"`
	Payload metricsFrame `json:"payload"`
}

type metricsFrame struct {
	TokenMint  string           `json:"tokenMint"`
	SwapVolume *decimal.Decimal `json:"swapVolume"`
	Liquidity  *decimal.Decimal `json:"liquidity"`
	Holders    *int64           `json:"holders"`
	Price      *decimal.Decimal `json:"price"`
}

func New(conn Conn, topic string, queue Queue, logger logrus.FieldLogger) *Subscription {
	if !strings.HasPrefix(topic, "realtime:") {
		topic = "realtime:" + topic
	}
	return &Subscription{
		conn:   conn,
		topic:  topic,
		queue:  queue,
		logger: logger,
	}
}

// Topic returns the joined channel name
func (s *Subscription) Topic() string {
	return s.topic
}

// Subscribe sends the join request for the metrics topic
func (s *Subscription) Subscribe() error {
	payload := JoinPayload{
		Event: "phx_join",
		Topic: s.topic,
		Ref:   uuid.NewString(),
	}
	if err := s.conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	s.logger.WithField("topic", s.topic).Info("Subscribed to metrics feed")
	return nil
}

// Listen reads frames until the connection fails or ctx is cancelled.
// Cancellation is only observed between frames; close the connection to
// interrupt a blocked read.
func (s *Subscription) Listen(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		message, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read feed message: %w", err)
		}
		s.handle(message)
	}
}

func (s *Subscription) handle(message []byte) {
	update, ok, err := ParseMessage(message)
	switch {
	case err != nil:
		telemetry.FeedMessages.WithLabelValues("invalid").Inc()
		s.logger.WithError(err).Warn("Failed to handle payload")
	case !ok:
		telemetry.FeedMessages.WithLabelValues("ignored").Inc()
	case s.queue.AddJob(update):
		telemetry.FeedMessages.WithLabelValues("queued").Inc()
	default:
		telemetry.FeedMessages.WithLabelValues("coalesced").Inc()
	}
}

// ParseMessage extracts a metrics update from a realtime frame. ok is false
// for frames that are not metrics broadcasts, such as join replies.
func ParseMessage(message []byte) (update worker.Update, ok bool, err error) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return update, false, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if env.Event != "broadcast" {
		return update, false, nil
	}

	var b broadcast
	if err := json.Unmarshal(env.Payload, &b); err != nil {
		return update, false, fmt.Errorf("failed to unmarshal broadcast: %w", err)
	}
	if b.Event != MetricsEvent {
		return update, false, nil
	}
	frame := b.Payload
	if strings.TrimSpace(frame.TokenMint) == "" {
		return update, false, fmt.Errorf("metrics broadcast without tokenMint")
	}

	report := catalog.MetricsReport{
		SwapVolume: frame.SwapVolume,
		Liquidity:  frame.Liquidity,
		Holders:    frame.Holders,
		Price:      frame.Price,
	}
	if report.Empty() {
		return update, false, nil
	}
	return worker.Update{TokenMint: strings.TrimSpace(frame.TokenMint), Report: report}, true, nil
}
