// Package heartbeat keeps a Phoenix channel connection alive
package heartbeat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Writer is the part of the connection the heartbeat needs
type Writer interface {
	WriteJSON(v any) error
}

type Service struct {
	conn     Writer
	interval time.Duration
	logger   logrus.FieldLogger
	stopChan chan struct{}
	stopOnce sync.Once
}

type Payload struct {
	Event   string         `json:"event"`
	Topic   string         `json:"topic"`
	Payload map[string]any `json:"payload"`
	Ref     string         `json:"ref"`
}

func New(conn Writer, interval time.Duration, logger logrus.FieldLogger) *Service {
	return &Service{
		conn:     conn,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Beat sends a single heartbeat on the phoenix topic
func (h *Service) Beat() error {
	return h.conn.WriteJSON(Payload{
		Event:   "heartbeat",
		Topic:   "phoenix",
		Payload: map[string]any{},
		Ref:     uuid.NewString(),
	})
}

// Start begins sending periodic heartbeats until Stop is called
func (h *Service) Start() {
	ticker := time.NewTicker(h.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := h.Beat(); err != nil {
					h.logger.WithError(err).Warn("Failed to send heartbeat")
				}
			case <-h.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the heartbeat loop. Safe to call more than once.
func (h *Service) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}
