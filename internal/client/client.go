// Package client provides the websocket connection to the realtime metrics feed
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a websocket connection to a Phoenix (Supabase Realtime) endpoint.
// Writes are serialized so the heartbeat and the subscription can share it.
type Client struct {
	apiKey   string
	endpoint string
	logger   logrus.FieldLogger

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// New creates a new client for the given endpoint and API key
func New(endpoint, apiKey string, logger logrus.FieldLogger) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Connect dials the realtime server, authenticating with the API key
// both as a bearer header and as the apikey query parameter
func (c *Client) Connect(ctx context.Context) error {
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse feed url: %w", err)
	}
	header := http.Header{}
	if c.apiKey != "" {
		header.Add("Authorization", "Bearer "+c.apiKey)
		q := target.Query()
		q.Set("apikey", c.apiKey)
		target.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{
		EnableCompression: true,
		HandshakeTimeout:  websocket.DefaultDialer.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to realtime server (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect to realtime server: %w", err)
	}
	c.conn = conn

	c.logger.WithField("endpoint", target.Host).Info("Connected to realtime feed")
	return nil
}

// WriteJSON sends v as a single text frame
func (c *Client) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(v)
}

// ReadMessage blocks for the next frame. Only one goroutine may read.
func (c *Client) ReadMessage() ([]byte, error) {
	if c.conn == nil {
		return nil, websocket.ErrCloseSent
	}
	_, message, err := c.conn.ReadMessage()
	return message, err
}

// Close terminates the connection
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
