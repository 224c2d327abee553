package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/worker"
)

type scriptedConn struct {
	frames  []string
	written []any
}

func (c *scriptedConn) ReadMessage() ([]byte, error) {
	if len(c.frames) == 0 {
		return nil, io.EOF
	}
	next := c.frames[0]
	c.frames = c.frames[1:]
	return []byte(next), nil
}

func (c *scriptedConn) WriteJSON(v any) error {
	c.written = append(c.written, v)
	return nil
}

type queue struct {
	updates []worker.Update
}

func (q *queue) AddJob(u worker.Update) bool {
	q.updates = append(q.updates, u)
	return true
}

func TestParseMessage(t *testing.T) {
	update, ok, err := ParseMessage([]byte(`{"event":"broadcast","topic":"realtime:metrics","payload":{"event":"metrics","payload":{"tokenMint":" mint-1 ","swapVolume":"1200.75","holders":12,"price":0.004}},"ref":null}`))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mint-1", update.TokenMint)
	assert.True(t, decimal.RequireFromString("1200.75").Equal(*update.Report.SwapVolume))
	assert.Nil(t, update.Report.Liquidity)
	assert.EqualValues(t, 12, *update.Report.Holders)
	assert.True(t, decimal.RequireFromString("0.004").Equal(*update.Report.Price))
}

func TestParseMessageIgnoresOtherFrames(t *testing.T) {
	for _, frame := range []string{
		`{"event":"phx_reply","topic":"realtime:metrics","payload":{"status":"ok"},"ref":"1"}`,
		`{"event":"broadcast","payload":{"event":"presence","payload":{}}}`,
		`{"event":"broadcast","payload":{"event":"metrics","payload":{"tokenMint":"mint-1"}}}`,
	} {
		_, ok, err := ParseMessage([]byte(frame))
		assert.NoError(t, err, frame)
		assert.False(t, ok, frame)
	}

	_, _, err := ParseMessage([]byte(`not json`))
	assert.Error(t, err)
	_, _, err = ParseMessage([]byte(`{"event":"broadcast","payload":{"event":"metrics","payload":{"holders":1}}}`))
	assert.Error(t, err)
}

func TestSubscribeAndListen(t *testing.T) {
	conn := &scriptedConn{frames: []string{
		`{"event":"phx_reply","payload":{"status":"ok"}}`,
		`garbage`,
		`{"event":"broadcast","payload":{"event":"metrics","payload":{"tokenMint":"mint-1","liquidity":"5"}}}`,
		`{"event":"broadcast","payload":{"event":"metrics","payload":{"tokenMint":"mint-2","holders":0}}}`,
	}}
	q := &queue{}
	logger, _ := logtest.NewNullLogger()
	s := New(conn, "metrics", q, logger)
	assert.Equal(t, "realtime:metrics", s.Topic())

	require.NoError(t, s.Subscribe())
	require.Len(t, conn.written, 1)
	raw, err := json.Marshal(conn.written[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"phx_join"`)
	assert.Contains(t, string(raw), `"topic":"realtime:metrics"`)

	err = s.Listen(context.Background())
	assert.True(t, errors.Is(err, io.EOF))
	require.Len(t, q.updates, 2)
	assert.Equal(t, "mint-1", q.updates[0].TokenMint)
	assert.Equal(t, "mint-2", q.updates[1].TokenMint)
	assert.EqualValues(t, 0, *q.updates[1].Report.Holders)
}

func TestListenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger, _ := logtest.NewNullLogger()
	s := New(&scriptedConn{}, "realtime:metrics", &queue{}, logger)
	assert.ErrorIs(t, s.Listen(ctx), context.Canceled)
}
