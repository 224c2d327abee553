package heartbeat

import (
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	sent []Payload
}

func (r *recorder) WriteJSON(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, v.(Payload))
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestBeat(t *testing.T) {
	rec := &recorder{}
	logger, _ := logtest.NewNullLogger()
	require.NoError(t, New(rec, time.Second, logger).Beat())

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "heartbeat", rec.sent[0].Event)
	assert.Equal(t, "phoenix", rec.sent[0].Topic)
	assert.NotEmpty(t, rec.sent[0].Ref)
}

func TestStartAndStop(t *testing.T) {
	rec := &recorder{}
	logger, _ := logtest.NewNullLogger()
	h := New(rec, 10*time.Millisecond, logger)
	h.Start()

	assert.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)
	h.Stop()
	h.Stop()

	time.Sleep(30 * time.Millisecond)
	stopped := rec.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, rec.count())
}
