package nfc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hose_installation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	snaps []models.StatusSnapshot
}

func (c *collector) add(s models.StatusSnapshot) {
	c.mu.Lock()
	c.snaps = append(c.snaps, s)
	c.mu.Unlock()
}

func (c *collector) all() []models.StatusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.StatusSnapshot(nil), c.snaps...)
}

func TestTask_PollsImmediatelyAndOnEveryTick(t *testing.T) {
	var ts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := ts.Add(1)
		_, _ = w.Write([]byte(`{"tag_detected": true, "timestamp": ` + strconv.FormatInt(n, 10) + `}`))
	}))
	defer srv.Close()

	var c collector
	task := fastPoller(srv.URL).Start(context.Background(), 20*time.Millisecond, c.add)

	require.Eventually(t, func() bool { return len(c.all()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	task.Cancel()
	<-task.Done()

	var got []models.StatusSnapshot
	for _, s := range c.all() {
		if !s.Error {
			got = append(got, s)
		}
	}
	require.NotEmpty(t, got)
	assert.Equal(t, float64(1), got[0].Timestamp)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Timestamp, got[i-1].Timestamp, "snapshots out of issue order")
	}

	n := len(c.all())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, len(c.all()), "no deliveries after cancel")
}

func TestTask_CancelDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"tag_detected": true, "timestamp": 1}`))
	}))
	defer srv.Close()
	defer close(release)

	p := NewPoller(Options{Endpoint: srv.URL, Timeout: time.Second, Retries: 0, RetryDelay: time.Millisecond})

	var c collector
	task := p.Start(context.Background(), time.Hour, c.add)
	<-started
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not stop")
	}
	assert.Empty(t, c.all())
}

func TestTask_HungReaderReportsFallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{"tag_detected": true, "timestamp": 7}`))
	}))
	defer srv.Close()

	p := NewPoller(Options{Endpoint: srv.URL, Timeout: 100 * time.Millisecond, Retries: 0, RetryDelay: time.Millisecond})

	var c collector
	task := p.Start(context.Background(), 30*time.Millisecond, c.add)
	defer func() { task.Cancel(); <-task.Done() }()

	require.Eventually(t, func() bool { return len(c.all()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	got := c.all()
	assert.True(t, got[0].Error)
	assert.Equal(t, FallbackMessage, got[0].Message)
	assert.True(t, got[1].TagDetected)
}

func TestTask_SlowReaderInsideTimeoutIsReported(t *testing.T) {
	var active, maxActive atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		select {
		case <-time.After(60 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"tag_detected": true, "timestamp": 1}`))
	}))
	defer srv.Close()

	// the reader answers slower than the cadence but well inside the timeout
	p := NewPoller(Options{Endpoint: srv.URL, Timeout: time.Second, Retries: DefaultRetries, RetryDelay: 10 * time.Millisecond})

	var c collector
	task := p.Start(context.Background(), 20*time.Millisecond, c.add)
	require.Eventually(t, func() bool { return len(c.all()) >= 3 }, 3*time.Second, 5*time.Millisecond)
	task.Cancel()
	<-task.Done()

	for _, s := range c.all() {
		assert.False(t, s.Error, "slow reader reported as %q", s.Message)
		assert.True(t, s.TagDetected)
	}
	assert.Equal(t, int32(1), maxActive.Load(), "cycles overlapped")
}

func TestTask_RetriesLongerThanCadenceRecover(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// two failures before every success
		if calls.Add(1)%3 != 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"tag_detected": true, "timestamp": 1}`))
	}))
	defer srv.Close()

	p := NewPoller(Options{Endpoint: srv.URL, Timeout: time.Second, Retries: DefaultRetries, RetryDelay: 15 * time.Millisecond})

	var c collector
	task := p.Start(context.Background(), 10*time.Millisecond, c.add)
	require.Eventually(t, func() bool { return len(c.all()) >= 3 }, 3*time.Second, 5*time.Millisecond)
	task.Cancel()
	<-task.Done()

	for _, s := range c.all() {
		assert.False(t, s.Error, "recoverable cycle reported as %q", s.Message)
	}
}

func TestCycleBudget(t *testing.T) {
	p := NewPoller(Options{Endpoint: "http://reader", Timeout: 10 * time.Second, Retries: 3, RetryDelay: time.Second})
	assert.Equal(t, 43*time.Second, p.cycleBudget())
}
