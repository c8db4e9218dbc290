package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws/status", defaultInterval},
		{"interval_string_valid", "/ws/status?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws/status?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws/status?interval=20s", defaultInterval},
		{"interval_ms_too_large", "/ws/status?interval_ms=20000", defaultInterval},
		{"interval_invalid_string", "/ws/status?interval=bogus", defaultInterval},
		{"interval_ms_invalid", "/ws/status?interval_ms=NaN", defaultInterval},
		{"both_present_interval_wins", "/ws/status?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws/status?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialStatus(t *testing.T, st *mockStatus, query string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Status: st}, nil)
	r.GET("/ws/status", h.wsStatus)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/status"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) models.StatusSnapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "status" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var snap models.StatusSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return snap
}

func TestWebSocket_StatusStream_InitialThenPublished(t *testing.T) {
	st := &mockStatus{snap: models.StatusSnapshot{TagDetected: false, Timestamp: 1}}
	st.Subscribe()
	conn := dialStatus(t, st, "interval=10s")

	if got := readSnapshot(t, conn); got.Timestamp != 1 {
		t.Fatalf("unexpected initial snapshot: %+v", got)
	}

	st.updates <- models.StatusSnapshot{TagDetected: true, Timestamp: 2}
	got := readSnapshot(t, conn)
	if !got.TagDetected || got.Timestamp != 2 {
		t.Fatalf("unexpected pushed snapshot: %+v", got)
	}
}

func TestWebSocket_StatusStream_RepeatsLatestEveryInterval(t *testing.T) {
	st := &mockStatus{snap: models.StatusSnapshot{Error: true, Message: "Connection to NFC reader timed out", Timestamp: 5}}
	conn := dialStatus(t, st, "interval_ms=20")

	first := readSnapshot(t, conn)
	second := readSnapshot(t, conn)
	if !first.Error || second != first {
		t.Fatalf("expected the same fallback snapshot twice, got %+v then %+v", first, second)
	}
}

func TestWebSocket_ClosedFeedClosesConnection(t *testing.T) {
	st := &mockStatus{}
	ch := st.Subscribe()
	conn := dialStatus(t, st, "interval=10s")
	_ = readSnapshot(t, conn)

	close(ch)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
