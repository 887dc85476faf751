package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeStats struct {
	Loaded int    `json:"loaded_chunks"`
	Digest string `json:"world_digest"`
}

func TestHandlerStreamsStats(t *testing.T) {
	stats := fakeStats{Loaded: 3, Digest: "abc"}
	srv := NewServer(func() any { return stats }, 10*time.Millisecond, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 2; i++ {
		var got fakeStats
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != stats {
			t.Fatalf("frame %d = %+v, want %+v", i, got, stats)
		}
	}
}

func TestHandlerRejectsPlainHTTP(t *testing.T) {
	srv := NewServer(func() any { return nil }, time.Second, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		t.Fatalf("non-upgrade request must not succeed")
	}
}
