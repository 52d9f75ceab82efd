package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/airsense/sds011/internal/sensor"
)

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestHealthz(t *testing.T) {
	srv := New(&Config{ListenAddr: "unused"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.Clients != 0 {
		t.Errorf("clients = %d, want 0", body.Clients)
	}
}

func TestBroadcastDeliversMeasurements(t *testing.T) {
	srv := New(&Config{ListenAddr: "unused"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Wait for the server to register the client
	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	measurements := make(chan sensor.Measurement, 1)
	go srv.Broadcast(ctx, measurements)

	sent := sensor.Measurement{
		Timestamp: time.Now(),
		PM25:      12.4,
		PM10:      21.7,
		DeviceID:  0xA160,
	}
	measurements <- sent

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var got sensor.Measurement
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decoding broadcast %q: %v", payload, err)
	}
	if got.PM25 != sent.PM25 || got.PM10 != sent.PM10 {
		t.Errorf("received %.1f/%.1f, want %.1f/%.1f", got.PM25, got.PM10, sent.PM25, sent.PM10)
	}
	if got.DeviceID != 0xA160 {
		t.Errorf("device_id = 0x%04X, want 0xA160", got.DeviceID)
	}
}

func TestBroadcastStopsWhenChannelCloses(t *testing.T) {
	srv := New(&Config{ListenAddr: "unused"})

	measurements := make(chan sensor.Measurement)
	close(measurements)

	done := make(chan struct{})
	go func() {
		srv.Broadcast(context.Background(), measurements)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast did not return after channel close")
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	srv := New(&Config{ListenAddr: "unused"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want 0 after disconnect", srv.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
