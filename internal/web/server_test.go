package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/estop-controller/internal/estop"
	"github.com/sweeney/estop-controller/internal/polarity"
	"github.com/sweeney/estop-controller/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      100,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
		ConfigPath:  "/home/pi/.estop_config.json",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(estop.Status{
		State:           polarity.StateEngaged,
		Level:           false,
		Mode:            polarity.ModeNC,
		ManualOverride:  true,
		OutputAvailable: true,
		Pin:             4,
		Platform:        "Raspberry Pi 5",
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Estop.State != "ENGAGED" {
		t.Errorf("state: got %q, want ENGAGED", sj.Estop.State)
	}
	if sj.Estop.Mode != "nc" {
		t.Errorf("mode: got %q, want nc", sj.Estop.Mode)
	}
	if !sj.Estop.ManualOverride {
		t.Error("expected manual_override=true")
	}
	if sj.Estop.Pin != 4 {
		t.Errorf("gpio_pin: got %d, want 4", sj.Estop.Pin)
	}
	if !sj.Estop.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Estop.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Estop.MQTT.Broker)
	}
	if sj.Estop.Config.PollMs != 100 {
		t.Errorf("Config.PollMs: got %d, want 100", sj.Estop.Config.PollMs)
	}
}

func TestJSONUnknownStateBeforeFirstUpdate(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Estop.State != "UNKNOWN" {
		t.Errorf("state before first update: got %q, want UNKNOWN", sj.Estop.State)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(estop.Status{
		State:           polarity.StateDisengaged,
		Mode:            polarity.ModeNC,
		OutputAvailable: false,
		Platform:        "Non-Pi system",
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "DISENGAGED") {
		t.Error("page should render the logical state")
	}
	if !strings.Contains(string(body), "simulation") {
		t.Error("page should flag simulation mode")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(estop.Status{State: polarity.StateDisengaged, Mode: polarity.ModeNC})

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Estop.State != "DISENGAGED" {
		t.Errorf("state: got %q, want DISENGAGED", sj1.Estop.State)
	}

	tr.Update(estop.Status{State: polarity.StateEngaged, Mode: polarity.ModeNC, ManualOverride: true})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if sj2.Estop.State != "ENGAGED" {
		t.Errorf("state: got %q, want ENGAGED", sj2.Estop.State)
	}
	if !sj2.Estop.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
