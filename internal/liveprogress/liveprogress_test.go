package liveprogress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEventMarshalsExpectedFields(t *testing.T) {
	e := Event{Round: 3, Phase: "phase2", RIBChanged: true}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got := string(raw)
	for _, want := range []string{`"round":3`, `"phase":"phase2"`, `"rib_changed":true`} {
		if !strings.Contains(got, want) {
			t.Errorf("Marshal() = %s, want substring %q", got, want)
		}
	}
}

func TestNotifyWithNoClientsDoesNotPanic(t *testing.T) {
	s := NewServer(":0")
	s.Notify(Event{Round: 1, Phase: "phase1"})
}

func TestServerBroadcastsToConnectedClient(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// handleWS registers the client asynchronously relative to the
	// handshake completing; give it a moment before broadcasting.
	time.Sleep(20 * time.Millisecond)

	want := Event{Round: 7, Phase: "phase3", RIBChanged: true}
	s.Notify(want)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var got Event
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != want {
		t.Errorf("received Event = %+v, want %+v", got, want)
	}
}
