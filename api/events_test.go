package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/gorilla/websocket"
)

func dialEvents(t *testing.T, s *testServer, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) EventMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg EventMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return msg
}

func TestEventStreamReplaysThenFollows(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.factory.GenerateReferralCode(alice); err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}
	if _, err := s.factory.GenerateReferralCode(bob); err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}

	conn := dialEvents(t, s, "?from=1")
	msg := readEvent(t, conn)
	if msg.Index != 1 || msg.Event != model.EventReferralCodeGenerated || msg.Args["user"] != bob.Hex() {
		t.Fatalf("replayed = %+v", msg)
	}

	if _, err := s.factory.UpdateReferralCode(alice); err != nil {
		t.Fatalf("UpdateReferralCode: %v", err)
	}
	msg = readEvent(t, conn)
	if msg.Index != 2 || msg.Event != model.EventReferralCodeUpdated {
		t.Fatalf("live = %+v", msg)
	}
}

func TestEventStreamHonoursFromPastEnd(t *testing.T) {
	s := newTestServer(t)
	conn := dialEvents(t, s, "?from=1")

	if _, err := s.factory.GenerateReferralCode(alice); err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}
	if _, err := s.factory.GenerateReferralCode(bob); err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}

	msg := readEvent(t, conn)
	if msg.Index != 1 || msg.Args["user"] != bob.Hex() {
		t.Fatalf("first event = %+v, want index 1", msg)
	}
}
