package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mossy-p/rendezvous/internal/models"
	"github.com/mossy-p/rendezvous/internal/signaling"
)

func startSignalingServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := signaling.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws/signal", ServeSignaling(hub, zerolog.Nop()))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dialSignaling(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendSignal(t *testing.T, conn *websocket.Conn, msg models.SignalMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readSignal(t *testing.T, conn *websocket.Conn) models.SignalMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.SignalMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func expectNoSignal(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
	var msg models.SignalMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected silence, got %+v", msg)
	}
}

func TestSignalingEndToEnd(t *testing.T) {
	srv := startSignalingServer(t)

	alice := dialSignaling(t, srv)
	sendSignal(t, alice, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "alice"})

	msg := readSignal(t, alice)
	if msg.Type != models.SignalKindPeerPresent {
		t.Fatalf("expected peer-present, got %q", msg.Type)
	}
	var presence models.PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		t.Fatalf("bad presence payload: %v", err)
	}
	if presence.Count != 1 || presence.OffererID != "alice" {
		t.Fatalf("expected count 1 offerer alice, got %+v", presence)
	}

	bob := dialSignaling(t, srv)
	sendSignal(t, bob, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "bob"})

	// Both sides: peer-present {count:2, offererId:"alice"} then moment-ready.
	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		msg = readSignal(t, conn)
		if msg.Type != models.SignalKindPeerPresent {
			t.Fatalf("%s: expected peer-present, got %q", name, msg.Type)
		}
		if err := json.Unmarshal(msg.Payload, &presence); err != nil {
			t.Fatalf("%s: bad presence payload: %v", name, err)
		}
		if presence.Count != 2 || presence.OffererID != "alice" {
			t.Fatalf("%s: expected count 2 offerer alice, got %+v", name, presence)
		}
		if msg = readSignal(t, conn); msg.Type != models.SignalKindMomentReady {
			t.Fatalf("%s: expected moment-ready, got %q", name, msg.Type)
		}
	}

	sendSignal(t, alice, models.SignalMessage{
		Type:    models.SignalKindOffer,
		Room:    "x",
		Payload: json.RawMessage(`{"sdp":"O1"}`),
	})

	msg = readSignal(t, bob)
	if msg.Type != models.SignalKindOffer || string(msg.Payload) != `{"sdp":"O1"}` {
		t.Fatalf("expected offer {\"sdp\":\"O1\"}, got %q %s", msg.Type, msg.Payload)
	}

	// Bob drops abruptly: the room hard-resets and alice is told. Her
	// next frame being room-closed also proves the offer never echoed
	// back to its sender.
	bob.Close()
	if msg = readSignal(t, alice); msg.Type != models.SignalKindRoomClosed {
		t.Fatalf("expected room-closed after peer disconnect, got %q", msg.Type)
	}

	// Alice's next candidate goes nowhere and produces no error frame.
	sendSignal(t, alice, models.SignalMessage{
		Type:    models.SignalKindCandidate,
		Room:    "x",
		Payload: json.RawMessage(`{"cand":"C1"}`),
	})
	expectNoSignal(t, alice)
}

func TestSignalingDropsInvalidFrames(t *testing.T) {
	srv := startSignalingServer(t)

	conn := dialSignaling(t, srv)

	// Garbage, missing fields, relay before join: all dropped without
	// ending the connection or producing an error frame.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"offer"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	sendSignal(t, conn, models.SignalMessage{
		Type:    models.SignalKindCandidate,
		Room:    "x",
		Payload: json.RawMessage(`{"cand":"C1"}`),
	})

	// The connection is still usable afterwards, and the first frame it
	// ever receives is the join response, not an error for the garbage.
	sendSignal(t, conn, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "alice"})
	if msg := readSignal(t, conn); msg.Type != models.SignalKindPeerPresent {
		t.Fatalf("expected connection to survive bad frames, got %q", msg.Type)
	}
}

func TestSignalingOverflowEvictsAndDisconnects(t *testing.T) {
	srv := startSignalingServer(t)

	alice := dialSignaling(t, srv)
	bob := dialSignaling(t, srv)
	carol := dialSignaling(t, srv)

	sendSignal(t, alice, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "alice"})
	readSignal(t, alice) // count 1
	sendSignal(t, bob, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "bob"})
	readSignal(t, alice) // count 2
	readSignal(t, alice) // moment-ready
	readSignal(t, bob)   // count 2
	readSignal(t, bob)   // moment-ready

	sendSignal(t, carol, models.SignalMessage{Type: models.SignalKindJoin, Room: "x", Sender: "carol"})

	// Displaced members are told the room is gone, then disconnected.
	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		if msg := readSignal(t, conn); msg.Type != models.SignalKindRoomClosed {
			t.Fatalf("%s: expected room-closed, got %q", name, msg.Type)
		}
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Fatalf("%s: expected connection to be closed by the server", name)
		}
	}

	// Carol is sole member of the fresh incarnation.
	msg := readSignal(t, carol)
	if msg.Type != models.SignalKindPeerPresent {
		t.Fatalf("expected peer-present for carol, got %q", msg.Type)
	}
	var presence models.PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		t.Fatalf("bad presence payload: %v", err)
	}
	if presence.Count != 1 || presence.OffererID != "carol" {
		t.Fatalf("expected count 1 offerer carol, got %+v", presence)
	}
	if msg.Epoch == nil || *msg.Epoch != 1 {
		t.Fatalf("expected epoch 1 after supersession, got %v", msg.Epoch)
	}
}
