package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SignalKind represents the type of a signaling envelope.
type SignalKind string

const (
	// Client -> server kinds.
	SignalKindJoin      SignalKind = "join"
	SignalKindOffer     SignalKind = "offer"
	SignalKindAnswer    SignalKind = "answer"
	SignalKindCandidate SignalKind = "candidate"

	// Server -> client kinds.
	SignalKindPeerPresent SignalKind = "peer-present"
	SignalKindMomentReady SignalKind = "moment-ready"
	SignalKindRoomClosed  SignalKind = "room-closed"
)

// SignalMessage is the envelope for every frame exchanged over the
// signaling connection. Payload is opaque to the server except that
// offer/answer payloads are cached per room for replay.
//
// Epoch is set by the server on every outbound message. Clients may
// echo it back; a frame carrying an epoch older than the room's current
// epoch is dropped by the relay.
type SignalMessage struct {
	Type    SignalKind      `json:"type"`
	Room    string          `json:"room"`
	Sender  string          `json:"sender,omitempty"`
	Epoch   *uint64         `json:"epoch,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PresencePayload is the payload of a peer-present notification.
type PresencePayload struct {
	Count     int    `json:"count"`
	OffererID string `json:"offererId"`
}

var (
	ErrUnparseable  = errors.New("frame is not valid JSON")
	ErrMissingField = errors.New("missing required field")
	ErrUnknownKind  = errors.New("unknown message type")
)

// DecodeSignal parses an inbound frame and enforces the per-kind
// required fields. Anything that fails here is a protocol violation and
// is dropped by the caller without surfacing an error to the peer.
func DecodeSignal(data []byte) (*SignalMessage, error) {
	var msg SignalMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrUnparseable
	}
	if msg.Type == "" || msg.Room == "" {
		return nil, ErrMissingField
	}
	switch msg.Type {
	case SignalKindJoin:
		if msg.Sender == "" {
			return nil, fmt.Errorf("%w: join requires sender", ErrMissingField)
		}
	case SignalKindOffer, SignalKindAnswer, SignalKindCandidate:
		if len(msg.Payload) == 0 {
			return nil, fmt.Errorf("%w: %s requires payload", ErrMissingField, msg.Type)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Type)
	}
	return &msg, nil
}

// NewPeerPresent builds the membership notification sent to every
// member of a room after an admission.
func NewPeerPresent(room string, epoch uint64, count int, offererID string) *SignalMessage {
	payload, _ := json.Marshal(PresencePayload{Count: count, OffererID: offererID})
	return &SignalMessage{
		Type:    SignalKindPeerPresent,
		Room:    room,
		Epoch:   &epoch,
		Payload: payload,
	}
}

// NewMomentReady builds the one-time quorum notification emitted when a
// room reaches two members.
func NewMomentReady(room string, epoch uint64) *SignalMessage {
	return &SignalMessage{
		Type:    SignalKindMomentReady,
		Room:    room,
		Epoch:   &epoch,
		Payload: json.RawMessage(`{}`),
	}
}

// NewRoomClosed builds the eviction notice delivered to members of a
// room that was torn down, either by a departure or by an overflow
// supersession.
func NewRoomClosed(room string, epoch uint64) *SignalMessage {
	return &SignalMessage{
		Type:    SignalKindRoomClosed,
		Room:    room,
		Epoch:   &epoch,
		Payload: json.RawMessage(`{}`),
	}
}

// NewRelayed builds the copy of a relay-kind message delivered to the
// other members of the sender's room. The payload passes through
// untouched.
func NewRelayed(kind SignalKind, room string, epoch uint64, payload json.RawMessage) *SignalMessage {
	return &SignalMessage{
		Type:    kind,
		Room:    room,
		Epoch:   &epoch,
		Payload: payload,
	}
}
