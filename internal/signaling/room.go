package signaling

import "encoding/json"

// RoomState tracks where a room is in its lifecycle.
type RoomState string

const (
	// RoomOpen: one member, waiting for a peer.
	RoomOpen RoomState = "open"
	// RoomReady: two members, handshake may proceed.
	RoomReady RoomState = "ready"
	// RoomShut: torn down; the record is no longer addressable.
	RoomShut RoomState = "closed"
)

// Member is one (connection, participant id) pair admitted to a room.
type Member struct {
	Conn          Conn
	ParticipantID string
}

// Room is the live rendezvous state for one room id and one epoch.
//
// Members is kept in admission order and never exceeds two entries.
// OffererID is the participant id of the first member admitted in the
// current epoch; it is fixed at admission and never recomputed, even if
// that member later leaves.
//
// LastOffer/LastAnswer cache the most recently relayed handshake
// payloads for this epoch so a newly admitted peer can be brought up to
// date without waiting for the original sender to resend.
type Room struct {
	ID        string
	Epoch     uint64
	State     RoomState
	OffererID string
	Members   []Member

	LastOffer  json.RawMessage
	LastAnswer json.RawMessage
}

// removeMember drops the given connection from the member list,
// preserving admission order of the rest.
func (r *Room) removeMember(c Conn) bool {
	for i, m := range r.Members {
		if m.Conn == c {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}
