package signaling

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mossy-p/rendezvous/internal/models"
)

// Hub owns the room table and the connection registry and runs the
// room lifecycle state machine. All mutation happens on the single
// goroutine inside Run, so two joins racing for the same room id are
// still applied one at a time in receipt order and the supersession
// policy stays deterministic. No locks are needed anywhere in the
// room state.
//
// Lifecycle policy, part of the contract with clients:
//
//   - A room holds at most two members. A third join supersedes the
//     room: the two current members are evicted (room-closed, then
//     disconnected) and the new joiner becomes the sole member of a
//     fresh room at a strictly greater epoch.
//   - Any departure from a room destroys it (hard reset). The
//     remaining member receives room-closed and must rejoin; there is
//     no in-place replacement of a departed peer.
type Hub struct {
	log zerolog.Logger

	table    *Table
	registry *Registry
	relay    *Relay

	frames      chan frame
	disconnects chan Conn
	counts      chan countQuery
	done        chan struct{}
}

type frame struct {
	conn Conn
	msg  *models.SignalMessage
}

type countQuery struct {
	roomID string
	reply  chan int
}

func NewHub(log zerolog.Logger) *Hub {
	table := NewTable()
	registry := NewRegistry()
	return &Hub{
		log:         log,
		table:       table,
		registry:    registry,
		relay:       NewRelay(log, table, registry),
		frames:      make(chan frame),
		disconnects: make(chan Conn),
		counts:      make(chan countQuery),
		done:        make(chan struct{}),
	}
}

// Run drains the hub's event channels until ctx is cancelled, then
// tears down every remaining room. It must be running before any
// client pump starts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.table.Rooms() {
				h.teardown(room, true)
			}
			return
		case f := <-h.frames:
			h.dispatch(f)
		case c := <-h.disconnects:
			h.leave(c)
		case q := <-h.counts:
			q.reply <- h.memberCount(q.roomID)
		}
	}
}

// Dispatch hands a decoded inbound frame to the hub. Frames from one
// connection arrive in the order its pump read them.
func (h *Hub) Dispatch(c Conn, msg *models.SignalMessage) {
	select {
	case h.frames <- frame{conn: c, msg: msg}:
	case <-h.done:
	}
}

// Disconnect reports that a connection's transport has ended. Safe to
// call for connections that never joined a room.
func (h *Hub) Disconnect(c Conn) {
	select {
	case h.disconnects <- c:
	case <-h.done:
	}
}

// MemberCount reports the live member count for a room id. Safe to
// call from any goroutine while Run is active; returns 0 after the
// hub has stopped.
func (h *Hub) MemberCount(roomID string) int {
	q := countQuery{roomID: roomID, reply: make(chan int, 1)}
	select {
	case h.counts <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) dispatch(f frame) {
	switch f.msg.Type {
	case models.SignalKindJoin:
		h.join(f.conn, f.msg.Room, f.msg.Sender)
	case models.SignalKindOffer, models.SignalKindAnswer, models.SignalKindCandidate:
		h.relay.Route(f.conn, f.msg)
	default:
		h.log.Debug().Str("type", string(f.msg.Type)).Msg("ignoring server-only kind from client")
	}
}

// join admits a connection to the room, creating or superseding it as
// needed, then notifies the membership. It never fails: malformed
// input is filtered out before it reaches the hub.
func (h *Hub) join(c Conn, roomID, participantID string) {
	// One room per connection. A join from an already-bound connection
	// first runs the departure path for its old room, which hard-resets
	// it like any other departure would.
	if _, ok := h.registry.Lookup(c); ok {
		h.leave(c)
	}

	room := h.table.Get(roomID)
	switch {
	case room == nil:
		room = h.table.Create(roomID)
		room.OffererID = participantID
	case len(room.Members) < 2:
		// Second admission into the current epoch; the offerer role is
		// already assigned and does not move.
	default:
		// Overflow: the newest joiner wins. Evict both current members
		// and start a fresh epoch with the newcomer as sole member.
		h.log.Info().Str("room", roomID).Uint64("epoch", room.Epoch).
			Msg("room full, superseding")
		h.teardown(room, true)
		room = h.table.Create(roomID)
		room.OffererID = participantID
	}

	room.Members = append(room.Members, Member{Conn: c, ParticipantID: participantID})
	if len(room.Members) == 2 {
		room.State = RoomReady
	} else {
		room.State = RoomOpen
	}
	h.registry.Bind(c, Binding{RoomID: room.ID, ParticipantID: participantID, Epoch: room.Epoch})

	h.log.Info().Str("room", room.ID).Uint64("epoch", room.Epoch).
		Str("participant", participantID).Int("members", len(room.Members)).
		Msg("participant joined")

	presence := models.NewPeerPresent(room.ID, room.Epoch, len(room.Members), room.OffererID)
	for _, m := range room.Members {
		m.Conn.Deliver(presence)
	}

	if room.State == RoomReady {
		// Quorum is reached at most once per epoch, so this fires at
		// most once per epoch as well.
		ready := models.NewMomentReady(room.ID, room.Epoch)
		for _, m := range room.Members {
			m.Conn.Deliver(ready)
		}
		// Bring the newcomer up to date with any handshake state the
		// first member produced while alone in the room.
		if len(room.LastOffer) > 0 {
			c.Deliver(models.NewRelayed(models.SignalKindOffer, room.ID, room.Epoch, room.LastOffer))
		}
		if len(room.LastAnswer) > 0 {
			c.Deliver(models.NewRelayed(models.SignalKindAnswer, room.ID, room.Epoch, room.LastAnswer))
		}
	}
}

// leave removes the connection from its room and hard-resets the room.
// Idempotent: a connection with no binding produces no effect.
func (h *Hub) leave(c Conn) {
	binding, ok := h.registry.Unbind(c)
	if !ok {
		return
	}
	room := h.table.Get(binding.RoomID)
	if room == nil || room.Epoch != binding.Epoch {
		// The room this connection belonged to is already gone or has
		// been superseded; nothing left to reconcile.
		return
	}
	room.removeMember(c)
	h.log.Info().Str("room", room.ID).Uint64("epoch", room.Epoch).
		Str("participant", binding.ParticipantID).Msg("participant left, resetting room")
	h.teardown(room, false)
}

// teardown destroys a room: every remaining member is unbound and told
// the room is gone, optionally disconnected outright (the overflow
// path), and the record leaves the table immediately so the id is no
// longer addressable.
func (h *Hub) teardown(room *Room, disconnect bool) {
	notice := models.NewRoomClosed(room.ID, room.Epoch)
	for _, m := range room.Members {
		h.registry.Unbind(m.Conn)
		m.Conn.Deliver(notice)
		if disconnect {
			m.Conn.Close()
		}
	}
	room.Members = nil
	room.State = RoomShut
	h.table.Remove(room.ID)
}

func (h *Hub) memberCount(roomID string) int {
	room := h.table.Get(roomID)
	if room == nil {
		return 0
	}
	return len(room.Members)
}
