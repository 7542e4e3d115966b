package signaling

import (
	"github.com/rs/zerolog"

	"github.com/mossy-p/rendezvous/internal/models"
)

// Relay forwards offer/answer/candidate messages between the members
// of a room, excluding the sender. Signaling is best-effort: a message
// that cannot be routed is dropped, never buffered for retry, and
// never surfaced as an error to the sender.
type Relay struct {
	log      zerolog.Logger
	table    *Table
	registry *Registry
}

func NewRelay(log zerolog.Logger, table *Table, registry *Registry) *Relay {
	return &Relay{log: log, table: table, registry: registry}
}

// Route resolves the sender's room via the registry and delivers the
// message to every other member. Offer and answer payloads are cached
// on the room first; candidates pass through uncached.
//
// Frames from a connection that has not joined a room, or whose
// binding belongs to a superseded epoch of the room id, are dropped
// silently: both are protocol-sequence violations, not errors.
func (r *Relay) Route(sender Conn, msg *models.SignalMessage) {
	binding, ok := r.registry.Lookup(sender)
	if !ok {
		r.log.Debug().Str("conn", sender.ID()).Str("type", string(msg.Type)).
			Msg("relay frame from unjoined connection dropped")
		return
	}
	room := r.table.Get(binding.RoomID)
	if room == nil || room.Epoch != binding.Epoch {
		return
	}
	if msg.Epoch != nil && *msg.Epoch != room.Epoch {
		r.log.Debug().Str("room", room.ID).Uint64("epoch", *msg.Epoch).
			Uint64("current", room.Epoch).Msg("stale-epoch frame dropped")
		return
	}

	switch msg.Type {
	case models.SignalKindOffer:
		room.LastOffer = msg.Payload
	case models.SignalKindAnswer:
		room.LastAnswer = msg.Payload
	}

	out := models.NewRelayed(msg.Type, room.ID, room.Epoch, msg.Payload)
	for _, m := range room.Members {
		if m.Conn == sender {
			continue
		}
		m.Conn.Deliver(out)
	}
}
