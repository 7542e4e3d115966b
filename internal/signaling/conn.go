package signaling

import "github.com/mossy-p/rendezvous/internal/models"

// Conn is the hub's view of one transport connection. The concrete
// websocket client implements it; tests substitute fakes.
//
// Deliver must never block: the hub does no I/O while it holds room
// state, so outbound sends are queued fire-and-forget and dropped if
// the transport has gone away or its buffer is full.
type Conn interface {
	// ID identifies the transport session, not the participant. The
	// participant id is caller-supplied at join time and lives in the
	// registry binding.
	ID() string

	// Deliver queues an outbound message. Delivery to a closed
	// connection is a silent no-op.
	Deliver(msg *models.SignalMessage)

	// Close tears down the underlying transport. Safe to call more
	// than once.
	Close()
}
