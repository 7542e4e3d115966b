package signaling

// Binding associates a live connection with the room it has joined.
// Epoch records the room's epoch at admission time so that in-flight
// frames from a superseded incarnation of the room can be told apart
// from current ones.
type Binding struct {
	RoomID        string
	ParticipantID string
	Epoch         uint64
}

// Registry is pure bookkeeping from connection to binding. The
// room-to-members direction is held by Room.Members on the table, so
// both lookups on the relay hot path are O(1).
//
// The registry is not safe for concurrent use; all mutation happens on
// the hub goroutine.
type Registry struct {
	bindings map[Conn]Binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[Conn]Binding)}
}

func (r *Registry) Bind(c Conn, b Binding) {
	r.bindings[c] = b
}

// Unbind removes and returns the connection's binding. The second
// return is false if the connection never joined a room, which makes
// disconnect handling idempotent.
func (r *Registry) Unbind(c Conn) (Binding, bool) {
	b, ok := r.bindings[c]
	if ok {
		delete(r.bindings, c)
	}
	return b, ok
}

func (r *Registry) Lookup(c Conn) (Binding, bool) {
	b, ok := r.bindings[c]
	return b, ok
}

func (r *Registry) Len() int {
	return len(r.bindings)
}
