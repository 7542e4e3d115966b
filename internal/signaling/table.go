package signaling

// Table maps room ids to live rooms. It also remembers, per room id,
// the next epoch to assign, so that a room recreated after destruction
// always gets a strictly greater epoch than every prior incarnation of
// the same id.
//
// The table is owned by the hub and mutated only on its goroutine.
type Table struct {
	rooms  map[string]*Room
	epochs map[string]uint64 // next epoch per room id; zero value means never created
}

func NewTable() *Table {
	return &Table{
		rooms:  make(map[string]*Room),
		epochs: make(map[string]uint64),
	}
}

// Get returns the live room for id, or nil.
func (t *Table) Get(id string) *Room {
	return t.rooms[id]
}

// Create makes a fresh room for id at the next epoch and installs it.
// The caller must have removed any existing room for the same id first.
func (t *Table) Create(id string) *Room {
	epoch := t.epochs[id]
	t.epochs[id] = epoch + 1
	room := &Room{
		ID:    id,
		Epoch: epoch,
		State: RoomOpen,
	}
	t.rooms[id] = room
	return room
}

// Remove drops the room for id. The epoch counter is retained so a
// later recreation continues the sequence.
func (t *Table) Remove(id string) {
	delete(t.rooms, id)
}

func (t *Table) Len() int {
	return len(t.rooms)
}

// Rooms returns the live rooms, for shutdown sweeps.
func (t *Table) Rooms() []*Room {
	out := make([]*Room, 0, len(t.rooms))
	for _, r := range t.rooms {
		out = append(out, r)
	}
	return out
}
