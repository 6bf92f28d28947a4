package realtime

import "sync"

// Registry tracks which sessions are subscribed to which rooms. It holds no
// business logic and no persistent state; membership is rebuilt entirely from
// live connections. Rooms are created lazily on first join and deleted when
// their last member leaves, so churn cannot leak empty rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Session]struct{})}
}

// Join adds the session to the room's member set. Idempotent.
func (r *Registry) Join(s *Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		r.rooms[room] = members
	}
	members[s] = struct{}{}
}

// Leave removes the session from the room's member set. Idempotent.
func (r *Registry) Leave(s *Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drop(s, room)
}

// MembersOf returns a snapshot of the room's current members. The snapshot is
// safe to iterate while concurrent joins and leaves mutate the registry.
func (r *Registry) MembersOf(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	snapshot := make([]*Session, 0, len(members))
	for s := range members {
		snapshot = append(snapshot, s)
	}
	return snapshot
}

// RemoveSession removes the session from every room it belongs to. Called
// exactly once on disconnect; any broadcast snapshot taken afterwards will
// not contain the session.
func (r *Registry) RemoveSession(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.rooms {
		r.drop(s, room)
	}
}

// RoomCount returns the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

// drop removes s from room and garbage-collects the room if it became empty.
// Caller holds the write lock.
func (r *Registry) drop(s *Session, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
