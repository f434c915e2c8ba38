package chat

import (
	"sync"
)

// Registry is the single source of truth for "which connections represent
// which user right now". It owns the mapping exclusively; admission and
// removal are the only mutations. Entries are removed by explicit disconnect
// only — there is no TTL sweeper.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Client // user -> conn_id -> client
	byConn map[string]*Client            // conn_id -> client
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*Client),
		byConn: make(map[string]*Client),
	}
}

// Admit registers c under userID. Re-admitting the same connection is
// idempotent: the slot is replaced, and if the connection was previously
// admitted under another user it is moved.
func (r *Registry) Admit(userID string, c *Client) {
	if userID == "" || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[c.ConnID]; ok && prev.UserID != "" && prev.UserID != userID {
		r.dropLocked(prev)
	}

	c.UserID = userID
	m := r.byUser[userID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[userID] = m
	}
	m[c.ConnID] = c
	r.byConn[c.ConnID] = c
}

// Remove deletes c from the registry. Safe to call for a connection that was
// never admitted (unauthenticated disconnect) — it is then a no-op.
func (r *Registry) Remove(c *Client) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byConn[c.ConnID]
	if !ok || reg != c {
		return
	}
	r.dropLocked(c)
}

// dropLocked 需要持写锁调用
func (r *Registry) dropLocked(c *Client) {
	delete(r.byConn, c.ConnID)
	if m := r.byUser[c.UserID]; m != nil {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.byUser, c.UserID)
		}
	}
}

// IsOnline is true iff userID has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// ConnectionsFor returns the live set for fan-out. Unknown or offline users
// yield an empty slice, never an error.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// GetByConnID returns the client for a connection id, or nil.
func (r *Registry) GetByConnID(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[connID]
}

// OnlineUsers returns the number of users with at least one connection.
func (r *Registry) OnlineUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Connections returns the total number of admitted connections.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
