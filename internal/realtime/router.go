package realtime

import (
	"sync"

	"anoa.com/alienvault/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Router tracks which clients sit in which rooms. Every mutation is an
// idempotent set operation so join, leave and disconnect may arrive in any order.
type Router struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
	log     *logrus.Entry
}

func NewRouter() *Router {
	return &Router{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
		log:     logger.WithComponent("realtime.router"),
	}
}

// Register admits an authenticated client and places it in its personal room.
func (r *Router) Register(c *Client) {
	r.Join(c, UserRoom(c.UserID()))
}

// Join adds c to room. It reports whether membership changed.
func (r *Router) Join(c *Client, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.rooms[room]
	if !ok {
		clients = make(map[*Client]struct{})
		r.rooms[room] = clients
	}
	if _, exists := clients[c]; exists {
		return false
	}
	clients[c] = struct{}{}

	joined, ok := r.members[c]
	if !ok {
		joined = make(map[string]struct{})
		r.members[c] = joined
	}
	joined[room] = struct{}{}
	return true
}

// Leave removes c from room. Personal rooms cannot be left.
func (r *Router) Leave(c *Client, room string) bool {
	if room == UserRoom(c.UserID()) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(c, room)
}

// Unregister drops every membership of c at once and closes its outbound queue.
func (r *Router) Unregister(c *Client) {
	r.mu.Lock()
	for room := range r.members[c] {
		r.removeLocked(c, room)
	}
	delete(r.members, c)
	r.mu.Unlock()

	c.closeSend()
}

func (r *Router) removeLocked(c *Client, room string) bool {
	clients, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, exists := clients[c]; !exists {
		return false
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(r.rooms, room)
	}
	if joined, ok := r.members[c]; ok {
		delete(joined, room)
	}
	return true
}

// Broadcast hands payload to every member of room except the client whose id
// equals exceptID. It returns the number of clients that accepted the payload.
func (r *Router) Broadcast(room string, payload []byte, exceptID string) int {
	r.mu.RLock()
	targets := make([]*Client, 0, len(r.rooms[room]))
	for c := range r.rooms[room] {
		if exceptID != "" && c.ID() == exceptID {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.deliver(payload) {
			delivered++
			continue
		}
		r.log.WithFields(logrus.Fields{
			"client_id": c.ID(),
			"user_id":   c.UserID(),
			"room":      room,
		}).Warn("dropping message for slow client")
	}
	return delivered
}

func (r *Router) RoomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

func (r *Router) ClientRooms(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.members[c]))
	for room := range r.members[c] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Close disconnects every client. Used at shutdown.
func (r *Router) Close() {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.members))
	for c := range r.members {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		r.Unregister(c)
	}
}
