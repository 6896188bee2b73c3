// Package registry tracks live chat connections keyed by subject and session.
package registry

import (
	"sync"

	"github.com/rs/zerolog"
)

// outboundBuffer bounds how many replies can queue for a slow writer before
// Send starts dropping.
const outboundBuffer = 16

// Connection is one live chat attachment. Replies flow through the outbound
// channel; the done channel fans out closure to the writer and any pending
// senders.
type Connection struct {
	SubjectID string
	SessionID string

	outbound  chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a connection for the given subject and session.
func NewConnection(subjectID, sessionID string) *Connection {
	return &Connection{
		SubjectID: subjectID,
		SessionID: sessionID,
		outbound:  make(chan string, outboundBuffer),
		done:      make(chan struct{}),
	}
}

// Send queues a reply for delivery. It reports false when the connection is
// closed or the outbound buffer is full; the message is dropped, never
// blocked on.
func (c *Connection) Send(message string) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbound <- message:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Outbound is the channel the connection's writer drains.
func (c *Connection) Outbound() <-chan string {
	return c.outbound
}

// Done is closed when the connection closes.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection closed. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Registry maps subject and session to the single live connection for that
// pair. A new registration for an occupied slot supersedes the old
// connection; the registry hands the superseded connection back to the
// caller and never closes it itself.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]map[string]*Connection
	logger zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]map[string]*Connection),
		logger: logger.With().Str("service", "registry").Logger(),
	}
}

// Register records conn as the live connection for its subject and session.
// It returns the connection it displaced, or nil if the slot was free.
func (r *Registry) Register(conn *Connection) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.conns[conn.SubjectID]
	if !ok {
		sessions = make(map[string]*Connection)
		r.conns[conn.SubjectID] = sessions
	}
	superseded := sessions[conn.SessionID]
	sessions[conn.SessionID] = conn

	if superseded != nil {
		r.logger.Info().
			Str("user_id", conn.SubjectID).
			Str("session_id", conn.SessionID).
			Msg("connection superseded")
	}
	return superseded
}

// Unregister removes conn from the registry. It only removes the exact
// connection given; if the slot has since been taken over by a newer
// connection, the newer one stays registered.
func (r *Registry) Unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.conns[conn.SubjectID]
	if !ok {
		return
	}
	if sessions[conn.SessionID] != conn {
		return
	}
	delete(sessions, conn.SessionID)
	if len(sessions) == 0 {
		delete(r.conns, conn.SubjectID)
	}
}

// Lookup returns the live connection for the subject and session, or nil.
func (r *Registry) Lookup(subjectID, sessionID string) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[subjectID][sessionID]
}

// Len returns the total number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, sessions := range r.conns {
		total += len(sessions)
	}
	return total
}

// SubjectCount returns the number of live connections for one subject.
func (r *Registry) SubjectCount(subjectID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[subjectID])
}
