// Package session holds the state of one multiplayer session, live or
// replayed.
package session

import (
	"github.com/oklog/ulid/v2"
)

// Session is the client-side view of a game session.
type Session struct {
	ID        ulid.ULID
	Name      string
	Replay    bool
	Conn      Connection
	FactionID int

	// Visible replay window, in ticks.
	ReplayTimerStart int
	ReplayTimerEnd   int
}

// New returns a live session using conn.
func New(name string, conn Connection) *Session {
	return &Session{ID: ulid.Make(), Name: name, Conn: conn}
}

// NewReplay returns a session in replay mode attached to a disconnected
// ReplayConnection.
func NewReplay() *Session {
	conn := &ReplayConnection{}
	conn.SetState(StatePlaying)
	return &Session{ID: ulid.Make(), Replay: true, Conn: conn}
}
