package session

import (
	"errors"
	"fmt"
	"net"
	"sync"

	mcnet "github.com/Tnze/go-mc/net"
	pk "github.com/Tnze/go-mc/net/packet"
)

// State is the lifecycle state of a connection.
type State int

const (
	StateDisconnected State = iota
	StateJoining
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateJoining:
		return "joining"
	case StatePlaying:
		return "playing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrConnClosed is returned when sending on a closed connection.
var ErrConnClosed = errors.New("session: connection closed")

// Connection is the transport capability a session talks through. Replay
// playback uses ReplayConnection so the rest of the system needs no special
// case.
type Connection interface {
	Send(p pk.Packet) error
	HandleReceive(p pk.Packet) error
	State() State
	SetState(s State)
	Close(reason string) error
}

// ReplayConnection is the disconnected stand-in used during playback. It
// never transmits and drops everything it receives.
type ReplayConnection struct {
	mu    sync.Mutex
	state State
}

func (c *ReplayConnection) Send(pk.Packet) error          { return nil }
func (c *ReplayConnection) HandleReceive(pk.Packet) error { return nil }
func (c *ReplayConnection) Close(string) error            { return nil }

func (c *ReplayConnection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ReplayConnection) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Handler processes a packet received on a live connection.
type Handler func(p pk.Packet) error

// LiveConnection speaks the framed packet protocol over a network socket.
type LiveConnection struct {
	conn    *mcnet.Conn
	handler Handler

	mu     sync.Mutex
	state  State
	closed bool
}

// Dial connects to addr.
func Dial(addr string, h Handler) (*LiveConnection, error) {
	conn, err := mcnet.DialMC(addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &LiveConnection{conn: conn, handler: h, state: StateJoining}, nil
}

// Wrap adapts an established socket.
func Wrap(c net.Conn, h Handler) *LiveConnection {
	return &LiveConnection{conn: mcnet.WrapConn(c), handler: h, state: StateJoining}
}

func (c *LiveConnection) Send(p pk.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	return c.conn.WritePacket(p)
}

// HandleReceive dispatches p to the handler, if any.
func (c *LiveConnection) HandleReceive(p pk.Packet) error {
	if c.handler == nil {
		return nil
	}
	return c.handler(p)
}

// ReadLoop reads packets and hands them to HandleReceive until the socket
// fails or a handler returns an error.
func (c *LiveConnection) ReadLoop() error {
	var p pk.Packet
	for {
		if err := c.conn.ReadPacket(&p); err != nil {
			return err
		}
		// Handlers may keep the payload; the next read reuses the buffer.
		data := make([]byte, len(p.Data))
		copy(data, p.Data)
		if err := c.HandleReceive(pk.Packet{ID: p.ID, Data: data}); err != nil {
			return err
		}
	}
}

func (c *LiveConnection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *LiveConnection) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *LiveConnection) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.state = StateDisconnected
	return c.conn.Close()
}
