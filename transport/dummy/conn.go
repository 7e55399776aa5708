package dummy

import (
	"io"
	"net"
	"sync"
	"time"
)

var addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}

// Conn is an in-memory net.Conn. Reads return the request it was created with (in a single
// call, like a short request arriving in one segment), writes are recorded.
type Conn struct {
	mu           sync.Mutex
	request      []byte
	readErr      error
	writeErr     error
	written      []byte
	closed       int
	readDeadline time.Time
}

func NewConn(request string) *Conn {
	return &Conn{request: []byte(request)}
}

// FailRead makes every read return err.
func (c *Conn) FailRead(err error) *Conn {
	c.readErr = err
	return c
}

// FailWrite makes every write return err.
func (c *Conn) FailWrite(err error) *Conn {
	c.writeErr = err
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return 0, c.readErr
	}

	if len(c.request) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.request)
	c.request = c.request[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, b...)

	return len(b), nil
}

// Written returns everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed++
	return nil
}

// Closed returns how many times Close was called.
func (c *Conn) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// ReadDeadline returns the last read deadline set.
func (c *Conn) ReadDeadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.readDeadline
}

func (c *Conn) LocalAddr() net.Addr {
	return addr
}

func (c *Conn) RemoteAddr() net.Addr {
	return addr
}

func (c *Conn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readDeadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
