package transport

import (
	"net"

	"github.com/indigo-web/minihttpd/config"
)

// Transport is a listener driving an accept loop. Every accepted connection is passed to
// the callback in a goroutine of its own; the callback owns the connection.
type Transport interface {
	Bind(addr string) error
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
