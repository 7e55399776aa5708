package transport

import (
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/containerd/log"
	"github.com/indigo-web/minihttpd/config"
	"github.com/pkg/errors"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		l:    l,
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return errors.Wrapf(err, "bind %s", addr)
	}

	t.l = l
	return nil
}

// Addr returns the address the transport is bound to.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen accepts connections until Stop is called. Each connection is served by cb in its
// own goroutine, which also closes the connection afterward and recovers a panicking cb, so
// neither the loop nor other connections are affected by it.
//
// With cfg.AcceptFailFast, any Accept() error is returned right away. Otherwise, it is logged
// and accepting is retried after a delay growing from 5ms up to 1s.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	var delay time.Duration

	for !t.stop.Load() {
		// not the cached clock: it lags up to half a second, which would put short periods
		// in the past
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return errors.Wrap(err, "set accept deadline")
		}

		conn, err := t.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case t.stop.Load() && errors.Is(err, net.ErrClosed):
				return nil
			case cfg.AcceptFailFast || errors.Is(err, net.ErrClosed):
				return errors.Wrap(err, "accept")
			}

			delay = backoff(delay)
			log.L.WithError(err).WithField("retry_in", delay).Error("accept failed")
			time.Sleep(delay)
			continue
		}

		delay = 0
		t.wg.Add(1)
		go t.serve(conn, cb)
	}

	return nil
}

func (t *TCP) serve(conn net.Conn, cb func(conn net.Conn)) {
	defer t.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.L.WithFields(log.Fields{
				"remote": conn.RemoteAddr().String(),
				"panic":  r,
			}).Error("connection handler panicked")
		}

		_ = conn.Close()
	}()

	cb(conn)
}

// Stop makes the accept loop return. A pending Accept() is interrupted right away, unless
// the loop is just about to re-arm the deadline, in which case it takes at most
// AcceptLoopInterruptPeriod.
func (t *TCP) Stop() {
	t.stop.Store(true)
	if t.l != nil {
		_ = t.l.SetDeadline(time.Now())
	}
}

func (t *TCP) Close() {
	if t.l != nil {
		_ = t.l.Close()
	}
}

// Wait blocks until every connection goroutine has finished.
func (t *TCP) Wait() {
	t.wg.Wait()
}

func backoff(delay time.Duration) time.Duration {
	if delay == 0 {
		return minAcceptDelay
	}

	return min(2*delay, maxAcceptDelay)
}
