package transport

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/minihttpd/config"
)

// Supervisor runs bound transports and tears all of them down as soon as one fails or
// Stop is called.
type Supervisor struct {
	mu        *sync.Mutex
	running   bool
	requested bool
	stopped   *atomic.Bool
	ts        []boundTransport
	stopOnce  *sync.Once
	stopch    chan struct{}
	done      chan struct{}
}

func NewSupervisor() Supervisor {
	return Supervisor{
		mu:       new(sync.Mutex),
		stopped:  new(atomic.Bool),
		stopOnce: new(sync.Once),
		stopch:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Add binds the transport to the address. On failure, every transport added before is
// closed too.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	err := transport.Bind(addr)
	if err != nil {
		s.close()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Run blocks until either a transport returns or Stop is called. In both cases all the
// transports are stopped and in-flight connections are waited for. The error of the first
// returned transport is returned. If Stop was called before, the transports are closed and
// nil is returned right away. Run must be called at most once.
func (s *Supervisor) Run(cfg config.NET) error {
	s.mu.Lock()
	if s.requested {
		s.mu.Unlock()
		s.close()
		return nil
	}

	s.running = true
	s.mu.Unlock()
	defer close(s.done)

	if len(s.ts) == 0 {
		return nil
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport) {
			errch <- t.t.Listen(cfg, t.cb)
		}(t)
	}

	select {
	case err := <-errch:
		s.stop()
		drain(errch, len(s.ts)-1)
		s.wait()

		return err
	case <-s.stopch:
		s.stop()
		drain(errch, len(s.ts))
		s.wait()

		return nil
	}
}

// Stop makes Run return and, if it is already running, blocks until Run is done with the
// cleanup. Safe to call any number of times, before, during or after Run.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.requested = true
	running := s.running
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		close(s.stopch)
	})

	if running {
		<-s.done
	}
}

// stop makes the accept loops return. Listeners are closed right away, as accepting
// is over, but the connections already accepted are left to finish.
func (s *Supervisor) stop() {
	if s.stopped.Swap(true) {
		return
	}

	for _, t := range s.ts {
		t.t.Stop()
		t.t.Close()
	}
}

// wait must be called only after every accept loop returned.
func (s *Supervisor) wait() {
	for _, t := range s.ts {
		t.t.Wait()
	}
}

func (s *Supervisor) close() {
	for _, t := range s.ts {
		t.t.Close()
	}
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
