package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/indigo-web/minihttpd/config"
	"github.com/indigo-web/minihttpd/transport/dummy"
	"github.com/stretchr/testify/require"
)

func testConfig() config.NET {
	cfg := config.Default().NET
	cfg.AcceptLoopInterruptPeriod = 50 * time.Millisecond
	return cfg
}

// flakyListener fails the first accepts with the given errors, then hands out dummy
// connections, then blocks until the deadline like a real listener would.
type flakyListener struct {
	mu       sync.Mutex
	errs     []error
	conns    []net.Conn
	deadline time.Time
	closed   atomic.Bool
}

func (f *flakyListener) Accept() (net.Conn, error) {
	f.mu.Lock()

	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return nil, err
	}

	if len(f.conns) > 0 {
		conn := f.conns[0]
		f.conns = f.conns[1:]
		f.mu.Unlock()
		return conn, nil
	}

	deadline := f.deadline
	f.mu.Unlock()

	if f.closed.Load() {
		return nil, net.ErrClosed
	}

	time.Sleep(time.Until(deadline))

	return nil, &net.OpError{Op: "accept", Net: "tcp", Err: os.ErrDeadlineExceeded}
}

func (f *flakyListener) SetDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deadline = t
	return nil
}

func (f *flakyListener) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *flakyListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4zero}
}

func listenAsync(tcp *TCP, cfg config.NET, cb func(net.Conn)) chan error {
	return runParallel(func() error {
		return tcp.Listen(cfg, cb)
	})
}

func TestTCP(t *testing.T) {
	t.Run("serve and stop", func(t *testing.T) {
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		defer tcp.Close()

		errch := listenAsync(tcp, testConfig(), func(conn net.Conn) {
			_, _ = conn.Write([]byte("hello"))
		})

		conn, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		data, err := io.ReadAll(conn)
		require.NoError(t, err, "connection must be closed after the callback")
		require.Equal(t, "hello", string(data))
		require.NoError(t, conn.Close())

		tcp.Stop()
		select {
		case err = <-errch:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "listener did not stop")
		}

		tcp.Wait()
	})

	t.Run("bind error", func(t *testing.T) {
		occupied := NewTCP()
		require.NoError(t, occupied.Bind("127.0.0.1:0"))
		defer occupied.Close()

		err := NewTCP().Bind(occupied.Addr().String())
		require.ErrorIs(t, err, syscall.EADDRINUSE)
	})

	t.Run("panic is contained", func(t *testing.T) {
		first, second := dummy.NewConn(""), dummy.NewConn("")
		l := &flakyListener{conns: []net.Conn{first, second}}
		tcp := newTCP(l)

		var served atomic.Int32
		errch := listenAsync(&tcp, testConfig(), func(conn net.Conn) {
			if served.Add(1) == 1 {
				panic("handler blew up")
			}
		})

		require.Eventually(t, func() bool {
			return first.Closed() == 1 && second.Closed() == 1
		}, time.Second, 5*time.Millisecond)
		require.EqualValues(t, 2, served.Load())

		tcp.Stop()
		require.NoError(t, <-errch)
		tcp.Wait()
	})

	t.Run("panic over loopback", func(t *testing.T) {
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		defer tcp.Close()

		var served atomic.Int32
		errch := listenAsync(tcp, testConfig(), func(conn net.Conn) {
			if served.Add(1) == 1 {
				panic("handler blew up")
			}

			_, _ = conn.Write([]byte("hello"))
		})

		fetch := func() string {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			require.NoError(t, err)
			defer conn.Close()
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
			data, err := io.ReadAll(conn)
			require.NoError(t, err, "connection must be closed even if the handler panics")
			return string(data)
		}

		require.Empty(t, fetch())
		require.Equal(t, "hello", fetch())
		require.Equal(t, "hello", fetch())

		tcp.Stop()
		select {
		case err := <-errch:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "listener did not stop")
		}

		tcp.Wait()
	})

	t.Run("accept errors are retried", func(t *testing.T) {
		conn := dummy.NewConn("")
		transient := &net.OpError{Op: "accept", Net: "tcp", Err: syscall.EMFILE}
		l := &flakyListener{errs: []error{transient, transient}, conns: []net.Conn{conn}}
		tcp := newTCP(l)

		errch := listenAsync(&tcp, testConfig(), func(net.Conn) {})
		require.Eventually(t, func() bool {
			return conn.Closed() == 1
		}, time.Second, 5*time.Millisecond)

		tcp.Stop()
		require.NoError(t, <-errch)
	})

	t.Run("accept errors are fatal when failing fast", func(t *testing.T) {
		transient := &net.OpError{Op: "accept", Net: "tcp", Err: syscall.EMFILE}
		l := &flakyListener{errs: []error{transient}}
		tcp := newTCP(l)
		cfg := testConfig()
		cfg.AcceptFailFast = true

		select {
		case err := <-listenAsync(&tcp, cfg, func(net.Conn) {}):
			require.ErrorIs(t, err, syscall.EMFILE)
		case <-time.After(time.Second):
			require.Fail(t, "listener did not fail")
		}
	})

	t.Run("closed listener", func(t *testing.T) {
		l := &flakyListener{errs: []error{net.ErrClosed}}
		tcp := newTCP(l)

		err := <-listenAsync(&tcp, testConfig(), func(net.Conn) {})
		require.True(t, errors.Is(err, net.ErrClosed))
	})
}

func TestBackoff(t *testing.T) {
	require.Equal(t, minAcceptDelay, backoff(0))
	require.Equal(t, 2*minAcceptDelay, backoff(minAcceptDelay))
	require.Equal(t, maxAcceptDelay, backoff(maxAcceptDelay))
	require.Equal(t, maxAcceptDelay, backoff(800*time.Millisecond))
}
