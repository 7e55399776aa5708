package minihttpd

import (
	"context"
	"net"
	"strconv"

	"github.com/containerd/log"
	"github.com/dchest/uniuri"
	"github.com/indigo-web/minihttpd/config"
	"github.com/indigo-web/minihttpd/http/serve"
	"github.com/indigo-web/minihttpd/transport"
	"github.com/pkg/errors"
)

// App serves files on a single TCP port. Every connection carries exactly one request.
type App struct {
	port       uint16
	cfg        *config.Config
	hooks      hooks
	tcp        *transport.TCP
	supervisor transport.Supervisor
}

// New returns an App listening on all the interfaces at the port. Port 0 picks a free one.
func New(port uint16) *App {
	return &App{
		port:       port,
		cfg:        config.Default(),
		tcp:        transport.NewTCP(),
		supervisor: transport.NewSupervisor(),
	}
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// NotifyOnStart calls the callback once the port is bound. Connections attempted since then
// are queued by the kernel until the accept loop picks them up.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback once the app isn't accepting connections anymore and all
// the accepted ones are done.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the bound address. Valid only after the OnStart hook was called.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// Serve binds the port and serves until Stop is called or the listener fails.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(int(a.port)))
	if err := a.supervisor.Add(addr, a.tcp, a.onConn); err != nil {
		return err
	}

	log.L.WithField("addr", a.Addr().String()).Info("listening")
	callIfNotNil(a.hooks.OnStart)
	err := a.supervisor.Run(a.cfg.NET)
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop stops accepting new connections and returns once the in-flight ones are done. Called
// before Serve, it makes Serve release the port and return right after binding it.
func (a *App) Stop() {
	a.supervisor.Stop()
}

func (a *App) onConn(conn net.Conn) {
	ctx := log.WithLogger(context.Background(), log.L.WithFields(log.Fields{
		"remote": conn.RemoteAddr().String(),
		"conn":   uniuri.NewLen(8),
	}))

	state, err := serve.File(ctx, a.cfg, conn)
	entry := log.G(ctx).WithField("state", state.String())

	switch {
	case err != nil:
		entry.WithError(err).Error("connection failed")
	case state == serve.Malformed:
		entry.Warn("request not supported")
	case state == serve.NotFound:
		entry.Info("resource not found")
	default:
		entry.Debug("connection done")
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
