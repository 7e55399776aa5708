package serve

import (
	"context"
	"io"
	"net"

	"github.com/containerd/log"
	"github.com/docker/go-units"
	"github.com/indigo-web/minihttpd/config"
	"github.com/indigo-web/minihttpd/http/mime"
	"github.com/indigo-web/minihttpd/http/status"
	"github.com/indigo-web/minihttpd/internal/protocol/http1"
	"github.com/indigo-web/minihttpd/internal/timer"
	"github.com/pkg/errors"
)

// File serves exactly one request from the connection: reads it, resolves the requested
// file and writes the response. The connection is closed before returning, whatever
// happens. Returned error describes an I/O failure; a malformed request or a missing
// file are not errors, they are answered and reflected in the state.
func File(ctx context.Context, cfg *config.Config, conn net.Conn) (state State, err error) {
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close connection")
		}
	}()

	if cfg.NET.ReadTimeout > 0 {
		if err = conn.SetReadDeadline(timer.Now().Add(cfg.NET.ReadTimeout)); err != nil {
			return AwaitingRequest, errors.Wrap(err, "set read deadline")
		}
	}

	buff := make([]byte, cfg.NET.ReadBufferSize)
	n, err := conn.Read(buff)
	if err != nil && !errors.Is(err, io.EOF) {
		return AwaitingRequest, errors.Wrap(err, "read request")
	}

	raw := buff[:n]
	log.G(ctx).WithField("request", string(raw)).Debug("request received")

	serializer := http1.NewSerializer(conn, cfg.Serve.Language, make([]byte, cfg.NET.FileChunkSize))

	resourcePath, err := http1.Parse(raw)
	switch {
	case errors.Is(err, status.ErrMalformedRequest):
		return Malformed, serializer.InternalError()
	case err != nil:
		return NotFound, serializer.NotFound()
	}

	file, info, err := Resolve(cfg.Serve, resourcePath)
	if err != nil {
		log.G(ctx).WithField("path", resourcePath).WithError(err).Debug("resource not found")
		return NotFound, serializer.NotFound()
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close file")
		}
	}()

	var contentType string
	if cfg.Serve.ContentType {
		contentType = mime.WithCharset(mime.NewMatcher(cfg.Serve.StrictExtensions)(resourcePath))
	}

	log.G(ctx).WithFields(log.Fields{
		"path": resourcePath,
		"size": units.HumanSize(float64(info.Size())),
	}).Debug("serving file")

	return Serving, serializer.File(file, info.Size(), contentType)
}
