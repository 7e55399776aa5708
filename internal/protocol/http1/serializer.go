package http1

import (
	"io"
	"strconv"

	"github.com/indigo-web/minihttpd/http/mime"
	"github.com/indigo-web/minihttpd/http/status"
	"github.com/pkg/errors"
)

const (
	protocol = "HTTP/1.1 "
	// responses are terminated by a bare LF, as the clients of the server expect
	lf = '\n'
	// trailer goes right after the body of a successful response
	trailer = "Connection: close\n\n"
)

// Serializer frames the responses. Each method issues the whole response; a Serializer
// is meant to write exactly one of them.
type Serializer struct {
	w        io.Writer
	buff     []byte
	chunk    []byte
	language string
}

// NewSerializer returns a serializer writing into w. The chunk buffer is used to stream
// bodies when w cannot pull them from the file by itself.
func NewSerializer(w io.Writer, language string, chunk []byte) *Serializer {
	return &Serializer{
		w:        w,
		buff:     make([]byte, 0, 128),
		chunk:    chunk,
		language: language,
	}
}

// InternalError writes the bare status line of the 500 response, with neither headers nor body.
func (s *Serializer) InternalError() error {
	s.appendStatus(status.InternalServerError)
	return s.flush()
}

// NotFound writes the fixed bodiless 404 response.
func (s *Serializer) NotFound() error {
	s.appendStatus(status.NotFound)
	s.appendKnownHeader("Content-Language: ", s.language)
	s.appendKnownHeader("Content-Length: ", "0")
	s.appendKnownHeader("Content-Type: ", mime.HTML)
	s.appendKnownHeader("Connection: ", "close")
	s.buff = append(s.buff, lf)

	return s.flush()
}

// File writes a 200 response carrying exactly size bytes read from body. Content-Type is
// omitted when contentType is empty. If body ends before size bytes were read, the response
// is left incomplete and status.ErrShortBody is returned.
func (s *Serializer) File(body io.Reader, size int64, contentType string) error {
	s.appendStatus(status.OK)
	s.appendKnownHeader("Content-Language: ", s.language)
	s.appendContentLength(size)
	if len(contentType) > 0 {
		s.appendKnownHeader("Content-Type: ", contentType)
	}
	s.appendKnownHeader("Connection: ", "keep-alive")
	s.buff = append(s.buff, lf)

	if err := s.flush(); err != nil {
		return err
	}

	n, err := io.CopyBuffer(s.w, io.LimitReader(body, size), s.chunk)
	if err != nil {
		return errors.Wrap(err, "stream body")
	}

	if n < size {
		return errors.Wrapf(status.ErrShortBody, "sent %d out of %d bytes", n, size)
	}

	s.buff = append(s.buff, trailer...)

	return s.flush()
}

func (s *Serializer) appendStatus(code status.Code) {
	s.buff = append(s.buff, protocol...)
	s.buff = append(s.buff, status.StringCode(code)...)
	s.buff = append(s.buff, ' ')
	s.buff = append(s.buff, status.Text(code)...)
	s.buff = append(s.buff, lf)
}

// appendKnownHeader writes a header line. The key is expected to already include
// the colon and the space.
func (s *Serializer) appendKnownHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, value...)
	s.buff = append(s.buff, lf)
}

func (s *Serializer) appendContentLength(value int64) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendInt(s.buff, value, 10)
	s.buff = append(s.buff, lf)
}

func (s *Serializer) flush() (err error) {
	if len(s.buff) > 0 {
		_, err = s.w.Write(s.buff)
		s.buff = s.buff[:0]
	}

	return errors.Wrap(err, "write response")
}
