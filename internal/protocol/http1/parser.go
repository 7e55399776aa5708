package http1

import (
	"bytes"

	"github.com/indigo-web/minihttpd/http/status"
	"github.com/indigo-web/utils/uf"
)

var (
	// requestPrefix is the only accepted beginning of a request.
	requestPrefix = []byte("GET /")
	// protocolMarker terminates the resource path.
	protocolMarker = []byte(" HTTP/")
)

// Parse extracts the resource path from the raw request. The request must begin with
// `GET /`, otherwise status.ErrMalformedRequest is returned. The path spans up to the
// first ` HTTP/`; if there is no such marker or the path is empty, status.ErrNotFound
// is returned. Nothing past the marker is inspected.
//
// The returned string shares memory with data and is valid only until data is modified.
func Parse(data []byte) (resourcePath string, err error) {
	if !bytes.HasPrefix(data, requestPrefix) {
		return "", status.ErrMalformedRequest
	}

	data = data[len(requestPrefix):]
	end := bytes.Index(data, protocolMarker)
	if end <= 0 {
		return "", status.ErrNotFound
	}

	return uf.B2S(data[:end]), nil
}
