package status

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	// ErrMalformedRequest is returned when the request doesn't start with `GET /`.
	ErrMalformedRequest = NewError(InternalServerError, "request not supported")
	// ErrNotFound covers both a missing resource and a request line without a path.
	ErrNotFound = NewError(NotFound, "not found")
	// ErrShortBody means the file yielded fewer bytes than were advertised in Content-Length.
	ErrShortBody = NewError(InternalServerError, "file is shorter than advertised")
)
