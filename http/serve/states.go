package serve

// State is the stage a connection was at when it got closed.
type State uint8

const (
	// AwaitingRequest means the request couldn't even be read.
	AwaitingRequest State = iota
	// Malformed means the request didn't start with `GET /` and was answered with 500.
	Malformed
	// NotFound means the resource couldn't be resolved and was answered with 404.
	NotFound
	// Serving means the resource was found and the 200 response was attempted.
	Serving
)

func (s State) String() string {
	switch s {
	case AwaitingRequest:
		return "awaiting request"
	case Malformed:
		return "malformed"
	case NotFound:
		return "not found"
	case Serving:
		return "serving"
	default:
		return "unknown"
	}
}
