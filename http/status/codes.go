package status

type (
	Code   uint16
	Status string
)

// The only codes the server ever answers with.
const (
	OK                  Code = 200
	NotFound            Code = 404
	InternalServerError Code = 500
)

// Text returns the reason phrase for the code. 500 is "Internal Error", not the IANA phrase.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case NotFound:
		return "Not Found"
	case InternalServerError:
		return "Internal Error"
	default:
		return ""
	}
}

// StringCode returns the code as a decimal string without allocating for known codes.
func StringCode(code Code) string {
	switch code {
	case OK:
		return "200"
	case NotFound:
		return "404"
	case InternalServerError:
		return "500"
	default:
		return ""
	}
}
