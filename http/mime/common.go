package mime

type MIME = string

const (
	Unknown     MIME = ""
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	CSS         MIME = "text/css"
	JS          MIME = "text/javascript"
	JSON        MIME = "application/json"
	PDF         MIME = "application/pdf"
	GIF         MIME = "image/gif"
	JPEG        MIME = "image/jpeg"
	PNG         MIME = "image/png"
	SVG         MIME = "image/svg+xml"
	ICO         MIME = "image/vnd.microsoft.icon"
	WEBP        MIME = "image/webp"
)

// WithCharset appends the default charset parameter of the MIME, if it has one.
func WithCharset(mime MIME) string {
	charset, ok := DefaultCharset[mime]
	if !ok || charset == Unset {
		return mime
	}

	return mime + "; charset=" + charset
}
