package config

import "time"

type (
	NET struct {
		// ReadBufferSize is the maximal number of bytes read from a connection. A request is
		// read with a single call, anything past the buffer is never looked at.
		ReadBufferSize int
		// FileChunkSize is the size of the buffer the response body is streamed through.
		FileChunkSize int
		// ReadTimeout limits how long a connection may stay silent before its request is read.
		// Zero disables the timeout, so a silent client holds its connection forever. The
		// deadline is computed from a cached clock and is precise to half a second.
		ReadTimeout time.Duration `test:"nullable"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// AcceptFailFast makes any Accept() error terminate the listener. Otherwise, errors
		// are logged and accepting is retried with a growing delay.
		AcceptFailFast bool `test:"nullable"`
	}

	Serve struct {
		// Root is the directory request paths are resolved against.
		Root string
		// Language is the value of the Content-Language header.
		Language string
		// Confine rejects with 404 the paths escaping Root, e.g. `../etc/passwd`.
		Confine bool `test:"nullable"`
		// ContentType enables the Content-Type header in successful responses.
		ContentType bool `test:"nullable"`
		// StrictExtensions picks the exact-extension MIME matcher. Disabled, a file is
		// considered e.g. a jpeg if its extension merely contains "jpg".
		StrictExtensions bool
	}
)

// Config holds the limits and the behaviour switches of the server.
//
// Always start from Default(): zero values are not meaningful defaults.
type Config struct {
	NET   NET
	Serve Serve
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            255,
			FileChunkSize:             256,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Serve: Serve{
			Root:             ".",
			Language:         "en-US",
			StrictExtensions: true,
		},
	}
}
