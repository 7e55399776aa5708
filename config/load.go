package config

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads a JSON config file on top of Default(), so omitted fields keep their
// defaults. Durations are integers in nanoseconds.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	if err = json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return errors.Errorf("NET.ReadBufferSize must be positive, got %d", c.NET.ReadBufferSize)
	case c.NET.FileChunkSize <= 0:
		return errors.Errorf("NET.FileChunkSize must be positive, got %d", c.NET.FileChunkSize)
	case c.NET.ReadTimeout < 0:
		return errors.Errorf("NET.ReadTimeout must not be negative, got %s", c.NET.ReadTimeout)
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.Errorf(
			"NET.AcceptLoopInterruptPeriod must be positive, got %s", c.NET.AcceptLoopInterruptPeriod,
		)
	case len(c.Serve.Root) == 0:
		return errors.New("Serve.Root must not be empty")
	}

	return nil
}
