package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/containerd/log"
	"github.com/indigo-web/minihttpd"
	"github.com/indigo-web/minihttpd/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	configFile      string
	root            string
	logLevel        string
	readTimeout     time.Duration
	confine         bool
	contentType     bool
	looseExtensions bool
	acceptFailFast  bool
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "minihttpd [OPTIONS] PORT",
		Short:         "Serve files of a directory over a minimal subset of HTTP/1.1",
		Example:       "  minihttpd 9034",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          portArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(opts, cmd.Flags())
			if err != nil {
				return err
			}

			if err = log.SetLevel(opts.logLevel); err != nil {
				return errors.Wrap(err, "log level")
			}

			return run(cmd.Context(), minihttpd.New(port).Tune(cfg))
		},
	}

	installFlags(cmd.Flags(), &opts)

	return cmd
}

func installFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configFile, "config", "c", "", "JSON configuration file")
	flags.StringVarP(&opts.root, "root", "r", ".", "Directory the files are served from")
	flags.StringVarP(&opts.logLevel, "log-level", "l", "info", `Logging level ("debug"|"info"|"warn"|"error"|"fatal")`)
	flags.DurationVar(&opts.readTimeout, "read-timeout", 0, "Close connections not sending a request in time (0 waits forever)")
	flags.BoolVar(&opts.confine, "confine", false, "Answer 404 to paths escaping the root directory")
	flags.BoolVar(&opts.contentType, "content-type", false, "Send the Content-Type header")
	flags.BoolVar(&opts.looseExtensions, "loose-extensions", false, "Detect content type by extension containment (.jpgx is a jpeg)")
	flags.BoolVar(&opts.acceptFailFast, "accept-fail-fast", false, "Exit on the first failed accept")
}

func portArg(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return errors.New("no port provided")
	case 1:
		return nil
	default:
		return errors.Errorf("exactly one port expected, got %d arguments", len(args))
	}
}

func parsePort(arg string) (uint16, error) {
	port, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, errors.Errorf("invalid port %q", arg)
	}

	return uint16(port), nil
}

// loadConfig builds the config from the file, if any, and overrides it with the flags
// that were set explicitly.
func loadConfig(opts options, flags *pflag.FlagSet) (cfg *config.Config, err error) {
	cfg = config.Default()
	if len(opts.configFile) > 0 {
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, err
		}
	}

	if flags.Changed("root") {
		cfg.Serve.Root = opts.root
	}
	if flags.Changed("read-timeout") {
		cfg.NET.ReadTimeout = opts.readTimeout
	}
	if flags.Changed("confine") {
		cfg.Serve.Confine = opts.confine
	}
	if flags.Changed("content-type") {
		cfg.Serve.ContentType = opts.contentType
	}
	if flags.Changed("loose-extensions") {
		cfg.Serve.StrictExtensions = !opts.looseExtensions
	}
	if flags.Changed("accept-fail-fast") {
		cfg.NET.AcceptFailFast = opts.acceptFailFast
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run serves until the app fails or SIGINT/SIGTERM is received.
func run(ctx context.Context, app *minihttpd.App) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errch := make(chan error, 1)
	go func() {
		errch <- app.Serve()
	}()

	select {
	case err := <-errch:
		return err
	case <-ctx.Done():
		log.G(ctx).Info("shutting down, waiting for in-flight connections")
		app.Stop()
		return <-errch
	}
}
