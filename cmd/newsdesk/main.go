// Command newsdesk performs one request against the newsdesk backend and
// prints the JSON result.
//
// Usage:
//
//	newsdesk [-X METHOD] [-d JSON] [-retries N] [-offline] [-trace] [-config file] PATH
//
// The base URL, timeout, retry defaults and logging come from the config
// file and NEWSDESK_* environment variables. The bearer token is read
// from -token or NEWSDESK_TOKEN.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kroma-labs/newsdesk-go/config"
	"github.com/kroma-labs/newsdesk-go/credentials"
	"github.com/kroma-labs/newsdesk-go/httpclient"
	"github.com/rs/zerolog"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliOptions struct {
	method     string
	data       string
	retries    int
	offline    bool
	configFile string
	token      string
	trace      bool
	path       string
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions

	fs := flag.NewFlagSet("newsdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.method, "X", "GET", "HTTP method")
	fs.StringVar(&o.data, "d", "", "JSON request body")
	fs.IntVar(&o.retries, "retries", -1, "network retries (default from config)")
	fs.BoolVar(&o.offline, "offline", false, "print the offline result instead of failing on network errors")
	fs.StringVar(&o.configFile, "config", "", "YAML config file")
	fs.StringVar(&o.token, "token", "", "bearer token (default $NEWSDESK_TOKEN)")
	fs.BoolVar(&o.trace, "trace", false, "write spans and metrics to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: newsdesk [-X METHOD] [-d JSON] [-retries N] [-offline] [-trace] [-config file] PATH")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one PATH is required")
	}

	o.path = fs.Arg(0)
	if !strings.HasPrefix(o.path, "/") {
		o.path = "/" + o.path
	}
	o.method = strings.ToUpper(o.method)
	return o, nil
}

func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "newsdesk:", err)
		return exitUsage
	}

	cfgOpts := []config.Option{config.WithEnviron(func() []string { return environ })}
	if opts.configFile != "" {
		cfgOpts = append(cfgOpts, config.WithFile(opts.configFile))
	}
	src, err := config.NewSource(cfgOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "newsdesk:", err)
		return exitFailure
	}
	cfg := src.Config()
	logger := newLogger(cfg.Log, stderr)

	token := opts.token
	if token == "" {
		token = lookupEnv(environ, "NEWSDESK_TOKEN")
	}

	clientOpts := []httpclient.Option{
		httpclient.WithBaseURLSource(src),
		httpclient.WithTokenSource(credentials.NewStore(token)),
		httpclient.WithConfig(cfg.ClientConfig()),
		httpclient.WithLogger(logger),
		httpclient.WithDebug(cfg.App.Debug),
		httpclient.WithServiceName("newsdesk"),
		httpclient.WithRequestInterceptor(httpclient.RequestIDInterceptor()),
	}
	if opts.trace {
		tel, err := newTelemetry(stderr)
		if err != nil {
			fmt.Fprintln(stderr, "newsdesk:", err)
			return exitFailure
		}
		defer func() {
			if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("telemetry shutdown failed")
			}
		}()
		clientOpts = append(clientOpts,
			httpclient.WithTracerProvider(tel.TracerProvider()),
			httpclient.WithMeterProvider(tel.MeterProvider()),
		)
	}
	client := httpclient.New(clientOpts...)

	req := httpclient.Request{
		Operation:    "cli",
		Method:       opts.method,
		Path:         opts.path,
		Retries:      cfg.API.Retries,
		AllowOffline: opts.offline,
	}
	if opts.retries >= 0 {
		req.Retries = opts.retries
	}
	if opts.data != "" {
		if !json.Valid([]byte(opts.data)) {
			fmt.Fprintln(stderr, "newsdesk: -d is not valid JSON")
			return exitUsage
		}
		req.Body = []byte(opts.data)
	}

	start := time.Now()
	res, err := client.Do(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.path).Dur("elapsed", time.Since(start)).Msg("request failed")
		fmt.Fprintln(stderr, "newsdesk:", err)
		return exitFailure
	}

	logger.Debug().
		Int("status", res.StatusCode).
		Str("base_url", res.BaseURL).
		Bool("offline", res.NetworkError).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if err := printResult(stdout, res); err != nil {
		fmt.Fprintln(stderr, "newsdesk:", err)
		return exitFailure
	}
	return exitOK
}

// printResult writes the decoded body as indented JSON. The offline
// sentinel is printed as {"networkError":true,"message":...}; a 204 or
// empty body prints nothing.
func printResult(w io.Writer, res *httpclient.Result) error {
	var v any
	switch {
	case res.NetworkError:
		v = map[string]any{"networkError": true, "message": res.Message}
	case res.IsEmpty():
		return nil
	default:
		v = res.Data
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	var l zerolog.Logger
	if cfg.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(w).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return l.Level(level)
}

func lookupEnv(environ []string, key string) string {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}
