package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/tlsconfig"
	"github.com/lmittmann/tint"
)

type CLI struct {
	Verbose int             `short:"v" type:"counter" help:"Increase verbosity (-v info, -vv debug)"`
	Config  kong.ConfigFlag `help:"Settings file (YAML, JSON or CUE)"`

	MaxDepth        int    `help:"Maximum container nesting depth (0 for the default of 512)"`
	MaxStringLength int64  `help:"Maximum byte string length (0 for the default of 64MiB)"`
	KeyOrder        string `help:"Dictionary key order on decode: preserve or strict" enum:"preserve,strict" default:"preserve"`
	SortKeys        bool   `help:"Write dictionary keys in sorted order"`

	Insecure    bool          `help:"Skip TLS verification and allow plain http:// inputs"`
	TLSCACert   string        `name:"tls-ca-cert" help:"PEM file of CA certificates to trust for https:// inputs"`
	HTTPTimeout time.Duration `name:"http-timeout" default:"30s" help:"Timeout for fetching http(s):// inputs"`

	Decode   DecodeCLI   `cmd:"" help:"Decode bencode into JSON, YAML, CBOR or text"`
	Encode   EncodeCLI   `cmd:"" help:"Encode JSON or YAML as bencode"`
	Validate ValidateCLI `cmd:"" help:"Check that inputs are well-formed bencode"`
	Digest   DigestCLI   `cmd:"" help:"Hash a value's canonical encoding"`
	Render   RenderCLI   `cmd:"" help:"Render a mustache template against a decoded value"`
	Serve    ServeCLI    `cmd:"" help:"Serve the codec over HTTP"`
	Lambda   LambdaCLI   `cmd:"" help:"Serve the codec as an AWS Lambda function behind API Gateway"`
}

// TLS collects the TLS flags.
func (c *CLI) TLS() tlsconfig.Config {
	return tlsconfig.Config{
		Insecure:   c.Insecure,
		CACertFile: c.TLSCACert,
		Timeout:    c.HTTPTimeout,
	}
}

// Codec collects the codec flags.
func (c *CLI) Codec() config.Codec {
	return config.Codec{
		MaxDepth:        c.MaxDepth,
		MaxStringLength: c.MaxStringLength,
		KeyOrder:        c.KeyOrder,
		SortKeys:        c.SortKeys,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bencode"),
		kong.Description("Decode, encode, validate and serve bencode"),
		kong.UsageOnError(),
		kong.Configuration(config.KongLoader, "/etc/bencode/config.yaml", "~/.config/bencode/config.yaml"),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	logger := newLogger(cli.Verbose)
	codec := cli.Codec()
	kctx.FatalIfErrorf(codec.Validate())

	locs, err := newLocations(cli.TLS())
	kctx.FatalIfErrorf(err)

	err = kctx.Run(logger, codec, locs)
	kctx.FatalIfErrorf(err)
}

func newLogger(verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}
