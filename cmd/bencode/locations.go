package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/epithet-ssh/bencode/pkg/source"
	"github.com/epithet-ssh/bencode/pkg/tlsconfig"
)

// Remote hosts are skipped for hostCooldown after hostFailures consecutive
// failed fetches.
const (
	hostFailures = 3
	hostCooldown = 30 * time.Second
)

// locations opens inputs and outputs with the CLI's TLS settings applied.
type locations struct {
	tls  tlsconfig.Config
	opts []source.Option
}

func newLocations(cfg tlsconfig.Config, opts ...source.Option) (*locations, error) {
	client, err := cfg.HTTPClient()
	if err != nil {
		return nil, err
	}
	return &locations{
		tls:  cfg,
		opts: append([]source.Option{
			source.WithHTTPClient(client),
			source.WithBreakers(source.NewBreakers(hostFailures, hostCooldown)),
		}, opts...),
	}, nil
}

func (l *locations) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := l.tls.CheckLocation(location); err != nil {
		return nil, err
	}
	return source.Open(ctx, location, l.opts...)
}

func (l *locations) create(ctx context.Context, location string) (io.WriteCloser, error) {
	return source.Create(ctx, location, l.opts...)
}

func (l *locations) readAll(ctx context.Context, location string) ([]byte, error) {
	in, err := l.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}
