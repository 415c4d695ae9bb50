package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/epithet-ssh/bencode/pkg/codecserver"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/tlsconfig"
)

type ServeCLI struct {
	Listen       string `short:"l" env:"BENCODE_LISTEN" default:":8080" help:"Address to listen on"`
	MaxBodyBytes int64  `default:"8388608" help:"Maximum request body size in bytes"`
	TLSCert      string `name:"tls-cert" env:"BENCODE_TLS_CERT" help:"PEM certificate; serve HTTPS when set with --tls-key"`
	TLSKey       string `name:"tls-key" env:"BENCODE_TLS_KEY" help:"PEM private key for --tls-cert"`
}

func (c *ServeCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec) error {
	handler := codecserver.New(codecserver.Config{
		Codec:        codec,
		Logger:       logger,
		MaxBodyBytes: c.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("--tls-cert and --tls-key must be set together")
	}
	if c.TLSCert != "" {
		tlsCfg, err := tlsconfig.Server(c.TLSCert, c.TLSKey)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsCfg
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "address", c.Listen, "tls", srv.TLSConfig != nil, "max_body_bytes", c.MaxBodyBytes)
	var err error
	if srv.TLSConfig != nil {
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
