package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/digest"
)

type DigestCLI struct {
	Input string `arg:"" optional:"" default:"-" help:"Input location: file, s3://, http(s):// or - for stdin"`
	Alg   string `short:"a" default:"sha256" help:"Hash algorithm: sha1, sha256, blake2b-256 or blake3"`
	Info  bool   `help:"Print the BitTorrent info hash (SHA-1 of the info dictionary as stored)"`
}

func (c *DigestCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec, locs *locations) error {
	in, err := locs.open(ctx, c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	v, err := bencode.Decode(in, codec.DecoderOptions()...)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}

	sum, err := c.sum(v)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}
	logger.Debug("digest computed", "input", c.Input, "algorithm", c.Alg, "info", c.Info)
	_, err = fmt.Fprintf(os.Stdout, "%s  %s\n", sum, c.Input)
	return err
}

func (c *DigestCLI) sum(v bencode.Value) (string, error) {
	if c.Info {
		sum, err := digest.InfoHash(v)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum[:]), nil
	}

	alg, err := digest.ParseAlgorithm(c.Alg)
	if err != nil {
		return "", err
	}
	sum, err := digest.Sum(alg, v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}
