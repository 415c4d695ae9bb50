package main

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/transcode"
)

type EncodeCLI struct {
	Input  string `arg:"" optional:"" default:"-" help:"Input location: file, s3://, http(s):// or - for stdin"`
	Output string `short:"o" default:"-" help:"Output location: file, s3:// or - for stdout"`
	From   string `enum:"auto,json,yaml" default:"auto" help:"Input format; auto picks YAML for .yaml and .yml inputs"`
}

func (c *EncodeCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec, locs *locations) error {
	data, err := locs.readAll(ctx, c.Input)
	if err != nil {
		return err
	}

	v, err := parseDocument(data, inputFormat(c.From, c.Input))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}

	out, err := locs.create(ctx, c.Output)
	if err != nil {
		return err
	}
	if err := bencode.NewEncoder(out, codec.EncoderOptions()...).Encode(v); err != nil {
		out.Close()
		return err
	}
	logger.Info("encoded", "input", c.Input, "output", c.Output)
	return out.Close()
}

// inputFormat resolves "auto" from the location's extension, ignoring a
// trailing compression suffix.
func inputFormat(from, location string) string {
	if from != "auto" && from != "" {
		return from
	}
	name := strings.ToLower(location)
	for _, ext := range []string{".zst", ".lz4", ".gz"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func parseDocument(data []byte, format string) (bencode.Value, error) {
	if format == "yaml" {
		return transcode.FromYAML(data)
	}
	return transcode.FromJSON(data)
}
