package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/transcode"
)

type RenderCLI struct {
	Template string `arg:"" help:"Template location, or the template itself with --inline"`
	Input    string `arg:"" optional:"" default:"-" help:"Input location: file, s3://, http(s):// or - for stdin"`
	Output   string `short:"o" default:"-" help:"Output location: file, s3:// or - for stdout"`
	Inline   bool   `short:"e" help:"Treat TEMPLATE as template text"`
}

func (c *RenderCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec, locs *locations) error {
	tmpl := c.Template
	if !c.Inline {
		data, err := locs.readAll(ctx, c.Template)
		if err != nil {
			return err
		}
		tmpl = string(data)
	}

	data, err := locs.readAll(ctx, c.Input)
	if err != nil {
		return err
	}
	v, err := bencode.Unmarshal(data, codec.DecoderOptions()...)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}

	rendered, err := transcode.Render(tmpl, v)
	if err != nil {
		return err
	}

	out, err := locs.create(ctx, c.Output)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, rendered); err != nil {
		out.Close()
		return err
	}
	logger.Debug("rendered template", "input", c.Input, "bytes", len(rendered))
	return out.Close()
}
