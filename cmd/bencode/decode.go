package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"github.com/epithet-ssh/bencode/pkg/transcode"
)

type DecodeCLI struct {
	Input  string `arg:"" optional:"" default:"-" help:"Input location: file, s3://, http(s):// or - for stdin"`
	Output string `short:"o" default:"-" help:"Output location: file, s3:// or - for stdout"`
	Format string `short:"f" enum:"json,yaml,cbor,text,bencode" default:"json" help:"Output format: json, yaml, cbor, text or bencode"`
	Indent string `default:"  " help:"JSON indent; empty for one line"`
	All    bool   `help:"Decode every value of a concatenated stream"`
}

func (c *DecodeCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec, locs *locations) error {
	in, err := locs.open(ctx, c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := locs.create(ctx, c.Output)
	if err != nil {
		return err
	}

	count, err := c.decodeStream(in, out, codec)
	if err != nil {
		out.Close()
		return err
	}
	logger.Info("decoded", "input", c.Input, "values", count, "format", c.Format)
	return out.Close()
}

func (c *DecodeCLI) decodeStream(in io.Reader, out io.Writer, codec config.Codec) (int, error) {
	dec := bencode.NewDecoder(bufio.NewReader(in), codec.DecoderOptions()...)

	count := 0
	for {
		start := dec.Offset()
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			if count == 0 {
				return 0, fmt.Errorf("%s: no value in input", c.Input)
			}
			return count, nil
		}
		if count > 0 && !c.All {
			return count, fmt.Errorf("%s: trailing data at offset %d (use --all for streams)", c.Input, start)
		}
		if err != nil {
			return count, fmt.Errorf("%s: %w", c.Input, err)
		}

		if err := writeValue(out, v, c.Format, c.Indent, count > 0, codec); err != nil {
			return count, err
		}
		count++
	}
}

// writeValue renders v in format. Later values of a YAML stream get a
// document separator.
func writeValue(w io.Writer, v bencode.Value, format, indent string, more bool, codec config.Codec) error {
	switch format {
	case "json":
		return transcode.WriteJSON(w, v, indent)
	case "yaml":
		if more {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		return transcode.WriteYAML(w, v)
	case "cbor":
		data, err := transcode.MarshalCBOR(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text":
		_, err := fmt.Fprintln(w, v)
		return err
	case "bencode":
		return bencode.NewEncoder(w, codec.EncoderOptions()...).Encode(v)
	}
	return fmt.Errorf("unknown format %q", format)
}
