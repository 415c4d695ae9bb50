package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/epithet-ssh/bencode/pkg/config"
	"golang.org/x/sync/errgroup"
)

type ValidateCLI struct {
	Inputs []string `arg:"" name:"input" help:"Input locations: files, s3://, http(s):// or - for stdin"`
	Jobs   int      `short:"j" default:"4" help:"Number of inputs checked concurrently"`
}

func (c *ValidateCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec, locs *locations) error {
	results := validateAll(ctx, locs, c.Inputs, c.Jobs, codec)
	return reportValidation(os.Stdout, logger, c.Inputs, results)
}

// validateAll checks every input and returns one result per input, in
// order. A nil result means the input is valid.
func validateAll(ctx context.Context, locs *locations, inputs []string, jobs int, codec config.Codec) []error {
	results := make([]error, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, input := range inputs {
		g.Go(func() error {
			results[i] = validateOne(ctx, locs, input, codec)
			// Cancellation is the only failure that stops the group
			return ctx.Err()
		})
	}
	g.Wait()
	return results
}

func validateOne(ctx context.Context, locs *locations, location string, codec config.Codec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := locs.open(ctx, location)
	if err != nil {
		return err
	}
	defer in.Close()
	return validateStream(in, codec)
}

// validateStream requires exactly one value followed by end of input.
func validateStream(r io.Reader, codec config.Codec) error {
	dec := bencode.NewDecoder(bufio.NewReader(r), codec.DecoderOptions()...)
	if _, err := dec.Decode(); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty input")
		}
		return err
	}

	end := dec.Offset()
	if _, err := dec.Decode(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing data at offset %d", end)
	}
	return nil
}

func reportValidation(w io.Writer, logger *slog.Logger, inputs []string, results []error) error {
	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", inputs[i], err)
			logger.Debug("invalid input", "input", inputs[i], "error", err)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", inputs[i])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs invalid", failed, len(inputs))
	}
	return nil
}
