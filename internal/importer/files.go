package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownFormat is returned for files that are neither CSV nor OFX/QFX.
var ErrUnknownFormat = errors.New("unknown import format")

// Format is an import file type.
type Format string

// Supported formats.
const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
)

// DetectFormat picks a format from the file extension. An explicit
// non-empty override wins.
func DetectFormat(path, override string) (Format, error) {
	if override != "" {
		switch f := Format(strings.ToLower(override)); f {
		case FormatCSV, FormatOFX:
			return f, nil
		default:
			return "", fmt.Errorf("%w: %s", ErrUnknownFormat, override)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseFiles parses every path concurrently and returns the records in path
// order. The first failure cancels the rest.
func ParseFiles(ctx context.Context, paths []string, format string, opts CSVOptions) ([]Record, error) {
	results := make([][]Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := parseFile(path, format, opts)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Record
	for _, recs := range results {
		all = append(all, recs...)
	}
	return all, nil
}

func parseFile(path, format string, opts CSVOptions) ([]Record, error) {
	f, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // import paths are given by the local user
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = fh.Close() }()

	name := filepath.Base(path)
	switch f {
	case FormatOFX:
		return ParseOFX(fh, name)
	default:
		o := opts
		o.Name = name
		if o.Comma == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			o.Comma = '\t'
		}
		return ParseCSV(fh, o)
	}
}
