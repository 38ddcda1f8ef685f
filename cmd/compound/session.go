package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/compound"
	"github.com/hupe1980/compound/codec"
	"github.com/hupe1980/compound/internal/varheap"
	"github.com/spf13/cobra"
)

// session bundles the registry and the variable-length heap of one
// invocation.
type session struct {
	reg  *compound.Registry
	heap *varheap.Heap
}

func newSession() (*session, error) {
	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", codecName)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	heap := varheap.New()
	return &session{
		reg: compound.NewRegistry(
			compound.WithLogger(compound.NewTextLogger(os.Stderr, level)),
			compound.WithVarLenStore(heap),
			compound.WithLayoutCodec(c),
		),
		heap: heap,
	}, nil
}

// load imports the layout stored at path.
func (s *session) load(ctx context.Context, path string) (*codec.Record, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	rec, err := s.reg.ImportLayout(ctx, data, compound.Strict)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	return rec, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readRecords parses a JSON object or an array of objects. Numbers are
// normalized to int64 when integral and float64 otherwise.
func readRecords(data []byte) ([]map[string]any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}

	switch x := normalize(v).(type) {
	case map[string]any:
		return []map[string]any{x}, nil
	case []any:
		out := make([]map[string]any, 0, len(x))
		for i, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d: expected object, got %T", i, e)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected object or array of objects, got %T", v)
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case gojson.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	}
	return v
}

// writeJSON prints v on one line, or indented for layout documents.
// Strings are not HTML-escaped.
func writeJSON(cmd *cobra.Command, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = gojson.MarshalIndent(v, "", "  ")
	} else {
		data, err = codec.GoJSON{}.Append(nil, v)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
