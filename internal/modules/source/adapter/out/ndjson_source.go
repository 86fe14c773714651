package out

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"usagetrail/internal/modules/source/domain"
	sourceout "usagetrail/internal/modules/source/port/out"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/event"
)

const maxLineBytes = 1 << 20

// DecodeStream reads NDJSON events from r and hands each valid one to fn.
// Blank lines are ignored; lines that do not decode are counted as skipped.
func DecodeStream(ctx context.Context, r io.Reader, fn func(event.RawEvent)) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	skipped := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := event.DecodeLine(line)
		if err != nil {
			skipped++
			continue
		}
		fn(ev)
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("scan events: %w", err)
	}
	return skipped, nil
}

// NDJSONSource reads events from a newline-delimited JSON export file.
type NDJSONSource struct {
	path string
}

func NewNDJSONSource(path string) *NDJSONSource {
	return &NDJSONSource{path: path}
}

var (
	_ sourceout.EventReader = (*NDJSONSource)(nil)
	_ sourceout.FileDecoder = (*NDJSONSource)(nil)
)

func (s *NDJSONSource) Describe(context.Context) (domain.Metadata, error) {
	if _, err := os.Stat(s.path); err != nil {
		return domain.Metadata{}, fmt.Errorf("stat source file: %w", err)
	}
	return domain.Metadata{Kind: domain.KindNDJSON, Name: filepath.Base(s.path)}, nil
}

func (s *NDJSONSource) ReadEvents(ctx context.Context, window domain.Window) (domain.Batch, error) {
	batch, err := s.DecodeFile(ctx, s.path)
	if err != nil {
		return domain.Batch{}, err
	}
	kept := batch.Events[:0]
	for _, ev := range batch.Events {
		if window.Contains(ev.TimestampMs) {
			kept = append(kept, ev)
		}
	}
	batch.Events = kept
	return batch, nil
}

func (s *NDJSONSource) DecodeFile(ctx context.Context, path string) (domain.Batch, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Batch{}, fmt.Errorf("%w: event file %s", apperrors.ErrNotFound, path)
		}
		return domain.Batch{}, fmt.Errorf("open event file: %w", err)
	}
	defer file.Close()

	batch := domain.Batch{}
	skipped, err := DecodeStream(ctx, file, func(ev event.RawEvent) {
		batch.Events = append(batch.Events, ev)
	})
	batch.Skipped = skipped
	if err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}
