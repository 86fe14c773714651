package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"usagetrail/internal/modules/source/domain"
	sourceout "usagetrail/internal/modules/source/port/out"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/metrics"
)

const ingestChunk = 1000

type IngestResult struct {
	Read     int
	Appended int
	Skipped  int
}

type SourceService struct {
	reader   sourceout.EventReader
	log      sourceout.EventLog
	decoder  sourceout.FileDecoder
	follower sourceout.Follower
	location *time.Location
	logger   hclog.Logger
	metrics  *metrics.Metrics
}

type Options struct {
	Decoder  sourceout.FileDecoder
	Follower sourceout.Follower
	Location *time.Location
	Logger   hclog.Logger
	Metrics  *metrics.Metrics
}

// NewSourceService reads through reader and appends into log. They are the
// same store when the configured source is the local event log.
func NewSourceService(reader sourceout.EventReader, log sourceout.EventLog, opts Options) *SourceService {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &SourceService{
		reader:   reader,
		log:      log,
		decoder:  opts.Decoder,
		follower: opts.Follower,
		location: loc,
		logger:   logging.OrNull(opts.Logger).Named("source"),
		metrics:  m,
	}
}

// Events returns the window's events in time order with local dates filled.
func (s *SourceService) Events(ctx context.Context, window domain.Window) (domain.Batch, error) {
	if s.reader == nil {
		return domain.Batch{}, apperrors.ErrSourceNotFound
	}
	batch, err := s.reader.ReadEvents(ctx, window)
	if err != nil {
		return domain.Batch{}, err
	}
	if batch.Skipped > 0 {
		s.metrics.EventsSkipped.WithLabelValues("decode").Add(float64(batch.Skipped))
		s.logger.Warn("skipped malformed events", "count", batch.Skipped,
			"start", window.Start.Format(time.RFC3339), "end", window.End.Format(time.RFC3339))
	}
	batch.Events = domain.Normalize(batch.Events, window, s.location)
	return batch, nil
}

// Ingest appends every decodable event of an NDJSON file to the event log.
// Events already in the log are not appended again.
func (s *SourceService) Ingest(ctx context.Context, path string) (IngestResult, error) {
	if s.decoder == nil || s.log == nil {
		return IngestResult{}, apperrors.ErrSourceNotFound
	}
	batch, err := s.decoder.DecodeFile(ctx, path)
	if err != nil {
		return IngestResult{}, err
	}
	result := IngestResult{Read: len(batch.Events), Skipped: batch.Skipped}
	if batch.Skipped > 0 {
		s.metrics.EventsSkipped.WithLabelValues("decode").Add(float64(batch.Skipped))
	}
	for start := 0; start < len(batch.Events); start += ingestChunk {
		end := min(start+ingestChunk, len(batch.Events))
		n, err := s.log.Append(ctx, batch.Events[start:end])
		if err != nil {
			return result, fmt.Errorf("append events %d..%d: %w", start, end, err)
		}
		result.Appended += n
	}
	s.logger.Info("ingested events", "path", path, "read", result.Read, "appended", result.Appended, "skipped", result.Skipped)
	return result, nil
}

func (s *SourceService) Describe(ctx context.Context) (domain.Metadata, error) {
	if s.reader == nil {
		return domain.Metadata{}, apperrors.ErrSourceNotFound
	}
	return s.reader.Describe(ctx)
}

// Follow streams events appended to path. Followed events are also written
// to the event log.
func (s *SourceService) Follow(ctx context.Context, path string, fromStart bool) (<-chan event.RawEvent, error) {
	if s.follower == nil {
		return nil, apperrors.ErrSourceNotFound
	}
	in, err := s.follower.Follow(ctx, path, fromStart)
	if err != nil || s.log == nil {
		return in, err
	}
	out := make(chan event.RawEvent)
	go s.record(ctx, in, out)
	return out, nil
}

// record appends each followed event to the event log before passing it on,
// so a later reprocess of the day sees what capture saw.
func (s *SourceService) record(ctx context.Context, in <-chan event.RawEvent, out chan<- event.RawEvent) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			if _, err := s.log.Append(ctx, []event.RawEvent{ev}); err != nil {
				s.metrics.EventsSkipped.WithLabelValues("append").Inc()
				s.logger.Warn("failed to append followed event", "package", ev.PackageName, "ts", ev.TimestampMs, "error", err)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
