package rpc

import (
	"context"
	"time"

	"usagetrail/internal/modules/source/domain"
	sourceout "usagetrail/internal/modules/source/port/out"
	"usagetrail/internal/platform/event"
)

// Server exposes an EventReader over the source plugin protocol. Plugin
// binaries serve it with plugin.Serve.
type Server struct {
	reader  sourceout.EventReader
	name    string
	version string
}

func NewServer(reader sourceout.EventReader, name, version string) *Server {
	return &Server{reader: reader, name: name, version: version}
}

var _ EventSourceServer = (*Server)(nil)

func (s *Server) GetMetadata(ctx context.Context, _ *Empty) (*Metadata, error) {
	if _, err := s.reader.Describe(ctx); err != nil {
		return nil, err
	}
	return &Metadata{Name: s.name, Version: s.version}, nil
}

func (s *Server) ListEvents(ctx context.Context, in *ListEventsRequest) (*ListEventsResponse, error) {
	batch, err := s.reader.ReadEvents(ctx, domain.Window{Start: time.UnixMilli(in.StartMs), End: time.UnixMilli(in.EndMs)})
	if err != nil {
		return nil, err
	}
	out := &ListEventsResponse{Events: make([]event.Wire, 0, len(batch.Events)), Skipped: batch.Skipped}
	for _, ev := range batch.Events {
		out.Events = append(out.Events, event.ToWire(ev))
	}
	return out, nil
}
