package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"usagetrail/internal/platform/event"
)

const (
	PluginMapKey      = "source"
	serviceName       = "usagetrail.source.v1.EventSource"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodListEvents  = "/" + serviceName + "/ListEvents"

	// EnvSourcePath carries the configured source path to the plugin process.
	EnvSourcePath = "USAGETRAIL_SOURCE_PATH"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "USAGETRAIL_SOURCE_PLUGIN",
	MagicCookieValue: "usagetrail",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ListEventsRequest struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

type ListEventsResponse struct {
	Events []event.Wire `json:"events"`
	// Skipped counts records the plugin itself could not decode.
	Skipped int `json:"skipped"`
}

type EventSourceServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ListEvents(ctx context.Context, in *ListEventsRequest) (*ListEventsResponse, error)
}

type EventSourceClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ListEvents(ctx context.Context, in *ListEventsRequest) (*ListEventsResponse, error)
}

type eventSourceClient struct {
	conn *grpc.ClientConn
}

func NewEventSourceClient(conn *grpc.ClientConn) EventSourceClient {
	return &eventSourceClient{conn: conn}
}

func (c *eventSourceClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *eventSourceClient) ListEvents(ctx context.Context, in *ListEventsRequest) (*ListEventsResponse, error) {
	out := &ListEventsResponse{}
	if err := c.conn.Invoke(ctx, methodListEvents, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterEventSourceServer(server grpc.ServiceRegistrar, impl EventSourceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*EventSourceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ListEvents",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ListEventsRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ListEvents(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListEvents}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ListEventsRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ListEvents(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "usagetrail/source/v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl EventSourceServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterEventSourceServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewEventSourceClient(conn), nil
}

func PluginMap(impl EventSourceServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
