package out

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	sourcerpc "usagetrail/internal/modules/source/adapter/out/rpc"
	"usagetrail/internal/modules/source/domain"
	sourceout "usagetrail/internal/modules/source/port/out"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 30 * time.Second
)

// PluginSource reads events from an external source plugin. Each call starts
// the plugin process and kills it when the call returns.
type PluginSource struct {
	binary     string
	sourcePath string
	logger     hclog.Logger
}

func NewPluginSource(binary, sourcePath string, logger hclog.Logger) sourceout.EventReader {
	return &PluginSource{binary: binary, sourcePath: sourcePath, logger: logging.OrNull(logger)}
}

func (h *PluginSource) Describe(ctx context.Context) (domain.Metadata, error) {
	client, closeFn, err := h.connect(defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Kind: domain.KindPlugin, Name: meta.Name, Version: meta.Version}, nil
}

func (h *PluginSource) ReadEvents(ctx context.Context, window domain.Window) (domain.Batch, error) {
	client, closeFn, err := h.connect(defaultStartTimeout)
	if err != nil {
		return domain.Batch{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.ListEvents(callCtx, &sourcerpc.ListEventsRequest{
		StartMs: window.Start.UnixMilli(),
		EndMs:   window.End.UnixMilli(),
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Batch{}, fmt.Errorf("list events: plugin timed out after %s", defaultCallTimeout)
		}
		return domain.Batch{}, fmt.Errorf("list events: %w", err)
	}
	batch := domain.Batch{Events: make([]event.RawEvent, 0, len(response.Events)), Skipped: response.Skipped}
	for _, w := range response.Events {
		ev, err := w.RawEvent()
		if err != nil {
			h.logger.Debug("skip plugin event", "package", w.Package, "error", err)
			batch.Skipped++
			continue
		}
		batch.Events = append(batch.Events, ev)
	}
	return batch, nil
}

func (h *PluginSource) connect(startTimeout time.Duration) (sourcerpc.EventSourceClient, func(), error) {
	cmd := exec.Command(h.binary)
	cmd.Env = append(os.Environ(), sourcerpc.EnvSourcePath+"="+h.sourcePath)
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  sourcerpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          sourcerpc.PluginMap(nil),
		Cmd:              cmd,
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.logger.Named("plugin"),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(sourcerpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(sourcerpc.EventSourceClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *PluginSource) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
