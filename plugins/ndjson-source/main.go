package main

import (
	"fmt"
	"os"

	sourceout "usagetrail/internal/modules/source/adapter/out"
	sourcerpc "usagetrail/internal/modules/source/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const version = "1.0.0"

func main() {
	path := os.Getenv(sourcerpc.EnvSourcePath)
	if path == "" {
		fmt.Fprintf(os.Stderr, "%s is required\n", sourcerpc.EnvSourcePath)
		os.Exit(1)
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: sourcerpc.HandshakeConfig,
		Plugins:         sourcerpc.PluginMap(sourcerpc.NewServer(sourceout.NewNDJSONSource(path), "ndjson-source", version)),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
