package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/felixgeelhaar/mathdrill/internal/mcp"
)

// cmdMCP starts the MCP server for editor integration
func cmdMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	addr := fs.String("http", "", "serve over HTTP on this address instead of stdio")
	_ = fs.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, svc, backend, err := openLocal(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Drill:   svc,
		Store:   backend.Store,
		Version: Version,
	})

	if *addr != "" {
		fmt.Fprintf(os.Stderr, "MCP server listening on %s\n", *addr)
		return srv.ServeHTTP(ctx, *addr)
	}
	return srv.ServeStdio(ctx)
}
