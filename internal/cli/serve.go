package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/http"
	mcpadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the HTTP API for a.
func NewHTTPHandler(ctx context.Context, a *Assistant) (http.Handler, error) {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(a.Logger),
		httpadapter.WithStreams(a.Streams),
		httpadapter.WithMaxInputSize(a.Config.MaxInputSize),
	}
	if a.Registry != nil {
		opts = append(opts, httpadapter.WithMetricsHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
	}
	return httpadapter.NewHandler(ctx, httpadapter.Service{
		Conversation: a.Router,
		Catalog:      a.Catalog,
		Ledger:       a.Router.Ledger(),
		Sessions:     a.Sessions,
		Memory:       a.Memory,
	}, opts...)
}

// Serve runs the HTTP API on ln and the catalog watcher until ctx is done,
// then shuts the server down gracefully.
func Serve(ctx context.Context, a *Assistant, ln net.Listener) error {
	handler, err := NewHTTPHandler(ctx, a)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("Barista server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.WatchCatalog(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	})
	return g.Wait()
}

// NewMCPServer builds the MCP surface for a.
func NewMCPServer(a *Assistant) *mcpadapter.Server {
	return mcpadapter.NewServer(mcpadapter.Service{
		Conversation: a.Router,
		Catalog:      a.Catalog,
		Ledger:       a.Router.Ledger(),
		Sessions:     a.Sessions,
		Memory:       a.Memory,
	}, mcpadapter.WithLogger(a.Logger), mcpadapter.WithMaxInputSize(a.Config.MaxInputSize))
}

// ServeMCP runs the MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, a *Assistant, transport string, port int) error {
	srv := NewMCPServer(a)
	switch transport {
	case "stdio":
		a.Logger.Info("Starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
	}
}
