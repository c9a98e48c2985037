package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"

	"warmtest/internal/domain"
	"warmtest/internal/execution"
	"warmtest/internal/protocol"
	"warmtest/internal/storage"
)

// Gateway exposes an Executor as a JSON-RPC service on a Unix socket
type Gateway struct {
	socket string
	exec   execution.Executor
	log    log.Logger

	metricsAddr    string
	metricsHandler http.Handler

	state storage.Storage
	info  domain.DaemonInfo

	ready chan struct{}
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithMetrics serves h on addr under /metrics while the gateway runs
func WithMetrics(addr string, h http.Handler) GatewayOption {
	return func(g *Gateway) {
		g.metricsAddr = addr
		g.metricsHandler = h
	}
}

// WithState records info in s while the gateway listens
func WithState(s storage.Storage, info domain.DaemonInfo) GatewayOption {
	return func(g *Gateway) {
		g.state = s
		g.info = info
	}
}

// NewGateway creates a Gateway listening on socket
func NewGateway(socket string, exec execution.Executor, logger log.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		socket: socket,
		exec:   exec,
		log:    logger,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.info.Socket = socket
	return g
}

// Ready is closed once the socket accepts connections
func (g *Gateway) Ready() <-chan struct{} {
	return g.ready
}

// Serve listens until ctx is cancelled. The socket file is removed on return.
func (g *Gateway) Serve(ctx context.Context) error {
	if err := cleanStaleSocket(g.socket); err != nil {
		return err
	}

	srv := rpc.NewServer()
	svc := &Service{exec: g.exec, info: func() domain.DaemonInfo { return g.info }}
	if err := srv.RegisterName(protocol.ServiceName, svc); err != nil {
		return fmt.Errorf("register rpc service: %w", err)
	}

	ln, err := net.Listen("unix", g.socket)
	if err != nil {
		srv.Stop()
		return fmt.Errorf("listen on %s: %w", g.socket, err)
	}
	defer func() {
		if err := os.Remove(g.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
			g.log.Warn("Cannot remove socket", "socket", g.socket, "err", err)
		}
	}()

	if g.state != nil {
		if err := g.state.Save(g.info); err != nil {
			_ = ln.Close()
			srv.Stop()
			return err
		}
		defer func() {
			if err := g.state.Remove(); err != nil {
				g.log.Warn("Cannot remove state file", "err", err)
			}
		}()
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := srv.ServeListener(ln)
		if egctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("rpc server stopped: %w", err)
	})

	if g.metricsAddr != "" && g.metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", g.metricsHandler)
		hs := &http.Server{Addr: g.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		eg.Go(func() error {
			g.log.Info("Serving metrics", "addr", g.metricsAddr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		<-egctx.Done()
		_ = ln.Close()
		srv.Stop()
		return nil
	})

	g.log.Info("Test server listening", "socket", g.socket)
	close(g.ready)

	err = eg.Wait()
	g.log.Info("Test server stopped", "socket", g.socket)
	return err
}
