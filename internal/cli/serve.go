package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/tada/internal/backend"
	"github.com/idilsaglam/tada/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local database over HTTP and WebSocket",
		Args:  exactArgs(0, "tada serve [--addr host:port] [--token t]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if token == "" {
				token = app.cfg.Server.Token
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := backend.Open(ctx, app.cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(backend.NewResolver(store, app.log), server.WithLogger(app.log), server.WithToken(token))
			return serve(ctx, app, addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config, localhost:8080)")
	cmd.Flags().StringVar(&token, "token", envOr("TADA_SERVER_TOKEN", ""), "Bearer token clients must send")
	return cmd
}

// serve runs h on addr until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, app *App, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	app.log.Info("listening", "addr", ln.Addr().String(), "database", app.cfg.Database)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
