package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/cmrp/pkg/infrastructure/sessions"
	httpserver "github.com/vsinha/cmrp/pkg/interfaces/http"
)

// ServeConfig holds flags for the serve command
type ServeConfig struct {
	Addr      string
	StaticDir string
}

// ServeCommand runs the web service until interrupted
type ServeCommand struct {
	config ServeConfig
	rt     *Runtime
}

// NewServeCommand creates a serve command over a wired runtime
func NewServeCommand(config ServeConfig, rt *Runtime) *ServeCommand {
	return &ServeCommand{config: config, rt: rt}
}

// Execute serves HTTP and sweeps expired sessions until ctx is cancelled
// or either task fails
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.rt.Config
	addr := c.config.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	staticDir := c.config.StaticDir
	if staticDir == "" {
		staticDir = cfg.Server.StaticDir
	}

	srv := httpserver.New(httpserver.Options{
		Services:        c.rt.Services,
		StaticDir:       staticDir,
		CookieName:      cfg.Sessions.CookieName,
		SecureCookie:    cfg.Sessions.SecureCookie,
		ReadTimeout:     cfg.GetReadTimeout(),
		WriteTimeout:    cfg.GetWriteTimeout(),
		ShutdownTimeout: cfg.GetShutdownTimeout(),
		Logger:          c.rt.Logger,
	})
	janitor := sessions.NewJanitor(c.rt.Sessions, cfg.GetCleanupInterval(), c.rt.Logger.Named("sessions"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		if _, err := janitor.Sweep(gctx); err != nil {
			c.rt.Logger.Warn("initial session sweep failed", zap.Error(err))
		}
		return janitor.Run(gctx)
	})

	err := g.Wait()
	c.rt.Logger.Info("server stopped")
	return err
}

func newServeCommand(a *app) *cobra.Command {
	var config ServeConfig
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			return NewServeCommand(config, rt).Execute(ctx)
		},
	}
	cmd.Flags().StringVar(&config.Addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&config.StaticDir, "static", "", "directory holding the dashboard pages")
	return cmd
}
