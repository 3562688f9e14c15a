package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/admin"
	"github.com/sagarc03/wally/config"
	"github.com/sagarc03/wally/database"
	"github.com/sagarc03/wally/filesystem"
	"github.com/sagarc03/wally/keybackend"
	"github.com/sagarc03/wally/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the origin server",
	Long: `Start the wally origin server on the configured port, serving the
root directory and, when enabled, the comment wall and the admin API.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "origin server port (env: WALLY_SERVER_PORT)")
	serveCmd.Flags().String("root", ".", "directory to serve (env: WALLY_SERVER_ROOT)")
	serveCmd.Flags().Bool("wall", true, "serve the comment wall (env: WALLY_WALL_ENABLED)")
	serveCmd.Flags().Int("admin-port", 8081, "admin API port, used when admin.enabled is set")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo wally.CommentRepo
	if cfg.Wall.Enabled || cfg.Admin.Enabled {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		repo = db.GetRepo()
		slog.Info("connected to database", "type", cfg.Database.Type, "table", cfg.Database.Tables.Comments)
	}

	root, err := os.OpenRoot(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	defer func() { _ = root.Close() }()

	resolver, err := filesystem.NewResolver(root, filesystem.Options{Index: cfg.Server.Index})
	if err != nil {
		return fmt.Errorf("create resolver: %w", err)
	}

	service, err := wally.NewService(resolver, repo, wally.ServiceConfig{
		ServerInfo:  cfg.Server.Name,
		WallEnabled: cfg.Wall.Enabled,
		WallPath:    cfg.Wall.Path,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		if adminSrv, err = newAdminServer(cfg, service); err != nil {
			return err
		}
	}

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := server.New(service, server.Config{
		IdleTimeout: time.Duration(cfg.Server.IdleTimeout) * time.Second,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", ln.Addr().String(), "root", cfg.Server.Root, "wall", cfg.Wall.Enabled)
		return srv.Serve(gctx, ln)
	})

	if adminSrv != nil {
		g.Go(func() error {
			slog.Info("starting admin api", "addr", adminSrv.Addr)
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := adminSrv.Shutdown(shutdownCtx); err != nil {
				slog.Error("admin shutdown error", "err", err)
			}
			return nil
		})
	}

	err = g.Wait()
	slog.Info("server stopped")
	return err
}

func newAdminServer(cfg *config.Config, service *wally.Service) (*http.Server, error) {
	store, err := keybackend.NewSecretStore(cfg.Admin.Keys)
	if err != nil {
		return nil, fmt.Errorf("load admin keys: %w", err)
	}

	handlerCfg := admin.HandlerConfig{CORS: cfg.Admin.CORS}
	if store.Len() > 0 {
		handlerCfg.Verifier = store
	} else {
		slog.Warn("admin api has no keys configured, running without authentication")
	}

	handler := admin.NewHandler(&handlerCfg, service)

	return &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Admin.Port)),
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}, nil
}
