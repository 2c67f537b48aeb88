// Command vmapd runs a calibration session headless and exposes it over
// HTTP.
//
// The REST API (package remote) edits surfaces and renders frames, the
// websocket monitor pushes snapshots to viewers, and the sqlite library
// keeps named layouts. All settings come from VMAP_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/internal/config"
	"github.com/gogpu/vmap/monitor"
	"github.com/gogpu/vmap/remote"
	"github.com/gogpu/vmap/session"
	"github.com/gogpu/vmap/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vmapd: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	vmap.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("vmapd: exiting", "err", err)
		os.Exit(1)
	}
}

func newMapper(cfg *config.Config) *vmap.Mapper {
	opts := []vmap.MapperOption{
		vmap.WithLayoutDir(cfg.LayoutDir),
		vmap.WithLayoutFile(cfg.LayoutFile),
		vmap.WithSnapDistance(cfg.SnapDistance),
		vmap.WithSelectionRadius(cfg.SelectionRadius),
		vmap.WithImageLoader(vmap.NewFileImageLoader(cfg.ImageDir)),
	}
	if cfg.Background != "" {
		opts = append(opts, vmap.WithBackground(cfg.Background))
	}
	m := vmap.NewMapper(cfg.Width, cfg.Height, opts...)

	res, err := m.Load(cfg.LayoutFile)
	switch {
	case errors.Is(err, vmap.ErrLayoutMissing):
		vmap.Logger().Info("vmapd: starting with an empty layout", "file", cfg.LayoutFile)
	case err != nil:
		vmap.Logger().Warn("vmapd: initial layout not loaded", "file", cfg.LayoutFile, "err", err)
	case res.Skipped > 0:
		vmap.Logger().Warn("vmapd: skipped malformed surfaces", "skipped", res.Skipped)
	}
	return m
}

func run(ctx context.Context, cfg *config.Config) error {
	log := vmap.Logger()
	sess := session.New(newMapper(cfg), cfg.TickInterval)

	var lib *store.Store
	if cfg.DBPath != "" {
		var err error
		if lib, err = store.Open(ctx, cfg.DBPath); err != nil {
			return err
		}
		defer lib.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		errc = make(chan error, 4)
	)
	defer wg.Wait()
	spawn := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	spawn("session", func() error { return sess.Run(ctx) })

	if cfg.RemoteAddr != "" {
		opts := []remote.Option{remote.WithAccessLog()}
		if lib != nil {
			opts = append(opts, remote.WithStore(lib))
		}
		api := remote.New(sess, opts...)
		spawn("remote", func() error { return api.Listen(cfg.RemoteAddr) })
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			_ = api.Shutdown(sctx)
		}()
		log.Info("vmapd: remote listening", "addr", cfg.RemoteAddr)
	}

	if cfg.MonitorAddr != "" {
		hub := monitor.NewHub(cfg.AllowedOrigins)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: cfg.MonitorAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		spawn("monitor", srv.ListenAndServe)
		spawn("broadcast", func() error { return hub.Watch(ctx, sess, cfg.BroadcastInterval) })
		defer func() {
			hub.Close()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
		log.Info("vmapd: monitor listening", "addr", cfg.MonitorAddr)
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info("vmapd: shutting down")
	case err = <-errc:
	}
	cancel()
	return err
}
