package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/watch"
	"github.com/kingrea/companions/plugins"
)

func runWatch(cmd *cobra.Command, _ []string) (err error) {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := s.cfg.TenantsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure tenants dir: %w", err)
	}
	results, err := s.runtime.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, res := range results {
		writeResult(cmd.OutOrStdout(), res)
	}

	addr := s.cfg.Project.Metrics.Addr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		srv := serveMetrics(addr, s)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := watch.New(dir, watch.WithLogger(s.log), watch.WithFilter(plugins.IsManifestFile))
	if err != nil {
		return err
	}
	defer w.Close()
	s.log.Info("watching tenants", zap.String("dir", dir))

	err = w.Run(ctx, func(ev watch.Event) {
		switch ev.Op {
		case watch.OpRemoved:
			if _, forgetErr := s.runtime.Forget(ev.Path); forgetErr != nil {
				s.log.Error("unload tenant failed", zap.String("path", ev.Path), zap.Error(forgetErr))
			}
		default:
			res, reloadErr := s.runtime.Reload(ev.Path)
			if reloadErr != nil {
				s.log.Error("reload tenant failed", zap.String("path", ev.Path), zap.Error(reloadErr))
				return
			}
			writeResult(cmd.OutOrStdout(), res)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(addr string, s *session) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	s.log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
