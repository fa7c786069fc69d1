package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/httpapi"
	"github.com/rsilvagit/jobboard/internal/importer"
	"github.com/rsilvagit/jobboard/internal/metrics"
)

func buildServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				e.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(reg)

	st, err := openStack(ctx, e, m)
	if err != nil {
		return err
	}
	defer st.Close()

	if e.cfg.Importer.Schedule != "" {
		im, err := newImporter(e, st.svc)
		if err != nil {
			return err
		}
		sched := importer.NewScheduler(im, e.cfg.Importer.Schedule, e.cfg.Importer.Timeout, e.log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr: e.cfg.HTTP.Addr,
		Handler: httpapi.NewRouter(httpapi.Dependencies{
			Service:     st.svc,
			Logger:      e.log,
			Metrics:     m,
			Limiter:     httpapi.NewRateLimiter(e.cfg.RateLimit.Requests, e.cfg.RateLimit.Window),
			TrustProxy:  e.cfg.RateLimit.TrustProxy,
			CacheMaxAge: e.cfg.Cache.HTTPMaxAge,
			BaseURL:     e.cfg.Site.BaseURL,
			AdminToken:  e.cfg.Admin.Token,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if e.cfg.Admin.Token == "" {
		e.log.Warn("admin.token not set, cache flush endpoint is open")
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "cli: http server")
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "cli: shutdown")
	}
	return nil
}
