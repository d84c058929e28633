package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler serves /metrics from reg (the default gatherer when nil) and a
// /healthz probe.
func Handler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var h http.Handler
	if reg != nil {
		h = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		})
	} else {
		h = promhttp.Handler()
	}
	mux.Handle("/metrics", h)
	return mux
}

// Serve starts the metrics server in the background and shuts it down when
// ctx is done. An empty addr disables it. The returned channel is closed
// once the server has stopped.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if addr == "" {
		log.Info("metrics disabled: empty addr")
		close(done)
		return done
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(reg),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		defer close(done)
		log.Info("metrics server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown error", zap.Error(err))
		} else {
			log.Info("metrics server stopped")
		}
	}()
	return done
}
