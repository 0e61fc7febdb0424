// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// The calendar service indexes, relays and notifies calendar event changes.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-calendar-service/cmd/calendar-service/service"
	logging "github.com/linuxfoundation/lfx-v2-calendar-service/pkg/log"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/utils"
)

const (
	defaultPort     = "8080"
	gracefulTimeout = 25 * time.Second
)

func init() {
	logging.InitStructureLogConfig()
}

func main() {
	var (
		port = flag.String("p", defaultPort, "health server listen port")
		bind = flag.String("bind", "*", "interface to bind on")
	)
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" && *port == defaultPort {
		*port = envPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error setting up OpenTelemetry SDK", "error", err)
		os.Exit(1)
	}
	defer func() {
		if shutdownErr := otelShutdown(context.Background()); shutdownErr != nil {
			slog.ErrorContext(ctx, "error shutting down OpenTelemetry SDK", "error", shutdownErr)
		}
	}()

	slog.InfoContext(ctx, "starting calendar service", "port", *port)

	var wg sync.WaitGroup
	alarms := newAlarmService(ctx)

	handlers := []struct {
		name  string
		start func() error
	}{
		{"event sync", func() error { return handleEventSync(ctx, &wg, alarms) }},
		{"notifications", func() error { return handleNotifications(ctx, &wg) }},
		{"participation", func() error { return handleParticipation(ctx, &wg) }},
		{"alarms", func() error { return handleAlarms(ctx, &wg, alarms) }},
		{"health server", func() error { return handleHealthServer(ctx, &wg, *bind, *port) }},
	}
	for _, h := range handlers {
		if errStart := h.start(); errStart != nil {
			slog.ErrorContext(ctx, "failed to start handler", "handler", h.name, "error", errStart)
			stop()
			os.Exit(1)
		}
	}

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown signal received, draining handlers")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(gracefulTimeout):
		slog.WarnContext(ctx, "graceful shutdown timed out")
	}

	if errClose := service.GetNATSClient(context.Background()).Close(); errClose != nil {
		slog.ErrorContext(ctx, "failed to close NATS client", "error", errClose)
	}
	slog.InfoContext(ctx, "calendar service stopped")
}

// handleHealthServer exposes liveness and readiness probes
func handleHealthServer(ctx context.Context, wg *sync.WaitGroup, bind, port string) error {
	natsClient := service.GetNATSClient(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := natsClient.IsReady(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "service not ready", "error", err)
			http.Error(w, "NATS not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if bind == "*" {
		bind = ""
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(bind, port),
		Handler:           otelhttp.NewHandler(mux, "calendar-service"),
		ReadHeaderTimeout: 3 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.InfoContext(ctx, "health server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "health server failed", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "failed to shut down health server", "error", err)
		}
	}()

	return nil
}
