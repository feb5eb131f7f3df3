package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stroke-mcs/internal/mcp"
	"stroke-mcs/internal/simulation"
)

var metricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), metricsAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}

func runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := simulation.NewMetrics(reg)
	server := mcp.NewServer(cfg, metrics, Version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("MCP Server starting Stdio loop")
		err := server.Serve(gctx)
		stop()
		return err
	})

	if addr != "" {
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", addr).Msg("Serving Prometheus metrics")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Msg("MCP Server stopped")
	return err
}
