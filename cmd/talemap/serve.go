package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/talemap/cmd/talemap/internal/devserver"
	"github.com/recera/talemap/internal/logging"
)

func newServeCommand() *cobra.Command {
	var (
		port      int
		host      string
		static    string
		mock      bool
		mockDelay time.Duration
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser client with live reload",
		Long: `Serve hosts the static browser client, forwards /api to the game API
(or answers it from an in-memory mock), and reloads open pages whenever a
file under the static directory changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Serve.Port = port
			}
			if flags.Changed("host") {
				cfg.Serve.Host = host
			}
			if flags.Changed("static") {
				cfg.Serve.Static = static
			}
			if flags.Changed("mock") {
				cfg.Serve.Mock = mock
			}
			if flags.Changed("mock-delay") {
				cfg.Serve.MockDelay = mockDelay
			}
			if noWatch {
				cfg.Serve.Watch = false
			}

			log, err := setupLogging(cfg, os.Stderr)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Serve.Static); err != nil {
				return fmt.Errorf("static directory: %w", err)
			}

			server, err := devserver.New(devserver.Options{
				Static:    cfg.Serve.Static,
				APIURL:    cfg.API.URL,
				Mock:      cfg.Serve.Mock,
				MockDelay: cfg.Serve.MockDelay,
				Logger:    logging.Component(log, "serve"),
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if cfg.Serve.Watch {
				if err := server.Watch(ctx); err != nil {
					return err
				}
			}

			addr := fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.Port)
			srv := &http.Server{
				Addr:    addr,
				Handler: server,
			}

			go func() {
				api := cfg.API.URL
				if cfg.Serve.Mock {
					api = "mock"
				}
				log.WithField("api", api).Infof("Serving at http://%s", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("server error")
					cancel()
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigChan:
			case <-ctx.Done():
			}

			log.Info("Shutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&host, "host", "localhost", "Host to bind to")
	cmd.Flags().StringVar(&static, "static", "static", "Directory holding index.html and main.wasm")
	cmd.Flags().BoolVar(&mock, "mock", false, "Answer /api from an in-memory mock story")
	cmd.Flags().DurationVar(&mockDelay, "mock-delay", 0, "Artificial latency for mock create and choice calls")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable live reload")

	return cmd
}
