package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/lexcheck/internal/api"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	v, classifierReady, err := a.newValidator(db, nil)
	if err != nil {
		return err
	}
	pub, err := a.newPublisher()
	if err != nil {
		return err
	}
	defer pub.Close()

	s := &api.Server{
		DB:              db,
		UserStore:       db,
		Analyzer:        v,
		Publisher:       pub,
		Logger:          a.logger,
		AllowedOrigins:  a.cfg.Server.AllowedOrigins,
		SessionDuration: a.cfg.Server.SessionDuration,
		MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
		ClassifierReady: classifierReady,
	}
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", srv.Addr, "classifier", classifierReady)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
