package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nhle/cronograma/internal/api"
	"github.com/nhle/cronograma/internal/app"
	"github.com/nhle/cronograma/internal/jobs"
	appsync "github.com/nhle/cronograma/internal/sync"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the background sync and the scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			if addr == "" {
				addr = e.cfg.API.Addr
			}

			poller := appsync.New(e.store, e.center)
			_, n := app.RegisterSources(poller, e.cfg, e.secrets(), e.store, e.loc)
			go drainResults(poller, poller.Start())
			defer poller.Stop()

			runner := jobs.New(e.store, e.center, e.loc)
			sweepEvery := time.Duration(e.cfg.Notifications.SweepIntervalMin) * time.Minute
			if err := runner.Schedule(sweepEvery, e.cfg.Notifications.DigestTime); err != nil {
				return err
			}
			runner.Start()
			defer runner.Stop()

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(e.cfg.API, api.Deps{Store: e.store, Notify: e.center, Location: e.loc}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			log.Printf("serving on %s with %d remote sources", addr, n)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Println("shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// drainResults logs sync results until the poller stops.
func drainResults(p *appsync.Poller, next tea.Cmd) {
	for next != nil {
		res, ok := next().(appsync.SyncResultMsg)
		if !ok {
			return
		}
		switch {
		case res.AuthError != nil:
			log.Printf("sync %s: %s", res.Source, res.AuthError.Message)
		case res.Error != nil:
			log.Printf("sync %s: %v", res.Source, res.Error)
		default:
			log.Printf("sync %s: %d sheets, %d tasks, %d members",
				res.Source, res.Result.Sheets, res.Result.Tasks, res.Result.Members)
		}
		next = p.WaitForNextResult()
	}
}
