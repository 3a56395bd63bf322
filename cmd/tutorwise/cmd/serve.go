package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	params := &struct {
		Port int
	}{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the ingestion workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conf, err := root.load()
			if err != nil {
				return err
			}
			if params.Port != 0 {
				conf.Server.Port = params.Port
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			app, err := newApp(ctx, conf)
			if err != nil {
				return err
			}
			defer app.Close()

			logger := app.Logger()
			server := &http.Server{
				Addr:              conf.Server.Addr(),
				Handler:           app.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return app.RunWorkers(ctx)
			})
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
				defer cancel()
				return errors.Wrapf(server.Shutdown(shutdownCtx), "failed to shutdown server")
			})
			eg.Go(func() error {
				logger.Info("server started", "addr", server.Addr)
				defer logger.Info("server stopped")

				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrapf(err, "failed to listen on %s", server.Addr)
				}
				return nil
			})

			return eg.Wait()
		},
	}

	cmd.Flags().IntVarP(&params.Port, "port", "p", 0, "Port to listen on (overrides PORT)")

	return cmd
}
