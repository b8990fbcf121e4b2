package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/backend/wsconn"
	"github.com/CrimsonAS/qreflectometry/internal/app"
)

var listen string

func projectArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [project]",
		Short: "Serve the backend on stdin and stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, about, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, about, logger)
	if err != nil {
		return err
	}
	if err := a.Open(projectArg(args)); err != nil {
		return err
	}

	conn := qbackend.NewConnectionSplit(os.Stdin, os.Stdout)
	conn.RootObject = a.Backend
	lock, done := conn.RunLockable()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go a.Autosave(ctx, time.Duration(cfg.Autosave)*time.Second, lock)

	if err := <-done; err != nil && err != qbackend.ErrClosed {
		return err
	}
	return nil
}

func newWebsocketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ws [project]",
		Short: "Serve the backend to websocket clients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWebsocketCmd,
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on")
	return cmd
}

func runWebsocketCmd(cmd *cobra.Command, args []string) error {
	cfg, about, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = listen
	}
	project := projectArg(args)

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: &wsconn.Server{
			NewRoot: func(r *http.Request) (qbackend.QObject, error) {
				a, err := app.New(cfg, about, logger.With("remote", r.RemoteAddr))
				if err != nil {
					return nil, err
				}
				if err := a.Open(project); err != nil {
					return nil, err
				}
				return a.Backend, nil
			},
			Log: logger,
		},
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Info("listening", "addr", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "websocket server failed")
	}
	return nil
}
