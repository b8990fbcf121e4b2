//go:build qml

package main

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CrimsonAS/qreflectometry/backend/qmlscene"
	"github.com/CrimsonAS/qreflectometry/internal/app"
)

var qmlFile string

func init() {
	extraCmds = append(extraCmds, newQmlCmd)
}

func newQmlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qml [project]",
		Short: "Run the QML interface in this process",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQmlCmd,
	}
	cmd.Flags().StringVar(&qmlFile, "qml", "qml/main.qml", "root QML file")
	return cmd
}

func runQmlCmd(cmd *cobra.Command, args []string) error {
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

	qmlscene.Connection().RootObject = a.Backend
	qmlscene.LoadScene(qmlFile)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	code := qmlscene.Exec(func(lock sync.Locker) {
		go a.Autosave(ctx, time.Duration(cfg.Autosave)*time.Second, lock)
	})
	if code != 0 {
		return errors.Errorf("scene exited with %d", code)
	}
	return nil
}
