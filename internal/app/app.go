// Package app assembles the pages of the application around one project
// library and exposes them through a single root object.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/config"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/pages"
	"github.com/CrimsonAS/qreflectometry/internal/relay"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
	"github.com/CrimsonAS/qreflectometry/internal/series"
)

// Backend is the root object seen by QML as Backend. Its fields are the
// pages; they never change after New.
type Backend struct {
	qbackend.QObject

	Home       *pages.Home
	Project    *pages.Project
	Sample     *pages.Sample
	Experiment *pages.Experiment
	Analysis   *pages.Analysis
	Summary    *pages.Summary
	Status     *pages.Status
	Plotting   *pages.Plotting
}

// App owns a Backend and the state behind it. Its methods are not visible to
// QML.
type App struct {
	Backend *Backend

	lib    *reflib.Project
	sink   *series.Sink
	router *relay.Router
	log    log.Logger
}

// New builds the library, the pages and their relays.
func New(cfg config.Config, about config.About, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lib := reflib.New()
	sink := series.NewSink()
	b := &Backend{
		Home:       pages.NewHome(about),
		Project:    pages.NewProject(lib, cfg.ProjectDir, logger.With("page", "project")),
		Sample:     pages.NewSample(lib, logger.With("page", "sample")),
		Experiment: pages.NewExperiment(lib, logger.With("page", "experiment")),
		Analysis:   pages.NewAnalysis(lib, logger.With("page", "analysis")),
		Summary:    pages.NewSummary(lib, logger.With("page", "summary")),
		Status:     pages.NewStatus(lib),
		Plotting: pages.NewPlotting(lib, sink, logger.With("page", "plotting"), pages.PlottingOptions{
			Lib:          cfg.PlotBackend,
			Acceleration: cfg.Acceleration,
			Width:        cfg.Width,
			Height:       cfg.Height,
		}),
	}
	router, err := relay.Wire(relay.Pages{
		Project:    b.Project,
		Sample:     b.Sample,
		Experiment: b.Experiment,
		Analysis:   b.Analysis,
		Summary:    b.Summary,
		Status:     b.Status,
		Plotting:   b.Plotting,
	}, logger.With("part", "relay"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to wire pages")
	}
	return &App{Backend: b, lib: lib, sink: sink, router: router, log: logger}, nil
}

func (a *App) Router() *relay.Router {
	return a.router
}

// Library returns the project all pages work on.
func (a *App) Library() *reflib.Project {
	return a.lib
}

// Charts returns the keys of the series the UI has registered.
func (a *App) Charts() []series.Key {
	return a.sink.Keys()
}

// Open loads a saved project, if path is not empty.
func (a *App) Open(path string) error {
	if path == "" {
		return nil
	}
	return a.Backend.Project.Load(path)
}

// Autosave saves a created project every interval until ctx is done. The
// lock is held while saving; it is the lock of the connection, if any.
func (a *App) Autosave(ctx context.Context, interval time.Duration, lock sync.Locker) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		lock.Lock()
		err := a.Backend.Project.Save()
		lock.Unlock()
		if err != nil && err != pages.ErrNotCreated {
			a.log.Error("autosave failed", "err", err)
		}
	}
}
