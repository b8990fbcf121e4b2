// Package relay connects the change signals of the pages to the pages that
// depend on them. The connections are made once, in a fixed order, when the
// router is wired; they cannot change afterwards.
package relay

import (
	"github.com/pkg/errors"

	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/pages"
)

var ErrIncomplete = errors.New("relay needs every page")

// Pages are the pages the router connects. All must be set.
type Pages struct {
	Project    *pages.Project
	Sample     *pages.Sample
	Experiment *pages.Experiment
	Analysis   *pages.Analysis
	Summary    *pages.Summary
	Status     *pages.Status
	Plotting   *pages.Plotting
}

func (p Pages) check() error {
	for name, missing := range map[string]bool{
		"project":    p.Project == nil,
		"sample":     p.Sample == nil,
		"experiment": p.Experiment == nil,
		"analysis":   p.Analysis == nil,
		"summary":    p.Summary == nil,
		"status":     p.Status == nil,
		"plotting":   p.Plotting == nil,
	} {
		if missing {
			return errors.Wrapf(ErrIncomplete, "no %s page", name)
		}
	}
	return nil
}

// Edge is one relayed connection, from a signal to the action it triggers,
// or from a relayed action to a signal it emits.
type Edge struct {
	From string
	To   string
}

// Router holds the relayed connections.
type Router struct {
	pages Pages
	log   log.Logger
	edges []Edge
	err   error
}

// Wire connects the pages. It fails with ErrIncomplete before connecting
// anything if a page is missing.
func Wire(p Pages, logger log.Logger) (*Router, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	r := &Router{pages: p, log: logger}
	r.wireProject()
	r.wireSample()
	r.wireExperiment()
	r.wireAnalysis()
	return r, nil
}

// Edges lists the connections in the order they were made.
func (r *Router) Edges() []Edge {
	return append([]Edge(nil), r.edges...)
}

// Err returns the last error of a relayed action.
func (r *Router) Err() error {
	return r.err
}

func (r *Router) edge(from string, to ...string) {
	for _, t := range to {
		r.edges = append(r.edges, Edge{from, t})
	}
}

func (r *Router) check(action string, err error) {
	if err == nil {
		return
	}
	r.err = err
	r.log.Error("relayed action failed", "action", action, "err", err)
}

func (r *Router) wireProject() {
	p := r.pages
	p.Project.NameChanged.Connect(func() {
		p.Status.ProjectChanged.Emit()
		p.Summary.AsHtmlChanged.Emit()
		p.Summary.AsTextChanged.Emit()
	})
	r.edge("project.nameChanged", "status.projectChanged", "summary.asHtmlChanged", "summary.asTextChanged")

	p.Project.CreatedChanged.Connect(func() {
		p.Summary.CreatedChanged.Emit()
	})
	r.edge("project.createdChanged", "summary.createdChanged")

	// A loaded or reset project replaces everything the other pages show
	p.Project.ProjectLoaded.Connect(func() {
		p.Sample.Reload()
		p.Experiment.Reload()
		p.Analysis.ParametersChanged.Emit()
		p.Analysis.MinimizerChanged.Emit()
		p.Status.ModelsCountChanged.Emit()
	})
	r.edge("project.projectLoaded", "sample.reload", "experiment.reload",
		"analysis.parametersChanged", "analysis.minimizerChanged", "status.modelsCountChanged")
	r.edge("sample.reload", "sample.materialsChanged", "sample.modelsChanged", "sample.modelsIndexChanged")
	r.edge("experiment.reload", "experiment.experimentChanged")
}

func (r *Router) wireSample() {
	p := r.pages
	p.Sample.ModelsIndexChanged.Connect(func(index int) {
		p.Plotting.SetModelIndex(index)
		p.Experiment.SetModelIndex(index)
	})
	r.edge("sample.modelsIndexChanged", "plotting.setModelIndex", "experiment.setModelIndex")
	r.edge("plotting.setModelIndex", "plotting.modelIndexChanged")
	r.edge("experiment.setModelIndex", "experiment.modelIndexChanged")

	p.Sample.SampleChanged.Connect(func() {
		p.Plotting.SldChartRangesChanged.Emit()
		p.Plotting.SampleChartRangesChanged.Emit()
		r.check("plotting.refreshSamplePage", p.Plotting.RefreshSamplePage())
		p.Analysis.ParametersChanged.Emit()
		p.Summary.AsHtmlChanged.Emit()
		p.Summary.AsTextChanged.Emit()
	})
	r.edge("sample.sampleChanged", "plotting.sldChartRangesChanged", "plotting.sampleChartRangesChanged",
		"plotting.refreshSamplePage", "analysis.parametersChanged", "summary.asHtmlChanged", "summary.asTextChanged")

	p.Sample.ModelsChanged.Connect(func() {
		p.Status.ModelsCountChanged.Emit()
		p.Analysis.ParametersChanged.Emit()
	})
	r.edge("sample.modelsChanged", "status.modelsCountChanged", "analysis.parametersChanged")
}

func (r *Router) wireExperiment() {
	p := r.pages
	p.Experiment.ExperimentChanged.Connect(func() {
		r.check("plotting.refreshExperimentPage", p.Plotting.RefreshExperimentPage())
		p.Plotting.ExperimentChartRangesChanged.Emit()
		p.Status.ExperimentsCountChanged.Emit()
		p.Sample.SampleChanged.Emit()
	})
	r.edge("experiment.experimentChanged", "plotting.refreshExperimentPage",
		"plotting.experimentChartRangesChanged", "status.experimentsCountChanged", "sample.sampleChanged")
}

func (r *Router) wireAnalysis() {
	p := r.pages
	p.Analysis.MinimizerChanged.Connect(func() {
		p.Status.MinimizerChanged.Emit()
	})
	r.edge("analysis.minimizerChanged", "status.minimizerChanged")
}
