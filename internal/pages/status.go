package pages

import (
	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// Status is the status bar. It has no actions; other pages' changes are
// relayed to its signals.
type Status struct {
	qbackend.QObject

	ProjectChanged          qbackend.Signal
	ExperimentsCountChanged qbackend.Signal
	ModelsCountChanged      qbackend.Signal
	MinimizerChanged        qbackend.Signal

	lib reflib.Library
}

func NewStatus(lib reflib.Library) *Status {
	return &Status{lib: lib}
}

func (s *Status) Properties() qbackend.Properties {
	return qbackend.Properties{
		"project":          qbackend.Prop(s.Project, &s.ProjectChanged),
		"experimentsCount": qbackend.Prop(s.ExperimentsCount, &s.ExperimentsCountChanged),
		"modelsCount":      qbackend.Prop(s.ModelsCount, &s.ModelsCountChanged),
		"minimizer":        qbackend.Prop(s.Minimizer, &s.MinimizerChanged),
		"calculator":       qbackend.Prop(s.Calculator, nil),
	}
}

func (s *Status) Project() string       { return s.lib.Info().Name }
func (s *Status) ExperimentsCount() int { return len(s.lib.Experiments()) }
func (s *Status) ModelsCount() int      { return len(s.lib.Models()) }
func (s *Status) Minimizer() string     { return s.lib.Minimizer() }
func (s *Status) Calculator() string    { return s.lib.Calculator() }
