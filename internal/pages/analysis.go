package pages

import (
	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// ParameterRow is a model parameter on the analysis page.
type ParameterRow struct {
	Model string  `json:"model"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Analysis shows the parameters of all models and the minimizer setting.
type Analysis struct {
	qbackend.QObject

	ParametersChanged qbackend.Signal
	MinimizerChanged  qbackend.Signal

	lib reflib.Library
	log log.Logger
}

func NewAnalysis(lib reflib.Library, logger log.Logger) *Analysis {
	return &Analysis{lib: lib, log: logger}
}

func (a *Analysis) Properties() qbackend.Properties {
	return qbackend.Properties{
		"parameters": qbackend.Prop(a.Parameters, &a.ParametersChanged),
		"minimizer":  qbackend.Prop(a.Minimizer, &a.MinimizerChanged),
		"minimizers": qbackend.Const(reflib.Minimizers()),
		"calculator": qbackend.Prop(func() string { return a.lib.Calculator() }, nil),
	}
}

func (a *Analysis) Parameters() []ParameterRow {
	rows := []ParameterRow{}
	for i, m := range a.lib.Models() {
		params, err := a.lib.Parameters(i)
		if err != nil {
			a.log.Error("model parameters", "model", i, "err", err)
			continue
		}
		for _, p := range params {
			rows = append(rows, ParameterRow{Model: m.Name, Name: p.Name, Value: p.Value})
		}
	}
	return rows
}

func (a *Analysis) Minimizer() string {
	return a.lib.Minimizer()
}

func (a *Analysis) SetMinimizer(name string) error {
	if name == a.lib.Minimizer() {
		return nil
	}
	if err := a.lib.SetMinimizer(name); err != nil {
		return err
	}
	a.MinimizerChanged.Emit()
	return nil
}
