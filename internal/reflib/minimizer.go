package reflib

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

const DefaultMinimizer = "LBFGS"

var ErrUnknownMinimizer = errors.New("unknown minimizer")

var minimizers = map[string]func() optimize.Method{
	"LBFGS":           func() optimize.Method { return &optimize.LBFGS{} },
	"BFGS":            func() optimize.Method { return &optimize.BFGS{} },
	"NelderMead":      func() optimize.Method { return &optimize.NelderMead{} },
	"GradientDescent": func() optimize.Method { return &optimize.GradientDescent{} },
	"Newton":          func() optimize.Method { return &optimize.Newton{} },
}

// Minimizers lists the minimizer names in sorted order.
func Minimizers() []string {
	names := make([]string, 0, len(minimizers))
	for name := range minimizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MinimizerMethod returns a fresh optimize.Method for a minimizer name.
func MinimizerMethod(name string) (optimize.Method, error) {
	m, ok := minimizers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMinimizer, "%q", name)
	}
	return m(), nil
}
