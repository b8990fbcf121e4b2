package reflib

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	uuid "github.com/satori/go.uuid"
)

const (
	curvePoints = 300
	sldPoints   = 200
)

// slab is a layer resolved to its complex SLD in Å^-2.
type slab struct {
	rho       complex128
	thickness float64
	roughness float64
}

func (p *Project) slabs(m Model) []slab {
	byID := make(map[uuid.UUID]Material, len(p.materials))
	for _, mat := range p.materials {
		byID[mat.ID] = mat
	}
	slabs := make([]slab, len(m.Layers))
	for i, l := range m.Layers {
		// A layer whose material was removed is treated as vacuum
		mat := byID[l.Material]
		slabs[i] = slab{
			rho:       complex(mat.SLD*1e-6, -mat.ISLD*1e-6),
			thickness: l.Thickness,
			roughness: l.Roughness,
		}
	}
	return slabs
}

// reflectivity computes |r|^2 at momentum transfer q with the Parratt
// recursion, using Nevot-Croce factors for interfacial roughness.
func reflectivity(slabs []slab, q float64) float64 {
	n := len(slabs)
	if n < 2 {
		return 0
	}
	kz0 := complex(q/2, 0)
	k := make([]complex128, n)
	for j, s := range slabs {
		k[j] = cmplx.Sqrt(kz0*kz0 - 4*math.Pi*(s.rho-slabs[0].rho))
	}

	var r complex128
	for j := n - 2; j >= 0; j-- {
		sigma := slabs[j+1].roughness
		fresnel := (k[j] - k[j+1]) / (k[j] + k[j+1])
		fresnel *= cmplx.Exp(-2 * k[j] * k[j+1] * complex(sigma*sigma, 0))
		if j+1 == n-1 {
			r = fresnel
			continue
		}
		phase := cmplx.Exp(2i * k[j+1] * complex(slabs[j+1].thickness, 0))
		r = (fresnel + r*phase) / (1 + fresnel*r*phase)
	}
	return real(r * cmplx.Conj(r))
}

func (p *Project) calculate(m Model) (x, y []float64) {
	slabs := p.slabs(m)
	x = make([]float64, curvePoints)
	if p.qRange.Min == p.qRange.Max {
		x = x[:1]
		x[0] = p.qRange.Min
	} else {
		floats.Span(x, p.qRange.Min, p.qRange.Max)
	}
	y = make([]float64, len(x))
	for i, q := range x {
		y[i] = m.Scale*reflectivity(slabs, q) + m.Background
	}
	return x, y
}

// sldProfile returns the real SLD, in 1e-6 Å^-2, against depth. Interfaces are
// smoothed with an error function of their roughness.
func (p *Project) sldProfile(m Model) (z, rho []float64) {
	slabs := p.slabs(m)
	if len(slabs) == 0 {
		return []float64{}, []float64{}
	}

	depths := make([]float64, len(slabs)-1)
	var depth float64
	for i := range depths {
		if i > 0 {
			depth += slabs[i].thickness
		}
		depths[i] = depth
	}

	lo, hi := -10.0, depth+10
	if len(slabs) > 1 {
		lo -= 4 * slabs[1].roughness
		hi += 4 * slabs[len(slabs)-1].roughness
	}
	z = make([]float64, sldPoints)
	floats.Span(z, lo, hi)
	rho = make([]float64, len(z))
	for i, zi := range z {
		v := real(slabs[0].rho)
		for j, d := range depths {
			step := real(slabs[j+1].rho) - real(slabs[j].rho)
			sigma := slabs[j+1].roughness
			if sigma <= 0 {
				if zi >= d {
					v += step
				}
				continue
			}
			v += step * 0.5 * (1 + math.Erf((zi-d)/(sigma*math.Sqrt2)))
		}
		rho[i] = v * 1e6
	}
	return z, rho
}
