package pages

import (
	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/config"
)

// Home shows the release and links of the application.
type Home struct {
	qbackend.QObject
	about config.About
}

func NewHome(about config.About) *Home {
	return &Home{about: about}
}

func (h *Home) Properties() qbackend.Properties {
	return qbackend.Properties{
		"version": qbackend.Prop(func() config.Version { return h.about.Version }, nil),
		"urls":    qbackend.Prop(func() map[string]string { return h.about.URLs }, nil),
	}
}
