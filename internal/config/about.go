package config

import (
	_ "embed"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

//go:embed about.toml
var aboutData string

// About is the release metadata shown on the home page.
type About struct {
	Version Version           `toml:"version"`
	URLs    map[string]string `toml:"urls"`
}

type Version struct {
	Number string `toml:"number" json:"number"`
	Date   string `toml:"date" json:"date"`
}

// LoadAbout decodes the metadata built into the binary.
func LoadAbout() (About, error) {
	return ParseAbout(aboutData)
}

func ParseAbout(data string) (About, error) {
	var a About
	if _, err := toml.Decode(data, &a); err != nil {
		return About{}, errors.Wrap(err, "failed to decode about")
	}
	if a.Version.Number == "" {
		return About{}, errors.New("about has no version number")
	}
	return a, nil
}
