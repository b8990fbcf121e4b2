package pages

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// ProjectFile is the name of the project file inside the project location.
const ProjectFile = "project" + reflib.FileExt

const creationDateLayout = "02.01.2006 15:04"

var ErrNotCreated = errors.New("project has not been created")

// Project edits the description of the project and loads and saves it.
type Project struct {
	qbackend.QObject

	NameChanged        qbackend.Signal
	DescriptionChanged qbackend.Signal
	LocationChanged    qbackend.Signal
	CreatedChanged     qbackend.Signal
	// ProjectLoaded is emitted when the whole library was replaced.
	ProjectLoaded qbackend.Signal

	lib reflib.Library
	log log.Logger
	dir string
	now func() time.Time
}

// NewProject returns the project page. New projects are located under dir.
func NewProject(lib reflib.Library, dir string, logger log.Logger) *Project {
	return &Project{lib: lib, log: logger, dir: dir, now: time.Now}
}

func (p *Project) Properties() qbackend.Properties {
	return qbackend.Properties{
		"name":         qbackend.Prop(p.Name, &p.NameChanged),
		"description":  qbackend.Prop(p.Description, &p.DescriptionChanged),
		"location":     qbackend.Prop(p.Location, &p.LocationChanged),
		"created":      qbackend.Prop(p.Created, &p.CreatedChanged),
		"creationDate": qbackend.Prop(p.CreationDate, &p.CreatedChanged),
	}
}

func (p *Project) Name() string        { return p.lib.Info().Name }
func (p *Project) Description() string { return p.lib.Info().Description }
func (p *Project) Location() string    { return p.lib.Info().Location }
func (p *Project) Created() bool       { return p.lib.Info().Created }

// CreationDate is empty until the project is created.
func (p *Project) CreationDate() string {
	info := p.lib.Info()
	if info.CreatedAt.IsZero() {
		return ""
	}
	return info.CreatedAt.Local().Format(creationDateLayout)
}

func (p *Project) SetName(name string) {
	info := p.lib.Info()
	if info.Name == name {
		return
	}
	info.Name = name
	p.lib.SetInfo(info)
	p.NameChanged.Emit()
}

func (p *Project) SetDescription(description string) {
	info := p.lib.Info()
	if info.Description == description {
		return
	}
	info.Description = description
	p.lib.SetInfo(info)
	p.DescriptionChanged.Emit()
}

func (p *Project) SetLocation(location string) {
	location = localPath(location)
	info := p.lib.Info()
	if info.Location == location {
		return
	}
	info.Location = location
	p.lib.SetInfo(info)
	p.LocationChanged.Emit()
}

// Create marks the project as created, placing it in the default directory
// if it has no location yet.
func (p *Project) Create() {
	info := p.lib.Info()
	if info.Created {
		return
	}
	info.Created = true
	info.CreatedAt = p.now()
	located := info.Location == ""
	if located {
		info.Location = filepath.Join(p.dir, info.Name)
	}
	p.lib.SetInfo(info)
	p.log.Info("project created", "name", info.Name, "location", info.Location)
	if located {
		p.LocationChanged.Emit()
	}
	p.CreatedChanged.Emit()
}

// Reset discards the project and starts over with the defaults.
func (p *Project) Reset() {
	p.lib.Reset()
	p.log.Info("project reset")
	p.replaced()
}

func (p *Project) replaced() {
	p.NameChanged.Emit()
	p.CreatedChanged.Emit()
	p.ProjectLoaded.Emit()
}

// Path is where Save writes the project.
func (p *Project) Path() string {
	return filepath.Join(p.Location(), ProjectFile)
}

func (p *Project) Save() error {
	info := p.lib.Info()
	if !info.Created {
		return ErrNotCreated
	}
	path := p.Path()
	if err := p.lib.Save(path); err != nil {
		p.log.Error("project save failed", "path", path, "err", err)
		return err
	}
	p.log.Info("project saved", "path", path)
	return nil
}

// Load replaces the project with the one saved at path. The location becomes
// the directory of path.
func (p *Project) Load(path string) error {
	path = localPath(path)
	if err := p.lib.Load(path); err != nil {
		p.log.Error("project load failed", "path", path, "err", err)
		return err
	}
	info := p.lib.Info()
	info.Location = filepath.Dir(path)
	p.lib.SetInfo(info)
	p.log.Info("project loaded", "path", path, "name", info.Name)
	p.replaced()
	return nil
}
