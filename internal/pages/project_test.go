package pages

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

func TestProjectSetters(t *testing.T) {
	p := NewProject(reflib.New(), t.TempDir(), log.NewRecorder())
	name := count(&p.NameChanged)
	description := count(&p.DescriptionChanged)
	location := count(&p.LocationChanged)

	p.SetName(p.Name())
	p.SetDescription(p.Description())
	p.SetLocation(p.Location())
	if *name != 0 || *description != 0 || *location != 0 {
		t.Errorf("equal values emitted %d %d %d", *name, *description, *location)
	}

	p.SetName("Film")
	p.SetDescription("D2O on Si")
	p.SetLocation("file:///data/film")
	if *name != 1 || *description != 1 || *location != 1 {
		t.Errorf("changes emitted %d %d %d", *name, *description, *location)
	}
	if p.Name() != "Film" || p.Description() != "D2O on Si" || p.Location() != "/data/film" {
		t.Errorf("project %s, %s, %s", p.Name(), p.Description(), p.Location())
	}
}

func TestProjectCreate(t *testing.T) {
	dir := t.TempDir()
	p := NewProject(reflib.New(), dir, log.NewRecorder())
	created := count(&p.CreatedChanged)
	location := count(&p.LocationChanged)
	p.now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.Local) }

	if p.Created() || p.CreationDate() != "" {
		t.Errorf("new project created %v on %q", p.Created(), p.CreationDate())
	}
	if err := p.Save(); err != ErrNotCreated {
		t.Errorf("saving before creation returned %v", err)
	}

	p.Create()
	p.Create()
	if !p.Created() || *created != 1 || *location != 1 {
		t.Errorf("created %v, %d signals, %d location signals", p.Created(), *created, *location)
	}
	if p.CreationDate() != "17.05.2024 09:30" {
		t.Errorf("creation date %q", p.CreationDate())
	}
	if p.Location() != filepath.Join(dir, "Example Project") {
		t.Errorf("location %q", p.Location())
	}
}

func TestProjectSaveLoad(t *testing.T) {
	lib := reflib.New()
	p := NewProject(lib, t.TempDir(), log.NewRecorder())
	p.SetName("Film")
	p.Create()
	lib.AddMaterial(reflib.Material{Name: "SiO2", SLD: 3.47})
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	path := p.Path()

	p.Reset()
	if p.Name() != "Example Project" || p.Created() || len(lib.Materials()) != 3 {
		t.Fatalf("reset project %s, %v, %d materials", p.Name(), p.Created(), len(lib.Materials()))
	}

	var order []string
	p.NameChanged.Connect(func() { order = append(order, "name") })
	p.CreatedChanged.Connect(func() { order = append(order, "created") })
	p.ProjectLoaded.Connect(func() { order = append(order, "loaded") })

	if err := p.Load("file://" + filepath.ToSlash(path)); err != nil {
		t.Fatal(err)
	}
	if p.Name() != "Film" || !p.Created() || len(lib.Materials()) != 4 {
		t.Errorf("loaded project %s, %v, %d materials", p.Name(), p.Created(), len(lib.Materials()))
	}
	if p.Location() != filepath.Dir(path) {
		t.Errorf("location %q, loaded from %q", p.Location(), path)
	}
	if len(order) != 3 || order[0] != "name" || order[1] != "created" || order[2] != "loaded" {
		t.Errorf("signal order %v", order)
	}

	order = nil
	if err := p.Load(filepath.Join(t.TempDir(), "missing.qref")); err == nil {
		t.Error("loading a missing project succeeded")
	}
	if len(order) != 0 || p.Name() != "Film" {
		t.Errorf("failed load emitted %v", order)
	}
}
