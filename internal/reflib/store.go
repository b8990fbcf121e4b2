package reflib

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/CrimsonAS/qreflectometry/internal/dataset"

	_ "modernc.org/sqlite" // SQLite driver.
)

// FileExt is the extension of saved projects.
const FileExt = ".qref"

var schema = []string{
	`CREATE TABLE project (
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		location TEXT NOT NULL,
		created INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		q_min REAL NOT NULL,
		q_max REAL NOT NULL,
		minimizer TEXT NOT NULL
	);`,
	`CREATE TABLE materials (
		pos INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		sld REAL NOT NULL,
		isld REAL NOT NULL
	);`,
	`CREATE TABLE models (
		pos INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		scale REAL NOT NULL,
		background REAL NOT NULL
	);`,
	`CREATE TABLE layers (
		model INTEGER NOT NULL,
		pos INTEGER NOT NULL,
		name TEXT NOT NULL,
		material TEXT NOT NULL,
		thickness REAL NOT NULL,
		roughness REAL NOT NULL,
		PRIMARY KEY (model, pos)
	);`,
	`CREATE TABLE experiments (
		pos INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		model INTEGER NOT NULL,
		has_yerr INTEGER NOT NULL,
		has_xerr INTEGER NOT NULL
	);`,
	`CREATE TABLE experiment_points (
		experiment INTEGER NOT NULL,
		pos INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		yerr REAL NOT NULL,
		xerr REAL NOT NULL,
		PRIMARY KEY (experiment, pos)
	);`,
}

// Save writes the project to an SQLite file at path, replacing it.
func (p *Project) Save(path string) error {
	return p.SaveContext(context.Background(), path)
}

func (p *Project) SaveContext(ctx context.Context, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create project directory")
	}
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove stale temporary file")
	}

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return errors.Wrap(err, "failed to open project file")
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(tmp)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = p.write(ctx, tx); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to write project")
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	if err = db.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (p *Project) write(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	createdAt := ""
	if !p.info.CreatedAt.IsZero() {
		createdAt = p.info.CreatedAt.Format(time.RFC3339Nano)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO project (id, name, description, location, created, created_at, q_min, q_max, minimizer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.info.ID.String(), p.info.Name, p.info.Description, p.info.Location,
		boolInt(p.info.Created), createdAt, p.qRange.Min, p.qRange.Max, p.minimizer,
	); err != nil {
		return err
	}

	for i, m := range p.materials {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO materials (pos, id, name, sld, isld) VALUES (?, ?, ?, ?, ?)`,
			i, m.ID.String(), m.Name, m.SLD, m.ISLD,
		); err != nil {
			return err
		}
	}

	for i, m := range p.models {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO models (pos, id, name, scale, background) VALUES (?, ?, ?, ?, ?)`,
			i, m.ID.String(), m.Name, m.Scale, m.Background,
		); err != nil {
			return err
		}
		for j, l := range m.Layers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO layers (model, pos, name, material, thickness, roughness) VALUES (?, ?, ?, ?, ?, ?)`,
				i, j, l.Name, l.Material.String(), l.Thickness, l.Roughness,
			); err != nil {
				return err
			}
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO experiment_points (experiment, pos, x, y, yerr, xerr) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, e := range p.experiments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO experiments (pos, name, model, has_yerr, has_xerr) VALUES (?, ?, ?, ?, ?)`,
			i, e.Name, e.Model, boolInt(len(e.Data.YErr) > 0), boolInt(len(e.Data.XErr) > 0),
		); err != nil {
			return err
		}
		for j, pt := range e.Data.Points() {
			if _, err := stmt.ExecContext(ctx, i, j, pt.X, pt.Y, pt.YErr, pt.XErr); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load replaces the project with the one saved at path. The project is left
// unchanged if reading fails.
func (p *Project) Load(path string) error {
	return p.LoadContext(context.Background(), path)
}

func (p *Project) LoadContext(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "failed to open project file")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrap(err, "failed to open project file")
	}
	defer db.Close()

	loaded := &Project{}
	if err := loaded.read(ctx, db); err != nil {
		return errors.Wrapf(err, "failed to read project %s", path)
	}
	*p = *loaded
	return nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid id %q", s)
	}
	return id, nil
}

func (p *Project) read(ctx context.Context, db *sql.DB) error {
	var id, createdAt string
	var created int
	row := db.QueryRowContext(ctx,
		`SELECT id, name, description, location, created, created_at, q_min, q_max, minimizer FROM project`)
	if err := row.Scan(&id, &p.info.Name, &p.info.Description, &p.info.Location,
		&created, &createdAt, &p.qRange.Min, &p.qRange.Max, &p.minimizer); err != nil {
		return err
	}
	var err error
	if p.info.ID, err = parseID(id); err != nil {
		return err
	}
	p.info.Created = created != 0
	if createdAt != "" {
		if p.info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return err
		}
	}

	if err := p.readMaterials(ctx, db); err != nil {
		return err
	}
	if err := p.readModels(ctx, db); err != nil {
		return err
	}
	return p.readExperiments(ctx, db)
}

func (p *Project) readMaterials(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name, sld, isld FROM materials ORDER BY pos`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var m Material
		if err := rows.Scan(&id, &m.Name, &m.SLD, &m.ISLD); err != nil {
			return err
		}
		if m.ID, err = parseID(id); err != nil {
			return err
		}
		p.materials = append(p.materials, m)
	}
	return rows.Err()
}

func (p *Project) readModels(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT id, name, scale, background FROM models ORDER BY pos`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var m Model
		if err := rows.Scan(&id, &m.Name, &m.Scale, &m.Background); err != nil {
			return err
		}
		if m.ID, err = parseID(id); err != nil {
			return err
		}
		p.models = append(p.models, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	layers, err := db.QueryContext(ctx,
		`SELECT model, name, material, thickness, roughness FROM layers ORDER BY model, pos`)
	if err != nil {
		return err
	}
	defer layers.Close()
	for layers.Next() {
		var model int
		var material string
		var l Layer
		if err := layers.Scan(&model, &l.Name, &material, &l.Thickness, &l.Roughness); err != nil {
			return err
		}
		if model < 0 || model >= len(p.models) {
			return errors.Errorf("layer of missing model %d", model)
		}
		if l.Material, err = parseID(material); err != nil {
			return err
		}
		p.models[model].Layers = append(p.models[model].Layers, l)
	}
	return layers.Err()
}

func (p *Project) readExperiments(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name, model, has_yerr, has_xerr FROM experiments ORDER BY pos`)
	if err != nil {
		return err
	}
	defer rows.Close()
	type flags struct{ yerr, xerr bool }
	var hasErr []flags
	for rows.Next() {
		var e Experiment
		var yerr, xerr int
		if err := rows.Scan(&e.Name, &e.Model, &yerr, &xerr); err != nil {
			return err
		}
		e.Data = &dataset.Dataset1D{Name: e.Name, X: []float64{}, Y: []float64{}}
		p.experiments = append(p.experiments, e)
		hasErr = append(hasErr, flags{yerr != 0, xerr != 0})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	points, err := db.QueryContext(ctx,
		`SELECT experiment, x, y, yerr, xerr FROM experiment_points ORDER BY experiment, pos`)
	if err != nil {
		return err
	}
	defer points.Close()
	for points.Next() {
		var i int
		var pt dataset.DataPoint
		if err := points.Scan(&i, &pt.X, &pt.Y, &pt.YErr, &pt.XErr); err != nil {
			return err
		}
		if i < 0 || i >= len(p.experiments) {
			return errors.Errorf("point of missing experiment %d", i)
		}
		d := p.experiments[i].Data
		d.X = append(d.X, pt.X)
		d.Y = append(d.Y, pt.Y)
		if hasErr[i].yerr {
			d.YErr = append(d.YErr, pt.YErr)
		}
		if hasErr[i].xerr {
			d.XErr = append(d.XErr, pt.XErr)
		}
	}
	return points.Err()
}
