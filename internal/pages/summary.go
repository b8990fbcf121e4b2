package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	qbackend "github.com/CrimsonAS/qreflectometry/backend"
	"github.com/CrimsonAS/qreflectometry/internal/log"
	"github.com/CrimsonAS/qreflectometry/internal/reflib"
)

// Summary reports the whole project, as HTML for the page, as text and as a
// workbook.
type Summary struct {
	qbackend.QObject

	AsHtmlChanged  qbackend.Signal
	AsTextChanged  qbackend.Signal
	CreatedChanged qbackend.Signal

	lib reflib.Library
	log log.Logger
}

func NewSummary(lib reflib.Library, logger log.Logger) *Summary {
	return &Summary{lib: lib, log: logger}
}

func (s *Summary) Properties() qbackend.Properties {
	return qbackend.Properties{
		"asHtml":  qbackend.Prop(s.AsHtml, &s.AsHtmlChanged),
		"asText":  qbackend.Prop(s.AsText, &s.AsTextChanged),
		"created": qbackend.Prop(s.Created, &s.CreatedChanged),
	}
}

func (s *Summary) Created() bool {
	return s.lib.Info().Created
}

type report struct {
	Info        reflib.Info
	Materials   []reflib.Material
	Models      []reportModel
	Experiments []reportExperiment
	QRange      reflib.QRange
	Calculator  string
	Minimizer   string
}

type reportModel struct {
	Name       string
	Scale      float64
	Background float64
	Layers     []reportLayer
}

type reportLayer struct {
	Name      string
	Material  string
	Thickness float64
	Roughness float64
}

type reportExperiment struct {
	Name   string
	Model  string
	Points int
}

func (s *Summary) report() report {
	r := report{
		Info:       s.lib.Info(),
		Materials:  s.lib.Materials(),
		QRange:     s.lib.QRange(),
		Calculator: s.lib.Calculator(),
		Minimizer:  s.lib.Minimizer(),
	}
	names := make(map[string]string)
	for _, m := range r.Materials {
		names[m.ID.String()] = m.Name
	}
	models := s.lib.Models()
	for _, m := range models {
		rm := reportModel{Name: m.Name, Scale: m.Scale, Background: m.Background}
		for _, l := range m.Layers {
			material, ok := names[l.Material.String()]
			if !ok {
				material = "vacuum"
			}
			rm.Layers = append(rm.Layers, reportLayer{l.Name, material, l.Thickness, l.Roughness})
		}
		r.Models = append(r.Models, rm)
	}
	for _, e := range s.lib.Experiments() {
		model := ""
		if e.Model < len(models) {
			model = models[e.Model].Name
		}
		r.Experiments = append(r.Experiments, reportExperiment{e.Name, model, e.Data.Len()})
	}
	return r
}

var htmlReport = template.Must(template.New("summary").Parse(`<h1>{{.Info.Name}}</h1>
<p>{{.Info.Description}}</p>
<h2>Materials</h2>
<table>
<tr><th>Name</th><th>SLD</th><th>iSLD</th></tr>
{{- range .Materials}}
<tr><td>{{.Name}}</td><td>{{.SLD}}</td><td>{{.ISLD}}</td></tr>
{{- end}}
</table>
<h2>Models</h2>
{{- range .Models}}
<h3>{{.Name}}</h3>
<p>scale {{.Scale}}, background {{.Background}}</p>
<table>
<tr><th>Layer</th><th>Material</th><th>Thickness</th><th>Roughness</th></tr>
{{- range .Layers}}
<tr><td>{{.Name}}</td><td>{{.Material}}</td><td>{{.Thickness}}</td><td>{{.Roughness}}</td></tr>
{{- end}}
</table>
{{- end}}
<h2>Experiments</h2>
<ul>
{{- range .Experiments}}
<li>{{.Name}} ({{.Model}}, {{.Points}} points)</li>
{{- else}}
<li>none</li>
{{- end}}
</ul>
<h2>Analysis</h2>
<p>q range {{.QRange.Min}} to {{.QRange.Max}}, calculator {{.Calculator}}, minimizer {{.Minimizer}}</p>
`))

func (s *Summary) AsHtml() string {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, s.report()); err != nil {
		s.log.Error("summary html", "err", err)
		return ""
	}
	return buf.String()
}

func (s *Summary) AsText() string {
	r := s.report()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nMaterials\n", r.Info.Name, r.Info.Description)
	for _, m := range r.Materials {
		fmt.Fprintf(&b, "  %s: sld %g, isld %g\n", m.Name, m.SLD, m.ISLD)
	}
	b.WriteString("\nModels\n")
	for _, m := range r.Models {
		fmt.Fprintf(&b, "  %s: scale %g, background %g\n", m.Name, m.Scale, m.Background)
		for _, l := range m.Layers {
			fmt.Fprintf(&b, "    %s: %s, thickness %g, roughness %g\n", l.Name, l.Material, l.Thickness, l.Roughness)
		}
	}
	b.WriteString("\nExperiments\n")
	if len(r.Experiments) == 0 {
		b.WriteString("  none\n")
	}
	for _, e := range r.Experiments {
		fmt.Fprintf(&b, "  %s: %s, %d points\n", e.Name, e.Model, e.Points)
	}
	fmt.Fprintf(&b, "\nq range %g to %g, calculator %s, minimizer %s\n",
		r.QRange.Min, r.QRange.Max, r.Calculator, r.Minimizer)
	return b.String()
}

// SaveAsHtml writes the HTML report to path.
func (s *Summary) SaveAsHtml(path string) error {
	path = localPath(path)
	if err := os.WriteFile(path, []byte(s.AsHtml()), 0o644); err != nil {
		return errors.Wrap(err, "failed to write summary")
	}
	s.log.Info("summary saved", "path", path)
	return nil
}

// SaveAsXlsx writes the materials, models and measured points to a workbook.
func (s *Summary) SaveAsXlsx(path string) error {
	path = localPath(path)
	f := excelize.NewFile()
	defer f.Close()

	r := s.report()
	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{"Project", [][]interface{}{
			{"Name", r.Info.Name},
			{"Description", r.Info.Description},
			{"Location", r.Info.Location},
			{"q min", r.QRange.Min},
			{"q max", r.QRange.Max},
			{"Calculator", r.Calculator},
			{"Minimizer", r.Minimizer},
		}},
		{"Materials", materialRows(r.Materials)},
		{"Models", modelRows(r.Models)},
		{"Experiments", s.experimentRows()},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return errors.Wrap(err, "failed to name sheet")
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return errors.Wrapf(err, "failed to add sheet %s", sheet.name)
		}
		for j, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				return err
			}
			row := row
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return errors.Wrapf(err, "failed to write %s row %d", sheet.name, j+1)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	s.log.Info("summary workbook saved", "path", path)
	return nil
}

func materialRows(materials []reflib.Material) [][]interface{} {
	rows := [][]interface{}{{"Name", "SLD", "iSLD"}}
	for _, m := range materials {
		rows = append(rows, []interface{}{m.Name, m.SLD, m.ISLD})
	}
	return rows
}

func modelRows(models []reportModel) [][]interface{} {
	rows := [][]interface{}{{"Model", "Layer", "Material", "Thickness", "Roughness", "Scale", "Background"}}
	for _, m := range models {
		for _, l := range m.Layers {
			rows = append(rows, []interface{}{m.Name, l.Name, l.Material, l.Thickness, l.Roughness, m.Scale, m.Background})
		}
	}
	return rows
}

func (s *Summary) experimentRows() [][]interface{} {
	rows := [][]interface{}{{"Experiment", "q", "R", "Variance"}}
	for _, e := range s.lib.Experiments() {
		for _, p := range e.Data.Points() {
			rows = append(rows, []interface{}{e.Name, p.X, p.Y, p.YErr})
		}
	}
	return rows
}
