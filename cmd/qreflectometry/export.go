package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CrimsonAS/qreflectometry/internal/app"
	"github.com/CrimsonAS/qreflectometry/internal/pages"
)

var (
	exportModel  int
	exportCharts []string
	exportOut    string
	exportXlsx   bool
	exportHTML   bool
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export charts and the summary of a saved project",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().IntVar(&exportModel, "model", 0, "index of the model to chart")
	cmd.Flags().StringSliceVar(&exportCharts, "chart", []string{pages.SampleChart, pages.SldChart},
		"charts to export as PNG: sample, sld or experiment")
	cmd.Flags().StringVarP(&exportOut, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&exportXlsx, "xlsx", false, "also export the summary as a workbook")
	cmd.Flags().BoolVar(&exportHTML, "html", false, "also export the summary as HTML")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, about, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, about, logger)
	if err != nil {
		return err
	}
	if err := a.Open(args[0]); err != nil {
		return err
	}
	b := a.Backend
	if err := b.Sample.SetCurrentModelIndex(exportModel); err != nil {
		return errors.Wrap(err, "invalid --model")
	}

	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	out := func(suffix string) string {
		return filepath.Join(exportOut, base+"-"+suffix)
	}
	var written []string
	for _, chart := range exportCharts {
		path := out(fmt.Sprintf("%s-%d.png", chart, exportModel))
		if err := b.Plotting.ExportChart(chart, path); err != nil {
			return err
		}
		written = append(written, path)
	}
	if exportXlsx {
		path := out("summary.xlsx")
		if err := b.Summary.SaveAsXlsx(path); err != nil {
			return err
		}
		written = append(written, path)
	}
	if exportHTML {
		path := out("summary.html")
		if err := b.Summary.SaveAsHtml(path); err != nil {
			return err
		}
		written = append(written, path)
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
