package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/covtree/pkg/export"
	"github.com/vanderheijden86/covtree/pkg/loader"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [dataset]",
		Short: "Export the tree and class records as SQLite or Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args)
		},
	}
	cmd.Flags().StringP("format", "f", "sqlite", "export format: sqlite or markdown")
	cmd.Flags().StringP("out", "o", "", "output directory (sqlite) or file (markdown)")
	cmd.Flags().String("title", "", "title stored with the export (overrides config)")
	cmd.Flags().Bool("no-json", false, "skip the JSON copies next to the database")
	cmd.Flags().Bool("no-hooks", false, "skip .covtree/hooks.yaml")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	path, err := a.resolveDataset(args)
	if err != nil {
		return err
	}
	b, err := loader.LoadBundle(cmd.Context(), path)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = a.cfg.Report.Title
	}
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	nodes := b.Dataset.CountNodes()

	switch format {
	case "sqlite":
		if out == "" {
			out = filepath.Join(a.cfg.Report.OutputDir, "db")
		}
		exp := export.NewSQLiteExporter(b.Dataset, b.Records)
		exp.Config.Title = title
		if noJSON, _ := cmd.Flags().GetBool("no-json"); noJSON {
			exp.Config.IncludeJSON = false
		}
		if err := a.withHooks(cmd, "sqlite", out, nodes, func() error { return exp.Export(out) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", filepath.Join(out, export.DatabaseName))
	case "markdown", "md":
		if out == "" {
			out = "coverage.md"
		}
		err := a.withHooks(cmd, "markdown", out, nodes, func() error {
			return export.SaveMarkdownToFile(b.Dataset, b.Records, title, out)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", out)
	default:
		return fmt.Errorf("unknown export format %q (want sqlite or markdown)", format)
	}
	return nil
}
