package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/report"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Write the static HTML report",
		Long: `Writes index.html plus one page per linked package or class. Each page
embeds the package tree opened at its own node.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args)
		},
	}
	cmd.Flags().StringP("out", "o", "", "output directory (overrides config)")
	cmd.Flags().String("title", "", "report title (overrides config)")
	cmd.Flags().String("url-prefix", "", "prefix for every node href (overrides config)")
	cmd.Flags().Int("indent", 0, "pixels per depth level (overrides config)")
	cmd.Flags().Int("concurrency", 0, "pages rendered in parallel (default NumCPU)")
	cmd.Flags().Bool("no-hooks", false, "skip .covtree/hooks.yaml")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path, err := a.resolveDataset(args)
	if err != nil {
		return err
	}
	b, err := loader.LoadBundle(cmd.Context(), path)
	if err != nil {
		return err
	}

	rc := a.cfg.Report
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		rc.OutputDir = v
	}
	if v, _ := cmd.Flags().GetString("title"); v != "" {
		rc.Title = v
	}
	if v, _ := cmd.Flags().GetString("url-prefix"); v != "" {
		rc.URLPrefix = v
	}
	if v, _ := cmd.Flags().GetInt("indent"); v > 0 {
		rc.IndentWidth = v
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	g := &report.Generator{
		OutputDir:   rc.OutputDir,
		Title:       rc.Title,
		URLPrefix:   rc.URLPrefix,
		IndentWidth: rc.IndentWidth,
		Records:     b.Records,
		Concurrency: concurrency,
	}
	var n int
	err = a.withHooks(cmd, "html", rc.OutputDir, b.Dataset.CountNodes(), func() error {
		var genErr error
		n, genErr = g.Generate(cmd.Context(), b.Dataset)
		return genErr
	})
	if err != nil {
		return err
	}
	a.remember(path)

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages to %s (%d class records, %s)\n",
		n, rc.OutputDir, len(b.Records), time.Since(start).Round(time.Millisecond))
	return nil
}
