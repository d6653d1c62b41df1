package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/covtree/pkg/config"
	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/hooks"
	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/metrics"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	timings bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "covtree",
		Short: "Coverage report package trees",
		Long: `covtree turns a package/class coverage dataset into a navigable tree:
static HTML pages, an interactive terminal browser, or a SQLite/Markdown
export.

The dataset is a JSON or YAML file of nested nodes (id, text, href,
coverage). Per-class test records are read from a "classes" directory
next to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				debug.SetEnabled(true)
			}
			debug.Section(cmd.CommandPath())
			if err := a.loadConfig(); err != nil {
				return err
			}
			debug.Dump("config", a.cfg)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.timings {
				fmt.Fprint(cmd.ErrOrStderr(), metrics.FormatStats(metrics.AllTimingStats()))
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path (default $XDG_CONFIG_HOME/covtree/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().BoolVar(&a.timings, "metrics", false, "print operation timings to stderr when done")

	root.AddCommand(
		newRenderCmd(a),
		newBrowseCmd(a),
		newExportCmd(a),
		newSearchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFrom(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// remember records path as the most recent report. A config that cannot be
// written only costs the history.
func (a *app) remember(path string) {
	a.cfg.AddRecent(path)
	var err error
	if a.cfgFile != "" {
		err = config.SaveTo(a.cfg, a.cfgFile)
	} else {
		err = config.Save(a.cfg)
	}
	if err != nil {
		debug.Log("config: save recent reports: %v", err)
	}
}

// resolveDataset finds the dataset to work on: an explicit file or
// directory argument, then the data directory, then the last report opened.
func (a *app) resolveDataset(args []string) (string, error) {
	if len(args) > 0 {
		info, err := os.Stat(args[0])
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return loader.FindDatasetPath(args[0])
		}
		return args[0], nil
	}

	dir, err := loader.GetDataDir("")
	if err != nil {
		return "", err
	}
	path, findErr := loader.FindDatasetPath(dir)
	if findErr == nil {
		return path, nil
	}
	if last := a.cfg.LastReport(); last != "" {
		if _, err := os.Stat(last); err == nil {
			return last, nil
		}
	}
	return "", findErr
}

// withHooks wraps write in the working directory's pre- and post-export
// hooks. A failing pre-export hook aborts before anything is written.
func (a *app) withHooks(cmd *cobra.Command, format, outPath string, nodes int, write func() error) error {
	noHooks, _ := cmd.Flags().GetBool("no-hooks")
	exec, err := hooks.RunHooks("", hooks.ExportContext{
		ExportPath:   outPath,
		ExportFormat: format,
		NodeCount:    nodes,
		Timestamp:    time.Now(),
	}, noHooks)
	if err != nil {
		return err
	}
	if exec == nil {
		return write()
	}

	if err := exec.RunPreExport(); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), exec.Summary())
		return err
	}
	if err := write(); err != nil {
		return err
	}
	postErr := exec.RunPostExport()
	fmt.Fprint(cmd.ErrOrStderr(), exec.Summary())
	return postErr
}
