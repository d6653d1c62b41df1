package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/covtree/pkg/config"
	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/ui"
	"github.com/vanderheijden86/covtree/pkg/watcher"
)

// errNotTerminal is returned when browse runs without a terminal on stdout.
var errNotTerminal = errors.New("browse needs an interactive terminal; use render or export instead")

func newBrowseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [dataset]",
		Short: "Explore the package tree in the terminal",
		Long: `Opens the package tree in an interactive terminal browser. The dataset
and its class records are reloaded when they change on disk unless
watching is disabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd, args)
		},
	}
	cmd.Flags().Bool("no-watch", false, "do not reload the dataset when it changes")
	cmd.Flags().String("style", "", "legend style: dark, light, notty (default auto)")
	return cmd
}

func (a *app) runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	path, err := a.resolveDataset(args)
	if err != nil {
		return err
	}
	b, err := loader.LoadBundle(cmd.Context(), path)
	if err != nil {
		return err
	}

	if debug.Enabled() {
		// Log lines would tear the alternate screen.
		logPath := filepath.Join(os.TempDir(), "covtree-debug.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		debug.SetOutput(f)
		fmt.Fprintf(cmd.ErrOrStderr(), "debug log: %s\n", logPath)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	noWatch, _ := cmd.Flags().GetBool("no-watch")
	var w *watcher.Watcher
	if a.cfg.Watch.Enabled && !noWatch {
		w, err = startWatcher(ctx, path, a.cfg.Watch)
		if err != nil {
			// Browsing still works, only without live reload
			debug.Log("browse: watcher: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	style, _ := cmd.Flags().GetString("style")
	if style == "" {
		style = "dark"
		if !lipgloss.HasDarkBackground() {
			style = "light"
		}
	}

	m, err := ui.NewModel(b, ui.Options{
		Title:        a.cfg.Report.Title,
		BadgeWidth:   a.cfg.UI.BadgeWidth,
		ShowBadges:   a.cfg.UI.ShowBadges,
		ShowDetail:   a.cfg.UI.ShowDetail,
		GlamourStyle: style,
		Watcher:      w,
	})
	if err != nil {
		return err
	}
	a.remember(path)

	if err := runTUIProgram(m); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

func startWatcher(ctx context.Context, path string, wc config.WatchConfig) (*watcher.Watcher, error) {
	opts := []watcher.WatcherOption{
		watcher.WithDir(filepath.Join(filepath.Dir(path), loader.ClassesDirName), ".json"),
		watcher.WithForcePoll(wc.ForcePoll),
		watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
	}
	if wc.Debounce > 0 {
		opts = append(opts, watcher.WithDebounceDuration(wc.Debounce))
	}
	if wc.PollInterval > 0 {
		opts = append(opts, watcher.WithPollInterval(wc.PollInterval))
	}
	w, err := watcher.NewWatcher(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	return err
}
