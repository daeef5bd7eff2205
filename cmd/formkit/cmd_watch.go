package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/formkit/i18n"
)

func newWatchCmd() *cobra.Command {
	var o validateOpts
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate whenever the data or rule file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i18n.SetLanguage(lang)
			return watch(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	o.bind(cmd)
	return cmd
}

// watch validates once, then again on every write to either file, until ctx
// is done. Editors often replace files, so the parent directories are
// watched rather than the files themselves.
func watch(ctx context.Context, out io.Writer, o validateOpts) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	targets := map[string]bool{}
	for _, f := range []string{o.dataFile, o.rulesFile} {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return err
		}
		targets[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			_ = w.Close()
			return err
		}
	}

	runOnce := func() error {
		iss, err := validateFiles(ctx, o.dataFile, o.rulesFile)
		if err != nil {
			// keep watching: the file may be mid-edit
			fmt.Fprintln(out, "error:", err)
			return nil
		}
		fmt.Fprintf(out, "--- %d issue(s)\n", len(iss))
		return printIssues(out, iss, o.asJSON)
	}
	if err := runOnce(); err != nil {
		_ = w.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return w.Close()
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !targets[ev.Name] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("file changed", zap.String("name", ev.Name), zap.Stringer("op", ev.Op))
				if err := runOnce(); err != nil {
					return err
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", zap.Error(err))
			}
		}
	})
	return g.Wait()
}
