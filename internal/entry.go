// Package internal provides run orchestration for the gebo CLI.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/backup"
	"github.com/starford/gebo/internal/linker"
	"github.com/starford/gebo/internal/match"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/storage"
)

// setup applies options and wires the storage and service layers.
func setup(opts []Option) (*application, *linker.Service, storage.Provider, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	if app.logger == nil {
		if app.verbose {
			app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		} else {
			app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.App.LogLevel,
			}))
		}
	}
	slog.SetDefault(app.logger)

	store, err := storage.NewFS(cfg.Vault.Path, cfg.Vault.Ignore)
	if err != nil {
		return nil, nil, nil, err
	}

	app.logger.Info("vault opened",
		slog.String("vault_path", store.Root()),
		slog.Bool("safe_mode", cfg.Backup.Enabled),
		slog.Int("acronym_min_length", cfg.Match.AcronymMinLength))
	if !cfg.Backup.Enabled {
		app.logger.Warn("safe mode disabled: notes will be rewritten in place with no backup")
	}

	svc := linker.NewService(store, linker.Options{
		AcronymMinLength: cfg.Match.AcronymMinLength,
		SectionHeading:   cfg.Rewrite.SectionHeading,
		Inline:           cfg.Rewrite.Inline,
	}, app.logger)

	return app, svc, store, nil
}

// mode returns the match mode and active path chosen by the caller.
func (a *application) mode() (match.Mode, string) {
	if a.activeNote == "" {
		return match.ModeWholeVault, ""
	}
	return match.ModeSingleNote, filepath.ToSlash(a.activeNote)
}

// Run executes a linking pass: read, match, back up, rewrite, report.
func Run(ctx context.Context, opts ...Option) error {
	app, svc, store, err := setup(opts)
	if err != nil {
		return err
	}
	m, active := app.mode()

	plan, err := svc.PlanLink(ctx, m, active)
	if err != nil {
		return err
	}
	return app.finish(ctx, svc, store, plan)
}

// Unlink executes a link-removal pass over the scoped notes.
func Unlink(ctx context.Context, opts ...Option) error {
	app, svc, store, err := setup(opts)
	if err != nil {
		return err
	}
	m, active := app.mode()

	plan, err := svc.PlanUnlink(ctx, m, active)
	if err != nil {
		return err
	}
	return app.finish(ctx, svc, store, plan)
}

// Keys prints every note's derived match keys.
func Keys(ctx context.Context, opts ...Option) error {
	app, svc, _, err := setup(opts)
	if err != nil {
		return err
	}
	reports, warnings, err := svc.Keys(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Fprintf(app.out, "%s\t%q\n", r.Path, r.Title)
		for _, k := range r.Keys {
			fmt.Fprintf(app.out, "\t%-12s %s\n", k.Kind.String(), k.Value)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(app.out, "warning: %s: %s\n", w.Path, w.Reason)
	}
	return nil
}

// finish applies a plan behind the safe-mode gate and reports the
// summary. In dry-run mode nothing touches disk.
func (a *application) finish(ctx context.Context, svc *linker.Service, store storage.Provider, plan *linker.Plan) error {
	if a.dryRun {
		sum := models.Summary{
			Modified: len(plan.Changes),
			Skipped:  plan.Skipped,
			Warnings: plan.Warnings,
		}
		fmt.Fprintln(a.out, "dry run: no files written")
		a.report(sum)
		return nil
	}

	var sum models.Summary
	if len(plan.Changes) > 0 && a.config.Backup.Enabled {
		snap, err := backup.Snapshot(store.Root(), a.config.Backup.Dir, time.Now())
		if err != nil {
			return err
		}
		a.logger.Info("vault snapshot created",
			slog.String("path", snap.Path), slog.Int("files", snap.Files))
		sum.BackupPath = snap.Path
	}

	applied := svc.Apply(ctx, plan)
	applied.BackupPath = sum.BackupPath
	a.report(applied)

	if applied.Failed > 0 {
		return fmt.Errorf("%d of %d notes failed: %w", applied.Failed, len(plan.Changes), apperr.ErrNoteWrite)
	}
	return nil
}

// report writes the human-readable end-of-run summary.
func (a *application) report(sum models.Summary) {
	fmt.Fprintf(a.out, "modified %d, skipped %d, failed %d\n", sum.Modified, sum.Skipped, sum.Failed)
	if sum.BackupPath != "" {
		fmt.Fprintf(a.out, "backup: %s\n", sum.BackupPath)
	}
	for _, f := range sum.Failures {
		fmt.Fprintf(a.out, "failed: %s: %s\n", f.Path, f.Reason)
	}
	for _, w := range sum.Warnings {
		fmt.Fprintf(a.out, "warning: %s: %s\n", w.Path, w.Reason)
	}
}
